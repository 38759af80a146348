// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"context"
	"io"
	"net"
)

// Proxy sits between a downstream client and an upstream server, running
// the server-side handshake on the downstream connection and the
// client-side handshake on the upstream connection concurrently. Once both
// reach Established, it forwards bytes verbatim in both directions without
// decoding ZRLE or any other encoding, since a non-re-encoding proxy must
// never buffer a partial Zlib block.
type Proxy struct {
	downstream *ServerConn
	upstream   *ClientConn
}

// NewProxy runs both halves of the handshake concurrently: the server
// handshake on downstream (the connecting client talks to us) and the
// client handshake on upstream (we talk to the real server). It returns
// once both complete, or the first error from either side.
func NewProxy(ctx context.Context, downstream net.Conn, downstreamOptions []ServerOption, upstream net.Conn, upstreamOptions []ClientOption) (*Proxy, error) {
	type downstreamResult struct {
		conn   *ServerConn
		shared bool
		err    error
	}
	type upstreamResult struct {
		conn *ClientConn
		err  error
	}

	downstreamCh := make(chan downstreamResult, 1)
	upstreamCh := make(chan upstreamResult, 1)

	go func() {
		conn, shared, err := ServerWithOptions(ctx, downstream, downstreamOptions...)
		downstreamCh <- downstreamResult{conn, shared, err}
	}()
	go func() {
		conn, err := ClientWithOptions(ctx, upstream, upstreamOptions...)
		upstreamCh <- upstreamResult{conn, err}
	}()

	dr := <-downstreamCh
	ur := <-upstreamCh

	if dr.err != nil {
		if ur.conn != nil {
			ur.conn.Close()
		}
		return nil, dr.err
	}
	if ur.err != nil {
		dr.conn.Close()
		return nil, ur.err
	}

	return &Proxy{downstream: dr.conn, upstream: ur.conn}, nil
}

// Run forwards bytes between the downstream and upstream connections until
// either side closes, ctx is cancelled, or a forwarding error occurs. It
// blocks until forwarding stops in both directions.
func (p *Proxy) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		_, err := io.Copy(p.downstream.RawConn(), p.upstream.RawConn())
		errCh <- err
	}()
	go func() {
		_, err := io.Copy(p.upstream.RawConn(), p.downstream.RawConn())
		errCh <- err
	}()

	select {
	case err := <-errCh:
		p.Close()
		<-errCh
		return wrapProxyIOError(err)
	case <-ctx.Done():
		p.Close()
		<-errCh
		<-errCh
		return ioError("Proxy.Run", ctx.Err())
	}
}

// Close closes both sides of the proxied connection.
func (p *Proxy) Close() error {
	downErr := p.downstream.Close()
	upErr := p.upstream.Close()
	if downErr != nil {
		return downErr
	}
	return upErr
}

func wrapProxyIOError(err error) error {
	if err == nil {
		return nil
	}
	return ioError("Proxy.Run", err)
}
