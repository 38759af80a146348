// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"context"
	"net"
	"sync"
	"time"

	"github.com/relayrfb/rfb/zrle"
)

// ClientEvent is one event a Server's ReadEvent pulls off the wire: any
// C2S message the client sent.
type ClientEvent interface {
	isClientEvent()
}

func (SetPixelFormat) isClientEvent()           {}
func (SetEncodings) isClientEvent()             {}
func (FramebufferUpdateRequest) isClientEvent() {}
func (KeyEvent) isClientEvent()                 {}
func (PointerEvent) isClientEvent()             {}
func (CutText) isClientEvent()                  {}
func (QEMUExtendedKeyEvent) isClientEvent()     {}

// ServerConn is an established, handshaken RFB server-side connection: the
// role driver a VNC server implementation uses to talk to one connected
// client.
type ServerConn struct {
	c      net.Conn
	config *ServerConfig
	logger Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	state       SessionState
	shared      bool
	pixelFormat PixelFormat
	encodings   []Encoding

	zrleWriter *zrle.Writer
}

// ServerConfig configures an RFB server connection's handshake behavior.
type ServerConfig struct {
	// Version is the protocol version this server advertises. Defaults to
	// V38.
	Version Version

	// Auth lists the security types this server offers, tried by the
	// client in whatever order it prefers. An empty list rejects every
	// client with RejectReason.
	Auth []ServerAuth

	// RejectReason is sent to a client when Auth is empty.
	RejectReason string

	// FramebufferWidth, FramebufferHeight, PixelFormat, and Name populate
	// the ServerInit message sent during Phase 3.
	FramebufferWidth  uint16
	FramebufferHeight uint16
	PixelFormat       PixelFormat
	Name              string

	Logger Logger

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	Metrics MetricsCollector
}

// ServerOption configures a ServerConfig.
type ServerOption func(*ServerConfig)

func WithServerAuth(auth ...ServerAuth) ServerOption {
	return func(cfg *ServerConfig) { cfg.Auth = auth }
}

func WithRejectReason(reason string) ServerOption {
	return func(cfg *ServerConfig) { cfg.RejectReason = reason }
}

func WithServerVersion(version Version) ServerOption {
	return func(cfg *ServerConfig) { cfg.Version = version }
}

func WithFramebuffer(width, height uint16, pf PixelFormat) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.FramebufferWidth = width
		cfg.FramebufferHeight = height
		cfg.PixelFormat = pf
	}
}

func WithDesktopName(name string) ServerOption {
	return func(cfg *ServerConfig) { cfg.Name = name }
}

func WithServerLogger(logger Logger) ServerOption {
	return func(cfg *ServerConfig) { cfg.Logger = logger }
}

func WithServerConnectTimeout(timeout time.Duration) ServerOption {
	return func(cfg *ServerConfig) { cfg.ConnectTimeout = timeout }
}

func WithServerTimeout(timeout time.Duration) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.ReadTimeout = timeout
		cfg.WriteTimeout = timeout
	}
}

func WithServerMetrics(metrics MetricsCollector) ServerOption {
	return func(cfg *ServerConfig) { cfg.Metrics = metrics }
}

// ServerWithOptions runs the server side of the handshake over c (typically
// one net.Listener.Accept() result) and returns a ready ServerConn along
// with whether the client requested shared access.
func ServerWithOptions(ctx context.Context, c net.Conn, options ...ServerOption) (*ServerConn, bool, error) {
	cfg := &ServerConfig{}
	for _, option := range options {
		option(cfg)
	}
	if cfg.Version == 0 {
		cfg.Version = V38
	}
	if cfg.PixelFormat == (PixelFormat{}) {
		cfg.PixelFormat = PixelFormatRGB8888
	}
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	var logger Logger = &NoOpLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	connCtx, cancel := context.WithCancel(ctx)
	conn := &ServerConn{
		c:           c,
		config:      cfg,
		logger:      logger,
		ctx:         connCtx,
		cancel:      cancel,
		state:       AwaitingVersion,
		pixelFormat: cfg.PixelFormat,
	}

	shared, err := conn.handshake(connCtx)
	if err != nil {
		conn.Close()
		return nil, false, err
	}

	conn.logger.Info("handshake complete", Field{Key: "shared", Value: shared})
	return conn, shared, nil
}

func (s *ServerConn) handshake(ctx context.Context) (bool, error) {
	version, err := negotiateVersionServer(s.c, s.config.Version)
	if err != nil {
		s.logger.Debug("version negotiation failed", Field{Key: "error", Value: err})
		s.setState(Closed)
		return false, err
	}
	s.logger.Debug("version negotiated", versionField(version))
	s.setState(AwaitingSecurityList)

	chosen, err := negotiateSecurityServer(ctx, s.c, version, s.config.Auth, s.config.RejectReason)
	if err != nil {
		s.logger.Debug("security negotiation failed", securityTypeField(chosen), Field{Key: "error", Value: err})
		s.setState(Closed)
		return false, err
	}
	s.logger.Debug("security type negotiated", securityTypeField(chosen))
	s.setState(AwaitingInit)

	if err := newInputValidator().ValidateFramebufferDimensions(s.config.FramebufferWidth, s.config.FramebufferHeight); err != nil {
		s.logger.Debug("framebuffer dimensions invalid", Field{Key: "error", Value: err})
		s.setState(Closed)
		return false, err
	}

	init := ServerInit{
		FramebufferWidth:  s.config.FramebufferWidth,
		FramebufferHeight: s.config.FramebufferHeight,
		PixelFormat:       s.config.PixelFormat,
		Name:              s.config.Name,
	}
	clientInit, err := performInitServer(s.c, init)
	if err != nil {
		s.logger.Debug("client init failed", Field{Key: "error", Value: err})
		s.setState(Closed)
		return false, err
	}

	s.mu.Lock()
	s.state = Established
	s.shared = clientInit.Shared
	s.mu.Unlock()

	s.logger.Debug("session established", sessionStateField(Established), Field{Key: "shared", Value: clientInit.Shared})

	return clientInit.Shared, nil
}

func (s *ServerConn) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Close terminates the connection.
func (s *ServerConn) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.setState(Closed)
	return s.c.Close()
}

// Send writes one server-to-client message.
func (s *ServerConn) Send(ctx context.Context, msg S2C) error {
	var buf bytes.Buffer
	switch m := msg.(type) {
	case SetColourMapEntries:
		if err := m.WriteTo(&buf); err != nil {
			return err
		}
	case Bell:
		if err := m.WriteTo(&buf); err != nil {
			return err
		}
	case ServerCutText:
		if err := m.WriteTo(&buf); err != nil {
			return err
		}
	default:
		return unexpectedError("ServerConn.Send", "server to client message type")
	}
	if s.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.WriteTimeout)
		defer cancel()
	}
	return s.writeWithContext(ctx, buf.Bytes())
}

// SendFramebufferUpdate writes a FramebufferUpdate built via
// FramebufferUpdateBuilder as a single logical write.
func (s *ServerConn) SendFramebufferUpdate(ctx context.Context, update *FramebufferUpdateBuilder) error {
	var buf bytes.Buffer
	if err := update.SendTo(&buf); err != nil {
		return err
	}
	if s.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.WriteTimeout)
		defer cancel()
	}
	return s.writeWithContext(ctx, buf.Bytes())
}

// ReadEvent blocks until the next ClientEvent is available, ctx is
// cancelled, or the connection closes.
func (s *ServerConn) ReadEvent(ctx context.Context) (ClientEvent, error) {
	if s.config.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ReadTimeout)
		defer cancel()
	}

	type result struct {
		event ClientEvent
		err   error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := ReadC2S(s.c)
		if err != nil {
			done <- result{nil, err}
			return
		}
		ev, ok := msg.(ClientEvent)
		if !ok {
			done <- result{nil, unexpectedError("ServerConn.ReadEvent", "client to server message type")}
			return
		}
		if sp, ok := msg.(SetPixelFormat); ok {
			s.mu.Lock()
			s.pixelFormat = sp.PixelFormat
			s.mu.Unlock()
		}
		if se, ok := msg.(SetEncodings); ok {
			s.mu.Lock()
			s.encodings = se.Encodings
			s.mu.Unlock()
		}
		done <- result{ev, nil}
	}()

	select {
	case r := <-done:
		return r.event, r.err
	case <-ctx.Done():
		return nil, ioError("ServerConn.ReadEvent", ctx.Err())
	case <-s.ctx.Done():
		return nil, disconnectedError("ServerConn.ReadEvent")
	}
}

// EnableZRLE activates a persistent ZRLE deflate stream for this
// connection's outgoing FramebufferUpdate rectangles, used via
// FramebufferUpdateBuilder.AddZRLE. Must be called before the first ZRLE
// rectangle is sent and must persist for the connection's lifetime.
func (s *ServerConn) EnableZRLE() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zrleWriter = zrle.NewWriter()
}

// ZRLEWriter returns the connection's persistent ZRLE deflate stream, or
// nil if EnableZRLE was never called.
func (s *ServerConn) ZRLEWriter() *zrle.Writer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zrleWriter
}

// PixelFormat returns the client's most recently requested pixel format
// (or the ServerInit default, if the client never sent SetPixelFormat).
func (s *ServerConn) PixelFormat() PixelFormat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pixelFormat
}

// Encodings returns the client's most recently advertised encoding list.
func (s *ServerConn) Encodings() []Encoding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encodings
}

// Shared reports whether the client requested shared (non-exclusive)
// framebuffer access.
func (s *ServerConn) Shared() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shared
}

// State returns the connection's current handshake/session state.
func (s *ServerConn) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RawConn returns the underlying transport. Intended for Proxy, which
// forwards raw bytes once the handshake completes rather than decoding
// individual messages.
func (s *ServerConn) RawConn() net.Conn {
	return s.c
}

func (s *ServerConn) writeWithContext(ctx context.Context, data []byte) error {
	done := make(chan error, 1)
	go func() {
		_, err := s.c.Write(data)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return ioError("ServerConn.writeWithContext", err)
		}
		return nil
	case <-ctx.Done():
		return ioError("ServerConn.writeWithContext", ctx.Err())
	}
}
