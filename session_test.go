// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestSessionState_String(t *testing.T) {
	tests := []struct {
		state SessionState
		want  string
	}{
		{AwaitingVersion, "AwaitingVersion"},
		{AwaitingSecurityList, "AwaitingSecurityList"},
		{AwaitingSecurityResult, "AwaitingSecurityResult"},
		{AwaitingInit, "AwaitingInit"},
		{Established, "Established"},
		{Closed, "Closed"},
		{SessionState(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("SessionState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

// TestHandshake_V38None drives a full client/server handshake end to end
// over net.Pipe with protocol 3.8 and the None security type.
func TestHandshake_V38None(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type serverResult struct {
		conn   *ServerConn
		shared bool
		err    error
	}
	serverCh := make(chan serverResult, 1)
	go func() {
		conn, shared, err := ServerWithOptions(ctx, serverConn,
			WithServerAuth(&NoneServerAuth{}),
			WithFramebuffer(800, 600, PixelFormatRGB8888),
			WithDesktopName("integration test desktop"),
		)
		serverCh <- serverResult{conn, shared, err}
	}()

	client, err := ClientWithOptions(ctx, clientConn, WithAuth(&ClientAuthNone{}))
	if err != nil {
		t.Fatalf("ClientWithOptions() error = %v", err)
	}
	defer client.Close()

	sr := <-serverCh
	if sr.err != nil {
		t.Fatalf("ServerWithOptions() error = %v", sr.err)
	}
	defer sr.conn.Close()

	if client.State() != Established {
		t.Errorf("client.State() = %v, want Established", client.State())
	}
	if sr.conn.State() != Established {
		t.Errorf("server.State() = %v, want Established", sr.conn.State())
	}
	if w, h := client.FramebufferSize(); w != 800 || h != 600 {
		t.Errorf("FramebufferSize() = (%d,%d), want (800,600)", w, h)
	}
	if client.DesktopName() != "integration test desktop" {
		t.Errorf("DesktopName() = %q, want %q", client.DesktopName(), "integration test desktop")
	}
	if !sr.shared {
		t.Error("shared = false, want true (client defaults to shared access)")
	}
}

// TestHandshake_V38Rejection exercises the server offering no security
// types, which must reject the client with RejectReason.
func TestHandshake_V38Rejection(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverCh := make(chan error, 1)
	go func() {
		_, _, err := ServerWithOptions(ctx, serverConn,
			WithRejectReason("no access permitted"),
		)
		serverCh <- err
	}()

	_, clientErr := ClientWithOptions(ctx, clientConn, WithAuth(&ClientAuthNone{}))
	if !IsRFBError(clientErr, ErrServer) {
		t.Errorf("client error = %v, want ErrServer", clientErr)
	}

	serverErr := <-serverCh
	if serverErr == nil {
		t.Error("server error = nil, want an error (client never reaches Init)")
	}
}

// TestHandshake_V38PasswordAuth exercises a full handshake requiring VNC
// password authentication.
func TestHandshake_V38PasswordAuth(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverCh := make(chan error, 1)
	go func() {
		_, _, err := ServerWithOptions(ctx, serverConn,
			WithServerAuth(NewVncPasswordServerAuth("sesame")),
			WithFramebuffer(640, 480, PixelFormatRGB8888),
		)
		serverCh <- err
	}()

	client, err := ClientWithOptions(ctx, clientConn, WithAuth(NewPasswordAuth("sesame")))
	if err != nil {
		t.Fatalf("ClientWithOptions() error = %v", err)
	}
	defer client.Close()

	if err := <-serverCh; err != nil {
		t.Fatalf("ServerWithOptions() error = %v", err)
	}
}

// TestHandshake_RoundTripMessages confirms Send/ReadEvent work end to end
// after the handshake: a FramebufferUpdateRequest from client to server,
// and a Bell from server to client.
func TestHandshake_RoundTripMessages(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type serverResult struct {
		conn *ServerConn
		err  error
	}
	serverCh := make(chan serverResult, 1)
	go func() {
		conn, _, err := ServerWithOptions(ctx, serverConn,
			WithServerAuth(&NoneServerAuth{}),
			WithFramebuffer(640, 480, PixelFormatRGB8888),
		)
		serverCh <- serverResult{conn, err}
	}()

	client, err := ClientWithOptions(ctx, clientConn, WithAuth(&ClientAuthNone{}))
	if err != nil {
		t.Fatalf("ClientWithOptions() error = %v", err)
	}
	defer client.Close()

	sr := <-serverCh
	if sr.err != nil {
		t.Fatalf("ServerWithOptions() error = %v", sr.err)
	}
	defer sr.conn.Close()

	reqDone := make(chan error, 1)
	go func() {
		reqDone <- client.FramebufferUpdateRequest(ctx, false, 0, 0, 640, 480)
	}()
	ev, err := sr.conn.ReadEvent(ctx)
	if err != nil {
		t.Fatalf("server ReadEvent() error = %v", err)
	}
	if err := <-reqDone; err != nil {
		t.Fatalf("client FramebufferUpdateRequest() error = %v", err)
	}
	fur, ok := ev.(FramebufferUpdateRequest)
	if !ok || fur.Width != 640 || fur.Height != 480 {
		t.Errorf("server ReadEvent() = %+v, want FramebufferUpdateRequest{640,480}", ev)
	}

	bellDone := make(chan error, 1)
	go func() {
		bellDone <- sr.conn.Send(ctx, Bell{})
	}()
	cev, err := client.ReadEvent(ctx)
	if err != nil {
		t.Fatalf("client ReadEvent() error = %v", err)
	}
	if err := <-bellDone; err != nil {
		t.Fatalf("server Send() error = %v", err)
	}
	if _, ok := cev.(Bell); !ok {
		t.Errorf("client ReadEvent() = %+v (%T), want Bell", cev, cev)
	}
}

// TestHandshake_QEMUExtendedKeyEvent confirms a QEMU extended key event
// round trips from client to server through the established connection.
func TestHandshake_QEMUExtendedKeyEvent(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type serverResult struct {
		conn *ServerConn
		err  error
	}
	serverCh := make(chan serverResult, 1)
	go func() {
		conn, _, err := ServerWithOptions(ctx, serverConn,
			WithServerAuth(&NoneServerAuth{}),
			WithFramebuffer(640, 480, PixelFormatRGB8888),
		)
		serverCh <- serverResult{conn, err}
	}()

	client, err := ClientWithOptions(ctx, clientConn, WithAuth(&ClientAuthNone{}))
	if err != nil {
		t.Fatalf("ClientWithOptions() error = %v", err)
	}
	defer client.Close()

	sr := <-serverCh
	if sr.err != nil {
		t.Fatalf("ServerWithOptions() error = %v", sr.err)
	}
	defer sr.conn.Close()

	sendDone := make(chan error, 1)
	go func() {
		sendDone <- client.QEMUExtendedKeyEvent(ctx, 0x0061, 30, true)
	}()
	ev, err := sr.conn.ReadEvent(ctx)
	if err != nil {
		t.Fatalf("server ReadEvent() error = %v", err)
	}
	if err := <-sendDone; err != nil {
		t.Fatalf("client QEMUExtendedKeyEvent() error = %v", err)
	}
	qk, ok := ev.(QEMUExtendedKeyEvent)
	if !ok || !qk.Down || qk.Keysym != 0x0061 || qk.Keycode != 30 {
		t.Errorf("server ReadEvent() = %+v, want QEMUExtendedKeyEvent{true,0x61,30}", ev)
	}
}
