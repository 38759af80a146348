// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/relayrfb/rfb/zrle"
)

// ButtonMask represents the state of pointer buttons in a PointerEvent.
type ButtonMask uint8

const (
	ButtonLeft ButtonMask = 1 << iota
	ButtonMiddle
	ButtonRight
	Button4
	Button5
	Button6
	Button7
	Button8
)

const (
	MaxClipboardLength       = 1024 * 1024
	MaxServerClipboardLength = 10 * 1024 * 1024
)

// MetricsCollector defines the interface for collecting metrics and observability data.
type MetricsCollector interface {
	Counter(name string, tags ...interface{}) interface{}
	Gauge(name string, tags ...interface{}) interface{}
	Histogram(name string, tags ...interface{}) interface{}
}

// NoOpMetrics is a MetricsCollector implementation that discards all metrics.
type NoOpMetrics struct{}

func (m *NoOpMetrics) Counter(name string, tags ...interface{}) interface{}   { return nil }
func (m *NoOpMetrics) Gauge(name string, tags ...interface{}) interface{}     { return nil }
func (m *NoOpMetrics) Histogram(name string, tags ...interface{}) interface{} { return nil }

// ServerEvent is one event a Client's ReadEvent pulls off the wire: either a
// non-FramebufferUpdate S2C message, or a single decoded rectangle from a
// FramebufferUpdate (the update itself is never surfaced as one event,
// since its rectangle count can be large and each rectangle's payload
// should be consumable as it arrives).
type ServerEvent interface {
	isServerEvent()
}

func (SetColourMapEntries) isServerEvent() {}
func (Bell) isServerEvent()                {}
func (ServerCutText) isServerEvent()       {}

// FramebufferRectangle is the ServerEvent yielded for each rectangle of an
// incoming FramebufferUpdate.
type FramebufferRectangle struct {
	DecodedRectangle
}

func (FramebufferRectangle) isServerEvent() {}

// ClientConn is an established, handshaken RFB client connection. Safe for
// concurrent use: Send and ReadEvent may be called from different
// goroutines, matching the split-duplex model callers need for full-duplex
// operation.
type ClientConn struct {
	c      net.Conn
	config *ClientConfig
	logger Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	state       SessionState
	fbWidth     uint16
	fbHeight    uint16
	desktopName string
	pixelFormat PixelFormat
	fbRemaining int

	zrleReader *zrle.Reader
}

// ClientConfig configures an RFB client connection.
type ClientConfig struct {
	// Auth lists the client-side authentication handshakes this connection
	// is willing to run, in preference order. The security type actually
	// offered by the server determines which (if any) gets used.
	Auth []ClientAuth

	// AuthRegistry, if set, is used instead of constructing one from Auth.
	AuthRegistry *AuthRegistry

	// Exclusive requests exclusive (non-shared) framebuffer access.
	Exclusive bool

	// MaxVersion bounds the highest protocol version this client will
	// negotiate up to. Defaults to V38.
	MaxVersion Version

	// Logger receives structured connection diagnostics.
	Logger Logger

	// ConnectTimeout sets a deadline on the context the handshake
	// (Version/Security/Init) runs under. That context is checked only by
	// security negotiation and the authentication handshakes; a read or
	// write already blocked on the connection is not interrupted by it.
	ConnectTimeout time.Duration

	// ReadTimeout and WriteTimeout bound individual Send/ReadEvent calls
	// issued without their own deadline via context.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Metrics is stored with the configuration; the client does not report
	// any measurements to it.
	Metrics MetricsCollector
}

// ClientOption configures a ClientConfig.
type ClientOption func(*ClientConfig)

func WithAuth(auth ...ClientAuth) ClientOption {
	return func(cfg *ClientConfig) { cfg.Auth = auth }
}

func WithAuthRegistry(registry *AuthRegistry) ClientOption {
	return func(cfg *ClientConfig) { cfg.AuthRegistry = registry }
}

func WithExclusive(exclusive bool) ClientOption {
	return func(cfg *ClientConfig) { cfg.Exclusive = exclusive }
}

func WithMaxVersion(version Version) ClientOption {
	return func(cfg *ClientConfig) { cfg.MaxVersion = version }
}

func WithLogger(logger Logger) ClientOption {
	return func(cfg *ClientConfig) { cfg.Logger = logger }
}

func WithConnectTimeout(timeout time.Duration) ClientOption {
	return func(cfg *ClientConfig) { cfg.ConnectTimeout = timeout }
}

func WithReadTimeout(timeout time.Duration) ClientOption {
	return func(cfg *ClientConfig) { cfg.ReadTimeout = timeout }
}

func WithWriteTimeout(timeout time.Duration) ClientOption {
	return func(cfg *ClientConfig) { cfg.WriteTimeout = timeout }
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(cfg *ClientConfig) {
		cfg.ReadTimeout = timeout
		cfg.WriteTimeout = timeout
	}
}

func WithMetrics(metrics MetricsCollector) ClientOption {
	return func(cfg *ClientConfig) { cfg.Metrics = metrics }
}

// ClientWithOptions dials no connection itself; c must already be an
// established transport (typically net.Dial("tcp", addr)). It performs the
// full Version/Security/Init handshake and returns a ready ClientConn.
func ClientWithOptions(ctx context.Context, c net.Conn, options ...ClientOption) (*ClientConn, error) {
	cfg := &ClientConfig{}
	for _, option := range options {
		option(cfg)
	}
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	return ClientWithContext(ctx, c, cfg)
}

// ClientWithContext establishes an RFB client connection using an explicit
// ClientConfig. Most callers should prefer ClientWithOptions.
func ClientWithContext(ctx context.Context, c net.Conn, cfg *ClientConfig) (*ClientConn, error) {
	if cfg == nil {
		cfg = &ClientConfig{}
	}
	if cfg.MaxVersion == 0 {
		cfg.MaxVersion = V38
	}

	var logger Logger = &NoOpLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	connCtx, cancel := context.WithCancel(ctx)
	conn := &ClientConn{
		c:      c,
		config: cfg,
		logger: logger,
		ctx:    connCtx,
		cancel: cancel,
		state:  AwaitingVersion,
	}

	if err := conn.handshake(connCtx); err != nil {
		conn.Close()
		return nil, err
	}

	conn.logger.Info("handshake complete",
		Field{Key: "width", Value: conn.fbWidth},
		Field{Key: "height", Value: conn.fbHeight},
		Field{Key: "desktop", Value: conn.desktopName})

	return conn, nil
}

// handshake runs the three-phase Version/Security/Init state machine and
// populates the connection's negotiated fields on success. Any failure
// moves the session to Closed, a terminal state with no recovery.
func (c *ClientConn) handshake(ctx context.Context) error {
	version, err := negotiateVersionClient(c.c, c.config.MaxVersion)
	if err != nil {
		c.logger.Debug("version negotiation failed", Field{Key: "error", Value: err})
		c.mu.Lock()
		c.state = Closed
		c.mu.Unlock()
		return err
	}
	c.logger.Debug("version negotiated", versionField(version))
	c.mu.Lock()
	c.state = AwaitingSecurityList
	c.mu.Unlock()

	registry := c.config.AuthRegistry
	if registry == nil {
		registry = NewAuthRegistry()
	}
	preferredOrder := make([]SecurityType, 0, len(c.config.Auth))
	for _, auth := range c.config.Auth {
		auth := auth
		st := auth.SecurityType()
		preferredOrder = append(preferredOrder, st)
		registry.Register(st, func() ClientAuth { return auth })
	}
	if len(preferredOrder) == 0 {
		preferredOrder = nil
	}

	chosen, err := negotiateSecurityClient(ctx, c.c, version, registry, preferredOrder)
	if err != nil {
		c.logger.Debug("security negotiation failed", securityTypeField(chosen), Field{Key: "error", Value: err})
		c.mu.Lock()
		c.state = Closed
		c.mu.Unlock()
		return err
	}
	c.logger.Debug("security type negotiated", securityTypeField(chosen))

	c.mu.Lock()
	c.state = AwaitingInit
	c.mu.Unlock()

	serverInit, err := performInitClient(c.c, !c.config.Exclusive)
	if err != nil {
		c.logger.Debug("server init failed", Field{Key: "error", Value: err})
		c.mu.Lock()
		c.state = Closed
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.state = Established
	c.fbWidth = serverInit.FramebufferWidth
	c.fbHeight = serverInit.FramebufferHeight
	c.desktopName = serverInit.Name
	c.pixelFormat = serverInit.PixelFormat
	c.mu.Unlock()

	c.logger.Debug("session established", sessionStateField(Established))

	return nil
}

// Close terminates the connection and cancels any in-flight Send/ReadEvent
// calls. Safe to call more than once.
func (c *ClientConn) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	c.state = Closed
	c.mu.Unlock()
	return c.c.Close()
}

// Send writes one client-to-server message, honoring ctx and the
// connection's configured WriteTimeout.
func (c *ClientConn) Send(ctx context.Context, msg C2S) error {
	var buf bytes.Buffer
	if err := msg.WriteTo(&buf); err != nil {
		return err
	}
	if c.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.WriteTimeout)
		defer cancel()
	}
	return c.writeWithContext(ctx, buf.Bytes())
}

// SetPixelFormat sends a SetPixelFormat message and records pf as the
// format subsequent FramebufferUpdate rectangles will arrive in.
func (c *ClientConn) SetPixelFormat(ctx context.Context, pf PixelFormat) error {
	if err := newInputValidator().ValidatePixelFormat(&pf); err != nil {
		return err
	}
	c.mu.Lock()
	c.pixelFormat = pf
	c.mu.Unlock()
	return c.Send(ctx, SetPixelFormat{PixelFormat: pf})
}

// SetEncodings sends a SetEncodings message.
func (c *ClientConn) SetEncodings(ctx context.Context, encs []Encoding) error {
	return c.Send(ctx, SetEncodings{Encodings: encs})
}

// FramebufferUpdateRequest sends a FramebufferUpdateRequest message.
func (c *ClientConn) FramebufferUpdateRequest(ctx context.Context, incremental bool, x, y, width, height uint16) error {
	c.mu.RLock()
	fbWidth, fbHeight := c.fbWidth, c.fbHeight
	c.mu.RUnlock()
	if err := newInputValidator().ValidateRectangle(x, y, width, height, fbWidth, fbHeight); err != nil {
		return err
	}
	return c.Send(ctx, FramebufferUpdateRequest{Incremental: incremental, X: x, Y: y, Width: width, Height: height})
}

// KeyEvent sends a KeyEvent message.
func (c *ClientConn) KeyEvent(ctx context.Context, keysym uint32, down bool) error {
	if err := newInputValidator().ValidateKeySymbol(keysym); err != nil {
		return err
	}
	return c.Send(ctx, KeyEvent{Down: down, Key: keysym})
}

// QEMUExtendedKeyEvent sends a QEMUExtendedKeyEvent message.
func (c *ClientConn) QEMUExtendedKeyEvent(ctx context.Context, keysym, keycode uint32, down bool) error {
	if err := newInputValidator().ValidateQEMUKeyEvent(keysym, keycode); err != nil {
		return err
	}
	return c.Send(ctx, QEMUExtendedKeyEvent{Down: down, Keysym: keysym, Keycode: keycode})
}

// PointerEvent sends a PointerEvent message.
func (c *ClientConn) PointerEvent(ctx context.Context, mask ButtonMask, x, y uint16) error {
	c.mu.RLock()
	fbWidth, fbHeight := c.fbWidth, c.fbHeight
	c.mu.RUnlock()
	if err := newInputValidator().ValidatePointerPosition(x, y, fbWidth, fbHeight); err != nil {
		return err
	}
	return c.Send(ctx, PointerEvent{ButtonMask: uint8(mask), X: x, Y: y})
}

// CutText sends a CutText (clipboard) message.
func (c *ClientConn) CutText(ctx context.Context, text string) error {
	validator := newInputValidator()
	if err := validator.ValidateTextData(text, MaxClipboardLength); err != nil {
		return err
	}
	return c.Send(ctx, CutText{Text: validator.SanitizeText(text)})
}

// ReadEvent blocks until the next ServerEvent is available, ctx is
// cancelled, or the connection closes. Each rectangle of a
// FramebufferUpdate is returned as its own FramebufferRectangle event, so
// callers can start acting on early rectangles of a large update without
// waiting for the rest.
func (c *ClientConn) ReadEvent(ctx context.Context) (ServerEvent, error) {
	if c.config.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ReadTimeout)
		defer cancel()
	}

	type result struct {
		event ServerEvent
		err   error
	}
	done := make(chan result, 1)
	go func() {
		ev, err := c.readEvent()
		done <- result{ev, err}
	}()

	select {
	case r := <-done:
		return r.event, r.err
	case <-ctx.Done():
		return nil, ioError("ClientConn.ReadEvent", ctx.Err())
	case <-c.ctx.Done():
		return nil, disconnectedError("ClientConn.ReadEvent")
	}
}

// readEvent does the actual blocking work behind ReadEvent: it continues
// an in-progress FramebufferUpdate if one is pending, otherwise reads the
// next S2C header and either starts a new update or returns it directly.
func (c *ClientConn) readEvent() (ServerEvent, error) {
	for {
		c.mu.Lock()
		remaining := c.fbRemaining
		pf := c.pixelFormat
		c.mu.Unlock()

		if remaining > 0 {
			dr, err := ReadRectangle(c.c, pf, c.zrleReader)
			if err != nil {
				return nil, err
			}
			c.logger.Debug("framebuffer rectangle decoded", rectField(dr.Rectangle.Rect), Field{Key: "encoding", Value: dr.Rectangle.Encoding})
			c.mu.Lock()
			c.fbRemaining--
			c.mu.Unlock()
			return FramebufferRectangle{DecodedRectangle: dr}, nil
		}

		msg, err := ReadS2CHeader(c.c)
		if err != nil {
			return nil, err
		}

		switch m := msg.(type) {
		case FramebufferUpdateHeader:
			if m.Count == 0 {
				continue
			}
			c.mu.Lock()
			c.fbRemaining = int(m.Count)
			c.mu.Unlock()
			continue
		case ServerEvent:
			return m, nil
		default:
			return nil, unexpectedError("ClientConn.ReadEvent", "server to client message type")
		}
	}
}

// EnableZRLE activates persistent ZRLE decompression for subsequent
// FramebufferUpdate rectangles. Call this once the client has advertised
// EncodingZrle via SetEncodings and before reading the first ZRLE
// rectangle; the inflate stream must persist for the connection's
// lifetime.
func (c *ClientConn) EnableZRLE() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zrleReader = zrle.NewReader()
}

// FramebufferSize returns the negotiated framebuffer dimensions.
func (c *ClientConn) FramebufferSize() (width, height uint16) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fbWidth, c.fbHeight
}

// DesktopName returns the server's advertised desktop name.
func (c *ClientConn) DesktopName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.desktopName
}

// PixelFormat returns the pixel format currently in effect for decoding
// incoming rectangles.
func (c *ClientConn) PixelFormat() PixelFormat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pixelFormat
}

// State returns the connection's current handshake/session state.
func (c *ClientConn) State() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// RawConn returns the underlying transport. Intended for Proxy, which
// forwards raw bytes once the handshake completes rather than decoding
// individual messages.
func (c *ClientConn) RawConn() net.Conn {
	return c.c
}

// writeWithContext writes data to the connection, honoring ctx
// cancellation even though net.Conn.Write itself is not context-aware.
func (c *ClientConn) writeWithContext(ctx context.Context, data []byte) error {
	done := make(chan error, 1)
	go func() {
		_, err := c.c.Write(data)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return ioError("ClientConn.writeWithContext", err)
		}
		return nil
	case <-ctx.Done():
		return ioError("ClientConn.writeWithContext", ctx.Err())
	}
}

var _ io.Closer = (*ClientConn)(nil)
