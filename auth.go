// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"context"
	"io"
	"math/big"
	"sync"
	"time"
)

// ClientAuth is one client-side security type's handshake implementation,
// run after the server has been told which SecurityType was selected.
type ClientAuth interface {
	SecurityType() SecurityType
	Handshake(ctx context.Context, rw io.ReadWriter) error
	String() string
}

// ClientAuthNone implements the None security type (1): no bytes exchanged.
type ClientAuthNone struct {
	logger Logger
}

func (c *ClientAuthNone) SecurityType() SecurityType { return SecurityTypeNone }

func (c *ClientAuthNone) Handshake(ctx context.Context, rw io.ReadWriter) error {
	const op = "ClientAuthNone.Handshake"
	select {
	case <-ctx.Done():
		return ioError(op, ctx.Err())
	default:
	}
	if c.logger != nil {
		c.logger.Debug("authentication handshake completed", securityTypeField(SecurityTypeNone))
	}
	return nil
}

func (c *ClientAuthNone) String() string { return "None" }

// SetLogger sets the logger used by this authentication method.
func (c *ClientAuthNone) SetLogger(logger Logger) { c.logger = logger }

// PasswordAuth implements VNC Authentication (security type 2): a 16-byte
// DES challenge-response keyed from a password.
type PasswordAuth struct {
	Password     string
	logger       Logger
	secureMemory *SecureMemory
}

// NewPasswordAuth returns a PasswordAuth that authenticates with password.
func NewPasswordAuth(password string) *PasswordAuth {
	return &PasswordAuth{
		Password:     password,
		secureMemory: &SecureMemory{},
	}
}

func (p *PasswordAuth) SecurityType() SecurityType { return SecurityTypeVncAuthentication }

// Handshake reads the server's 16-byte challenge, encrypts it with the
// password, and writes back the 16-byte response.
func (p *PasswordAuth) Handshake(ctx context.Context, rw io.ReadWriter) error {
	const op = "PasswordAuth.Handshake"
	select {
	case <-ctx.Done():
		return ioError(op, ctx.Err())
	default:
	}

	if p.secureMemory == nil {
		p.secureMemory = &SecureMemory{}
	}

	memProtection := newMemoryProtection()
	challengeBuffer := memProtection.NewProtectedBytes(VNCChallengeSize)
	defer challengeBuffer.Clear()

	if err := readFull(op, rw, challengeBuffer.Data(), false); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ioError(op, ctx.Err())
	default:
	}

	crypted, err := p.encrypt(p.Password, challengeBuffer.Data())
	if err != nil {
		return authenticationFailureError(op, "failed to encrypt password challenge")
	}

	responseBuffer := memProtection.NewProtectedBytes(len(crypted))
	defer responseBuffer.Clear()

	if err := responseBuffer.Copy(crypted); err != nil {
		return err
	}
	p.secureMemory.ClearBytes(crypted)

	if _, err := rw.Write(responseBuffer.Data()); err != nil {
		return ioError(op, err)
	}

	if p.logger != nil {
		p.logger.Debug("authentication handshake completed", securityTypeField(SecurityTypeVncAuthentication))
	}

	return nil
}

func (p *PasswordAuth) String() string { return "VNC Password" }

// SetLogger sets the logger used by this authentication method.
func (p *PasswordAuth) SetLogger(logger Logger) { p.logger = logger }

// ClearPassword securely clears the password from memory.
func (p *PasswordAuth) ClearPassword() {
	if p.secureMemory != nil && p.Password != "" {
		p.Password = p.secureMemory.ClearString(p.Password)
	}
}

// encrypt DES-encrypts challenge with key under constant-time timing
// protection, so success and failure take approximately the same time.
func (p *PasswordAuth) encrypt(key string, challenge []byte) ([]byte, error) {
	secureCipher := newSecureDESCipher()
	timingProtection := newTimingProtection()

	var result []byte
	err := timingProtection.ConstantTimeAuthentication(func() error {
		var err error
		result, err = secureCipher.EncryptVNCChallenge(key, challenge)
		return err
	}, 50*time.Millisecond)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// AppleRemoteDesktopAuth implements the Apple Remote Desktop security type
// (30): a Diffie-Hellman key exchange followed by an AES-128-ECB-encrypted
// username/password pair. The wire shape (u16 generator, u16 key length,
// prime, peer public key, then a 128-byte ciphertext and this side's public
// key) follows the reference implementation's AppleAuthHandshake/
// AppleAuthResponse.
type AppleRemoteDesktopAuth struct {
	Username string
	Password string
	logger   Logger
}

// NewAppleRemoteDesktopAuth returns an AppleRemoteDesktopAuth that
// authenticates with the given username and password.
func NewAppleRemoteDesktopAuth(username, password string) *AppleRemoteDesktopAuth {
	return &AppleRemoteDesktopAuth{Username: username, Password: password}
}

func (a *AppleRemoteDesktopAuth) SecurityType() SecurityType { return SecurityTypeAppleRemoteDesktop }

func (a *AppleRemoteDesktopAuth) Handshake(ctx context.Context, rw io.ReadWriter) error {
	const op = "AppleRemoteDesktopAuth.Handshake"
	select {
	case <-ctx.Done():
		return ioError(op, ctx.Err())
	default:
	}

	generator, err := readUint16(op, rw)
	if err != nil {
		return err
	}
	keyLength, err := readUint16(op, rw)
	if err != nil {
		return err
	}
	primeBytes := make([]byte, keyLength)
	if err := readFull(op, rw, primeBytes, false); err != nil {
		return err
	}
	peerKeyBytes := make([]byte, keyLength)
	if err := readFull(op, rw, peerKeyBytes, false); err != nil {
		return err
	}

	prime := new(big.Int).SetBytes(primeBytes)
	peerPub := new(big.Int).SetBytes(peerKeyBytes)
	kp, err := newARDKeyPair(big.NewInt(int64(generator)), prime)
	if err != nil {
		return err
	}
	shared := kp.sharedSecret(peerPub)

	ciphertext, err := encryptARDCredentials(a.Username, a.Password, shared)
	if err != nil {
		return err
	}

	pubBytes := make([]byte, keyLength)
	kp.Pub.FillBytes(pubBytes)

	if _, err := rw.Write(ciphertext); err != nil {
		return ioError(op, err)
	}
	if _, err := rw.Write(pubBytes); err != nil {
		return ioError(op, err)
	}

	if a.logger != nil {
		a.logger.Debug("authentication handshake completed", securityTypeField(SecurityTypeAppleRemoteDesktop), Field{Key: "key_bits", Value: keyLength * 8})
	}
	return nil
}

func (a *AppleRemoteDesktopAuth) String() string { return "Apple Remote Desktop" }

// SetLogger sets the logger used by this authentication method.
func (a *AppleRemoteDesktopAuth) SetLogger(logger Logger) { a.logger = logger }

// AuthFactory creates a new instance of an authentication method.
type AuthFactory func() ClientAuth

// AuthRegistry manages the set of authentication methods a client supports
// and negotiates the mutually preferred one against a server's offer list.
type AuthRegistry struct {
	factories map[SecurityType]AuthFactory
	mu        sync.RWMutex
	logger    Logger
}

// NewAuthRegistry returns a registry pre-populated with None and VNC
// Password authentication.
func NewAuthRegistry() *AuthRegistry {
	registry := &AuthRegistry{
		factories: make(map[SecurityType]AuthFactory),
		logger:    &NoOpLogger{},
	}

	registry.Register(SecurityTypeNone, func() ClientAuth {
		return &ClientAuthNone{}
	})
	registry.Register(SecurityTypeVncAuthentication, func() ClientAuth {
		return &PasswordAuth{}
	})

	return registry
}

// Register adds an authentication method factory to the registry.
func (r *AuthRegistry) Register(securityType SecurityType, factory AuthFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[securityType] = factory
}

// Unregister removes an authentication method from the registry.
func (r *AuthRegistry) Unregister(securityType SecurityType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[securityType]; exists {
		delete(r.factories, securityType)
		return true
	}
	return false
}

// CreateAuth creates a new instance of the authentication method for the
// given security type.
func (r *AuthRegistry) CreateAuth(securityType SecurityType) (ClientAuth, error) {
	const op = "AuthRegistry.CreateAuth"
	r.mu.RLock()
	factory, exists := r.factories[securityType]
	r.mu.RUnlock()

	if !exists {
		return nil, authenticationUnavailableError(op)
	}
	return factory(), nil
}

// GetSupportedTypes returns all security types this registry can authenticate.
func (r *AuthRegistry) GetSupportedTypes() []SecurityType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]SecurityType, 0, len(r.factories))
	for securityType := range r.factories {
		types = append(types, securityType)
	}
	return types
}

// IsSupported reports whether securityType is registered.
func (r *AuthRegistry) IsSupported(securityType SecurityType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[securityType]
	return exists
}

// SetLogger sets the logger used by the registry.
func (r *AuthRegistry) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// NegotiateAuth picks the first security type from preferredOrder (or
// serverTypes, if preferredOrder is nil) that the server offered and this
// registry supports.
func (r *AuthRegistry) NegotiateAuth(ctx context.Context, serverTypes []SecurityType, preferredOrder []SecurityType) (ClientAuth, SecurityType, error) {
	const op = "AuthRegistry.NegotiateAuth"
	select {
	case <-ctx.Done():
		return nil, SecurityType{}, ioError(op, ctx.Err())
	default:
	}

	if err := newInputValidator().ValidateSecurityTypes(SecurityTypes(serverTypes)); err != nil {
		return nil, SecurityType{}, err
	}

	if preferredOrder == nil {
		preferredOrder = serverTypes
	}

	for _, preferred := range preferredOrder {
		for _, offered := range serverTypes {
			if preferred.Equal(offered) && r.IsSupported(preferred) {
				auth, err := r.CreateAuth(preferred)
				if err != nil {
					continue
				}
				return auth, preferred, nil
			}
		}
	}

	return nil, SecurityType{}, authenticationUnavailableError(op)
}

// ValidateAuthMethod performs basic sanity checks on an authentication
// method before it is used.
func (r *AuthRegistry) ValidateAuthMethod(auth ClientAuth) error {
	const op = "AuthRegistry.ValidateAuthMethod"
	if auth == nil {
		return validationError(op, "authentication method is nil")
	}

	switch a := auth.(type) {
	case *PasswordAuth:
		if a.Password == "" {
			return validationError(op, "password authentication requires non-empty password")
		}
	case *AppleRemoteDesktopAuth:
		if a.Username == "" || a.Password == "" {
			return validationError(op, "apple remote desktop authentication requires non-empty username and password")
		}
	case *ClientAuthNone:
		// No validation required.
	}

	return nil
}
