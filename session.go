// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"context"
	"io"
)

// SessionState is one state in the handshake's Version -> Security -> Init
// progression. Established is reached once all three phases complete;
// Closed is a terminal sink reachable from any state on a fatal error.
type SessionState int

const (
	AwaitingVersion SessionState = iota
	AwaitingSecurityList
	AwaitingSecurityResult
	AwaitingInit
	Established
	Closed
)

func (s SessionState) String() string {
	switch s {
	case AwaitingVersion:
		return "AwaitingVersion"
	case AwaitingSecurityList:
		return "AwaitingSecurityList"
	case AwaitingSecurityResult:
		return "AwaitingSecurityResult"
	case AwaitingInit:
		return "AwaitingInit"
	case Established:
		return "Established"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// negotiateVersionClient reads the server's advertised version, picks the
// highest version this client supports that does not exceed it, and writes
// that choice back.
func negotiateVersionClient(rw io.ReadWriter, maxSupported Version) (Version, error) {
	serverVersion, err := ReadVersion(rw)
	if err != nil {
		return 0, err
	}
	chosen := serverVersion
	if maxSupported < serverVersion {
		chosen = maxSupported
	}
	if err := chosen.WriteTo(rw); err != nil {
		return 0, err
	}
	return chosen, nil
}

// negotiateVersionServer writes serverVersion, reads the client's chosen
// version, and returns it as the negotiated version.
func negotiateVersionServer(rw io.ReadWriter, serverVersion Version) (Version, error) {
	if err := serverVersion.WriteTo(rw); err != nil {
		return 0, err
	}
	clientVersion, err := ReadVersion(rw)
	if err != nil {
		return 0, err
	}
	if clientVersion > serverVersion {
		return 0, unexpectedError("negotiateVersionServer", "protocol version")
	}
	return clientVersion, nil
}

// negotiateSecurityClient runs the client side of Phase 2: reads the
// server's offer (shape depends on version), picks a mutually supported
// security type via registry, performs its handshake, and reads the final
// SecurityResult.
func negotiateSecurityClient(ctx context.Context, rw io.ReadWriter, version Version, registry *AuthRegistry, preferredOrder []SecurityType) (SecurityType, error) {
	const op = "negotiateSecurityClient"

	var chosen SecurityType
	var auth ClientAuth

	if version == V33 {
		t, err := readUint32(op, rw)
		if err != nil {
			return SecurityType{}, err
		}
		if t == 0 {
			reason, err := readLatin1String(op, rw)
			if err != nil {
				return SecurityType{}, err
			}
			return SecurityType{}, serverError(op, reason)
		}
		st := securityTypeFromByte(uint8(t))
		a, err := registry.CreateAuth(st)
		if err != nil {
			return SecurityType{}, authenticationUnavailableError(op)
		}
		chosen, auth = st, a
	} else {
		offered, err := ReadSecurityTypes(rw)
		if err != nil {
			return SecurityType{}, err
		}
		if len(offered) == 0 {
			reason, err := readLatin1String(op, rw)
			if err != nil {
				return SecurityType{}, err
			}
			return SecurityType{}, serverError(op, reason)
		}
		a, st, err := registry.NegotiateAuth(ctx, offered, preferredOrder)
		if err != nil {
			return SecurityType{}, err
		}
		if err := st.WriteTo(rw); err != nil {
			return SecurityType{}, err
		}
		chosen, auth = st, a
	}

	if err := auth.Handshake(ctx, rw); err != nil {
		return chosen, err
	}

	skipResult := chosen.Equal(SecurityTypeNone) && version != V38
	if skipResult {
		return chosen, nil
	}

	result, err := ReadSecurityResult(rw)
	if err != nil {
		return chosen, err
	}
	if result == SecurityResultFailed {
		if version == V38 {
			reason, err := readLatin1String(op, rw)
			if err != nil {
				return chosen, err
			}
			return chosen, authenticationFailureError(op, reason)
		}
		return chosen, authenticationFailureError(op, "")
	}
	return chosen, nil
}

// negotiateSecurityServer runs the server side of Phase 2: offers the
// configured security types (or rejects with reason if none are
// configured), reads the client's choice, runs that type's ServerAuth, and
// writes the SecurityResult.
func negotiateSecurityServer(ctx context.Context, rw io.ReadWriter, version Version, auths []ServerAuth, rejectReason string) (SecurityType, error) {
	const op = "negotiateSecurityServer"

	if version == V33 {
		if len(auths) == 0 {
			if err := writeUint32(op, rw, 0); err != nil {
				return SecurityType{}, err
			}
			if err := writeLatin1String(op, rw, rejectReason); err != nil {
				return SecurityType{}, err
			}
			return SecurityType{}, authenticationUnavailableError(op)
		}
		chosen := auths[0]
		if err := writeUint32(op, rw, uint32(chosen.SecurityType().byte())); err != nil {
			return SecurityType{}, err
		}
		return chosen.SecurityType(), runServerAuth(ctx, rw, version, chosen)
	}

	types := make(SecurityTypes, len(auths))
	for i, a := range auths {
		types[i] = a.SecurityType()
	}
	if len(types) == 0 {
		if err := writeByte(op, rw, 0); err != nil {
			return SecurityType{}, err
		}
		if err := writeLatin1String(op, rw, rejectReason); err != nil {
			return SecurityType{}, err
		}
		return SecurityType{}, authenticationUnavailableError(op)
	}
	if err := types.WriteTo(rw); err != nil {
		return SecurityType{}, err
	}

	chosenByte, err := readByte(op, rw)
	if err != nil {
		return SecurityType{}, err
	}
	chosenType := securityTypeFromByte(chosenByte)
	var chosen ServerAuth
	for _, a := range auths {
		if a.SecurityType().Equal(chosenType) {
			chosen = a
			break
		}
	}
	if chosen == nil {
		return chosenType, authenticationUnavailableError(op)
	}
	return chosenType, runServerAuth(ctx, rw, version, chosen)
}

// runServerAuth runs one ServerAuth's handshake and writes the resulting
// SecurityResult, following the per-version rules on whether a result (and
// reason string) is sent at all.
func runServerAuth(ctx context.Context, rw io.ReadWriter, version Version, auth ServerAuth) error {
	const op = "runServerAuth"
	handshakeErr := auth.Handshake(ctx, rw)

	skipResult := auth.SecurityType().Equal(SecurityTypeNone) && version != V38
	if skipResult {
		if handshakeErr != nil {
			return handshakeErr
		}
		return nil
	}

	if handshakeErr != nil {
		if err := SecurityResultFailed.WriteTo(rw); err != nil {
			return err
		}
		if version == V38 {
			reason := "authentication failed"
			if rfbErr, ok := handshakeErr.(*RFBError); ok {
				reason = rfbErr.Message
			}
			if err := writeLatin1String(op, rw, reason); err != nil {
				return err
			}
		}
		return handshakeErr
	}

	return SecurityResultSucceeded.WriteTo(rw)
}

// performInitClient writes ClientInit and reads ServerInit, completing
// Phase 3.
func performInitClient(rw io.ReadWriter, shared bool) (ServerInit, error) {
	if err := (ClientInit{Shared: shared}).WriteTo(rw); err != nil {
		return ServerInit{}, err
	}
	return ReadServerInit(rw)
}

// performInitServer reads ClientInit and writes ServerInit, completing
// Phase 3.
func performInitServer(rw io.ReadWriter, init ServerInit) (ClientInit, error) {
	ci, err := ReadClientInit(rw)
	if err != nil {
		return ClientInit{}, err
	}
	if err := init.WriteTo(rw); err != nil {
		return ClientInit{}, err
	}
	return ci, nil
}
