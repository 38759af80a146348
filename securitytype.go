// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import "io"

// SecurityType is a tagged variant over the one-byte security type code.
// Unknown preserves any value outside the four recognized codes so it can
// round-trip losslessly (important for proxies that forward negotiation
// without interpreting it).
type SecurityType struct {
	kind securityTypeKind
	n    uint8 // valid only when kind == securityTypeUnknown
}

type securityTypeKind uint8

const (
	securityTypeInvalid securityTypeKind = iota
	securityTypeNone
	securityTypeVncAuthentication
	securityTypeAppleRemoteDesktop
	securityTypeUnknown
)

var (
	SecurityTypeInvalid            = SecurityType{kind: securityTypeInvalid}
	SecurityTypeNone               = SecurityType{kind: securityTypeNone}
	SecurityTypeVncAuthentication  = SecurityType{kind: securityTypeVncAuthentication}
	SecurityTypeAppleRemoteDesktop = SecurityType{kind: securityTypeAppleRemoteDesktop}
)

// UnknownSecurityType constructs a SecurityType carrying an unrecognized
// wire value.
func UnknownSecurityType(n uint8) SecurityType {
	return SecurityType{kind: securityTypeUnknown, n: n}
}

// IsUnknown reports whether this is an Unknown(n) variant, returning n.
func (s SecurityType) IsUnknown() (uint8, bool) {
	if s.kind == securityTypeUnknown {
		return s.n, true
	}
	return 0, false
}

func (s SecurityType) byte() uint8 {
	switch s.kind {
	case securityTypeInvalid:
		return 0
	case securityTypeNone:
		return 1
	case securityTypeVncAuthentication:
		return 2
	case securityTypeAppleRemoteDesktop:
		return 30
	default:
		return s.n
	}
}

func securityTypeFromByte(b uint8) SecurityType {
	switch b {
	case 0:
		return SecurityTypeInvalid
	case 1:
		return SecurityTypeNone
	case 2:
		return SecurityTypeVncAuthentication
	case 30:
		return SecurityTypeAppleRemoteDesktop
	default:
		return UnknownSecurityType(b)
	}
}

func (s SecurityType) String() string {
	switch s.kind {
	case securityTypeInvalid:
		return "Invalid"
	case securityTypeNone:
		return "None"
	case securityTypeVncAuthentication:
		return "VncAuthentication"
	case securityTypeAppleRemoteDesktop:
		return "AppleRemoteDesktop"
	default:
		return "Unknown"
	}
}

func (s SecurityType) Equal(other SecurityType) bool {
	return s.kind == other.kind && (s.kind != securityTypeUnknown || s.n == other.n)
}

// ReadSecurityType reads the one-byte security type code.
func ReadSecurityType(r io.Reader) (SecurityType, error) {
	b, err := readByte("SecurityType.Read", r)
	if err != nil {
		return SecurityType{}, err
	}
	return securityTypeFromByte(b), nil
}

// WriteTo writes the one-byte security type code.
func (s SecurityType) WriteTo(w io.Writer) error {
	return writeByte("SecurityType.Write", w, s.byte())
}

// SecurityTypes is the >=3.7 negotiation list: a u8 count followed by that
// many SecurityType bytes.
type SecurityTypes []SecurityType

// ReadSecurityTypes reads a SecurityTypes list.
func ReadSecurityTypes(r io.Reader) (SecurityTypes, error) {
	const op = "SecurityTypes.Read"
	count, err := readByte(op, r)
	if err != nil {
		return nil, err
	}
	out := make(SecurityTypes, 0, count)
	for i := 0; i < int(count); i++ {
		st, err := ReadSecurityType(r)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// WriteTo writes a SecurityTypes list.
func (s SecurityTypes) WriteTo(w io.Writer) error {
	const op = "SecurityTypes.Write"
	if err := writeByte(op, w, uint8(len(s))); err != nil {
		return err
	}
	for _, st := range s {
		if err := st.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// SecurityResult is the two-valued outcome of a security handshake,
// encoded as a big-endian u32.
type SecurityResult int

const (
	SecurityResultSucceeded SecurityResult = iota
	SecurityResultFailed
)

// ReadSecurityResult reads the four-byte security result.
func ReadSecurityResult(r io.Reader) (SecurityResult, error) {
	const op = "SecurityResult.Read"
	v, err := readUint32(op, r)
	if err != nil {
		return 0, err
	}
	switch v {
	case 0:
		return SecurityResultSucceeded, nil
	case 1:
		return SecurityResultFailed, nil
	default:
		return 0, unexpectedError(op, "security result")
	}
}

// WriteTo writes the four-byte security result.
func (s SecurityResult) WriteTo(w io.Writer) error {
	const op = "SecurityResult.Write"
	var v uint32
	if s == SecurityResultFailed {
		v = 1
	}
	return writeUint32(op, w, v)
}
