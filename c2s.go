// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import "io"

// C2S is a client-to-server message. Each concrete type below is a wire
// variant; unlike Encoding or SecurityType, an unrecognized C2S message
// type byte is a hard protocol error rather than an Unknown passthrough
// (this matches the wire format's reference implementation, which treats
// unknown client messages as unrecoverable framing violations too).
type C2S interface {
	c2sMessageType() byte
	WriteTo(w io.Writer) error
}

const (
	c2sSetPixelFormat         = 0
	c2sSetEncodings           = 2
	c2sFramebufferUpdateRequest = 3
	c2sKeyEvent               = 4
	c2sPointerEvent           = 5
	c2sCutText                = 6
	c2sExtended               = 255

	qemuExtendedKeyEvent = 0
)

// SetPixelFormat is C2S type 0.
type SetPixelFormat struct {
	PixelFormat PixelFormat
}

func (SetPixelFormat) c2sMessageType() byte { return c2sSetPixelFormat }

func (m SetPixelFormat) WriteTo(w io.Writer) error {
	const op = "SetPixelFormat.Write"
	if err := writeByte(op, w, c2sSetPixelFormat); err != nil {
		return err
	}
	if err := writePad(op, w, 3); err != nil {
		return err
	}
	return m.PixelFormat.WriteTo(w)
}

// SetEncodings is C2S type 2.
type SetEncodings struct {
	Encodings []Encoding
}

func (SetEncodings) c2sMessageType() byte { return c2sSetEncodings }

func (m SetEncodings) WriteTo(w io.Writer) error {
	const op = "SetEncodings.Write"
	if err := writeByte(op, w, c2sSetEncodings); err != nil {
		return err
	}
	if err := writePad(op, w, 1); err != nil {
		return err
	}
	if err := writeUint16(op, w, uint16(len(m.Encodings))); err != nil {
		return err
	}
	for _, e := range m.Encodings {
		if err := e.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// FramebufferUpdateRequest is C2S type 3.
type FramebufferUpdateRequest struct {
	Incremental bool
	X, Y        uint16
	Width       uint16
	Height      uint16
}

func (FramebufferUpdateRequest) c2sMessageType() byte { return c2sFramebufferUpdateRequest }

func (m FramebufferUpdateRequest) WriteTo(w io.Writer) error {
	const op = "FramebufferUpdateRequest.Write"
	if err := writeByte(op, w, c2sFramebufferUpdateRequest); err != nil {
		return err
	}
	var inc byte
	if m.Incremental {
		inc = 1
	}
	if err := writeByte(op, w, inc); err != nil {
		return err
	}
	for _, v := range []uint16{m.X, m.Y, m.Width, m.Height} {
		if err := writeUint16(op, w, v); err != nil {
			return err
		}
	}
	return nil
}

// KeyEvent is C2S type 4.
type KeyEvent struct {
	Down bool
	Key  uint32
}

func (KeyEvent) c2sMessageType() byte { return c2sKeyEvent }

func (m KeyEvent) WriteTo(w io.Writer) error {
	const op = "KeyEvent.Write"
	if err := writeByte(op, w, c2sKeyEvent); err != nil {
		return err
	}
	var down byte
	if m.Down {
		down = 1
	}
	if err := writeByte(op, w, down); err != nil {
		return err
	}
	if err := writePad(op, w, 2); err != nil {
		return err
	}
	return writeUint32(op, w, m.Key)
}

// PointerEvent is C2S type 5.
type PointerEvent struct {
	ButtonMask uint8
	X, Y       uint16
}

func (PointerEvent) c2sMessageType() byte { return c2sPointerEvent }

func (m PointerEvent) WriteTo(w io.Writer) error {
	const op = "PointerEvent.Write"
	if err := writeByte(op, w, c2sPointerEvent); err != nil {
		return err
	}
	if err := writeByte(op, w, m.ButtonMask); err != nil {
		return err
	}
	if err := writeUint16(op, w, m.X); err != nil {
		return err
	}
	return writeUint16(op, w, m.Y)
}

// CutText is C2S type 6.
type CutText struct {
	Text string
}

func (CutText) c2sMessageType() byte { return c2sCutText }

func (m CutText) WriteTo(w io.Writer) error {
	const op = "CutText.Write"
	// Type byte, three padding bytes, then the length-prefixed string.
	if err := writeByte(op, w, c2sCutText); err != nil {
		return err
	}
	if err := writePad(op, w, 3); err != nil {
		return err
	}
	return writeLatin1String(op, w, m.Text)
}

// QEMUExtendedKeyEvent is C2S type 255, sub-type 0.
type QEMUExtendedKeyEvent struct {
	Down    bool
	Keysym  uint32
	Keycode uint32
}

func (QEMUExtendedKeyEvent) c2sMessageType() byte { return c2sExtended }

func (m QEMUExtendedKeyEvent) WriteTo(w io.Writer) error {
	const op = "QEMUExtendedKeyEvent.Write"
	if err := writeByte(op, w, c2sExtended); err != nil {
		return err
	}
	if err := writeByte(op, w, qemuExtendedKeyEvent); err != nil {
		return err
	}
	var down uint16
	if m.Down {
		down = 1
	}
	if err := writeUint16(op, w, down); err != nil {
		return err
	}
	if err := writeUint32(op, w, m.Keysym); err != nil {
		return err
	}
	return writeUint32(op, w, m.Keycode)
}

// ReadC2S reads one client-to-server message. EOF before any byte of a new
// message is Disconnected; any other framing violation is Unexpected.
func ReadC2S(r io.Reader) (C2S, error) {
	const op = "C2S.Read"
	t, err := readByteAtBoundary(op, r)
	if err != nil {
		return nil, err
	}
	switch t {
	case c2sSetPixelFormat:
		if err := readPad(op, r, 3); err != nil {
			return nil, err
		}
		pf, err := ReadPixelFormat(r)
		if err != nil {
			return nil, err
		}
		return SetPixelFormat{PixelFormat: pf}, nil
	case c2sSetEncodings:
		if err := readPad(op, r, 1); err != nil {
			return nil, err
		}
		count, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		encs := make([]Encoding, 0, count)
		for i := 0; i < int(count); i++ {
			e, err := ReadEncoding(r)
			if err != nil {
				return nil, err
			}
			encs = append(encs, e)
		}
		return SetEncodings{Encodings: encs}, nil
	case c2sFramebufferUpdateRequest:
		incByte, err := readByte(op, r)
		if err != nil {
			return nil, err
		}
		x, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		y, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		width, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		height, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		return FramebufferUpdateRequest{Incremental: incByte != 0, X: x, Y: y, Width: width, Height: height}, nil
	case c2sKeyEvent:
		downByte, err := readByte(op, r)
		if err != nil {
			return nil, err
		}
		if err := readPad(op, r, 2); err != nil {
			return nil, err
		}
		key, err := readUint32(op, r)
		if err != nil {
			return nil, err
		}
		return KeyEvent{Down: downByte != 0, Key: key}, nil
	case c2sPointerEvent:
		mask, err := readByte(op, r)
		if err != nil {
			return nil, err
		}
		x, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		y, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		return PointerEvent{ButtonMask: mask, X: x, Y: y}, nil
	case c2sCutText:
		if err := readPad(op, r, 3); err != nil {
			return nil, err
		}
		text, err := readLatin1String(op, r)
		if err != nil {
			return nil, err
		}
		return CutText{Text: text}, nil
	case c2sExtended:
		sub, err := readByte(op, r)
		if err != nil {
			return nil, err
		}
		if sub != qemuExtendedKeyEvent {
			return nil, unexpectedError(op, "client to server QEMU submessage type")
		}
		downVal, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		keysym, err := readUint32(op, r)
		if err != nil {
			return nil, err
		}
		keycode, err := readUint32(op, r)
		if err != nil {
			return nil, err
		}
		return QEMUExtendedKeyEvent{Down: downVal != 0, Keysym: keysym, Keycode: keycode}, nil
	default:
		return nil, unexpectedError(op, "client to server message type")
	}
}
