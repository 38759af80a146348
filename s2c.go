// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import "io"

const (
	s2cFramebufferUpdate    = 0
	s2cSetColourMapEntries  = 1
	s2cBell                 = 2
	s2cCutText              = 3
)

// S2C is a server-to-client message.
type S2C interface {
	s2cMessageType() byte
}

// FramebufferUpdateHeader is the base S2C type 0 message: just the
// rectangle count. The caller reads that many Rectangles (with their
// encoding-specific payloads) separately; see fbupdate.go.
type FramebufferUpdateHeader struct {
	Count uint16
}

func (FramebufferUpdateHeader) s2cMessageType() byte { return s2cFramebufferUpdate }

// SetColourMapEntries is S2C type 1.
type SetColourMapEntries struct {
	FirstColour uint16
	Colours     []Colour
}

func (SetColourMapEntries) s2cMessageType() byte { return s2cSetColourMapEntries }

func (m SetColourMapEntries) WriteTo(w io.Writer) error {
	const op = "SetColourMapEntries.Write"
	if err := writeByte(op, w, s2cSetColourMapEntries); err != nil {
		return err
	}
	if err := writePad(op, w, 1); err != nil {
		return err
	}
	if err := writeUint16(op, w, m.FirstColour); err != nil {
		return err
	}
	if err := writeUint16(op, w, uint16(len(m.Colours))); err != nil {
		return err
	}
	for _, c := range m.Colours {
		if err := c.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// Bell is S2C type 2, carrying no payload.
type Bell struct{}

func (Bell) s2cMessageType() byte { return s2cBell }

func (Bell) WriteTo(w io.Writer) error {
	return writeByte("Bell.Write", w, s2cBell)
}

// ServerCutText is S2C type 3.
type ServerCutText struct {
	Text string
}

func (ServerCutText) s2cMessageType() byte { return s2cCutText }

func (m ServerCutText) WriteTo(w io.Writer) error {
	const op = "ServerCutText.Write"
	if err := writeByte(op, w, s2cCutText); err != nil {
		return err
	}
	if err := writePad(op, w, 3); err != nil {
		return err
	}
	return writeLatin1String(op, w, m.Text)
}

// ReadS2CHeader reads one server-to-client message type byte and, for the
// non-FramebufferUpdate variants, its full body. For FramebufferUpdate it
// returns only the header (count); the caller must then read that many
// Rectangles via the framebuffer-update codec in fbupdate.go.
func ReadS2CHeader(r io.Reader) (S2C, error) {
	const op = "S2C.Read"
	t, err := readByteAtBoundary(op, r)
	if err != nil {
		return nil, err
	}
	switch t {
	case s2cFramebufferUpdate:
		if err := readPad(op, r, 1); err != nil {
			return nil, err
		}
		count, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		return FramebufferUpdateHeader{Count: count}, nil
	case s2cSetColourMapEntries:
		if err := readPad(op, r, 1); err != nil {
			return nil, err
		}
		first, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		count, err := readUint16(op, r)
		if err != nil {
			return nil, err
		}
		if err := newInputValidator().ValidateColorMapEntries(first, count, colourMapSize); err != nil {
			return nil, err
		}
		colours := make([]Colour, 0, count)
		for i := 0; i < int(count); i++ {
			c, err := ReadColour(r)
			if err != nil {
				return nil, err
			}
			colours = append(colours, c)
		}
		return SetColourMapEntries{FirstColour: first, Colours: colours}, nil
	case s2cBell:
		return Bell{}, nil
	case s2cCutText:
		if err := readPad(op, r, 3); err != nil {
			return nil, err
		}
		text, err := readLatin1String(op, r)
		if err != nil {
			return nil, err
		}
		return ServerCutText{Text: text}, nil
	default:
		return nil, unexpectedError(op, "server to client message type")
	}
}
