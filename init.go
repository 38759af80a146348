// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import "io"

// ClientInit is the one-byte message the client sends after the security
// handshake completes, requesting shared (non-exclusive) or exclusive
// framebuffer access.
type ClientInit struct {
	Shared bool
}

// ReadClientInit reads the one-byte ClientInit message.
func ReadClientInit(r io.Reader) (ClientInit, error) {
	const op = "ClientInit.Read"
	b, err := readByte(op, r)
	if err != nil {
		return ClientInit{}, err
	}
	return ClientInit{Shared: b != 0}, nil
}

// WriteTo writes the one-byte ClientInit message.
func (m ClientInit) WriteTo(w io.Writer) error {
	var b byte
	if m.Shared {
		b = 1
	}
	return writeByte("ClientInit.Write", w, b)
}

// ServerInit is the message the server sends after ClientInit, describing
// the initial framebuffer dimensions, pixel format, and desktop name.
type ServerInit struct {
	FramebufferWidth  uint16
	FramebufferHeight uint16
	PixelFormat       PixelFormat
	Name              string
}

// ReadServerInit reads the ServerInit message.
func ReadServerInit(r io.Reader) (ServerInit, error) {
	const op = "ServerInit.Read"
	width, err := readUint16(op, r)
	if err != nil {
		return ServerInit{}, err
	}
	height, err := readUint16(op, r)
	if err != nil {
		return ServerInit{}, err
	}
	pf, err := ReadPixelFormat(r)
	if err != nil {
		return ServerInit{}, err
	}
	name, err := readLatin1String(op, r)
	if err != nil {
		return ServerInit{}, err
	}
	return ServerInit{
		FramebufferWidth:  width,
		FramebufferHeight: height,
		PixelFormat:       pf,
		Name:              name,
	}, nil
}

// WriteTo writes the ServerInit message.
func (m ServerInit) WriteTo(w io.Writer) error {
	const op = "ServerInit.Write"
	if err := writeUint16(op, w, m.FramebufferWidth); err != nil {
		return err
	}
	if err := writeUint16(op, w, m.FramebufferHeight); err != nil {
		return err
	}
	if err := m.PixelFormat.WriteTo(w); err != nil {
		return err
	}
	return writeLatin1String(op, w, m.Name)
}
