// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"encoding/binary"
	"io"
)

// readFull reads exactly len(buf) bytes, mapping io.EOF at offset zero to
// Disconnected and any other short read (including io.ErrUnexpectedEOF) to
// Io. atBoundary should be true only when buf's first byte is also the
// first byte of a new logical message.
func readFull(op string, r io.Reader, buf []byte, atBoundary bool) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if atBoundary && n == 0 && err == io.EOF {
		return disconnectedError(op)
	}
	return ioError(op, err)
}

// readByteAtBoundary reads a single byte at a message boundary, surfacing
// Disconnected when the stream ends before any byte is produced.
func readByteAtBoundary(op string, r io.Reader) (byte, error) {
	var buf [1]byte
	if err := readFull(op, r, buf[:], true); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readByte(op string, r io.Reader) (byte, error) {
	var buf [1]byte
	if err := readFull(op, r, buf[:], false); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readUint16(op string, r io.Reader) (uint16, error) {
	var buf [2]byte
	if err := readFull(op, r, buf[:], false); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func readUint32(op string, r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := readFull(op, r, buf[:], false); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readInt32(op string, r io.Reader) (int32, error) {
	v, err := readUint32(op, r)
	return int32(v), err
}

func writeByte(op string, w io.Writer, b byte) error {
	if _, err := w.Write([]byte{b}); err != nil {
		return ioError(op, err)
	}
	return nil
}

func writeUint16(op string, w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return ioError(op, err)
	}
	return nil
}

func writeUint32(op string, w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return ioError(op, err)
	}
	return nil
}

func writeInt32(op string, w io.Writer, v int32) error {
	return writeUint32(op, w, uint32(v))
}

func writePad(op string, w io.Writer, n int) error {
	if n <= 0 {
		return nil
	}
	pad := make([]byte, n)
	if _, err := w.Write(pad); err != nil {
		return ioError(op, err)
	}
	return nil
}

func readPad(op string, r io.Reader, n int) error {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	return readFull(op, r, buf, false)
}
