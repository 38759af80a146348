// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// readLatin1String reads a big-endian u32 length prefix followed by that
// many Latin-1 bytes and returns them decoded as a Go string. Every byte
// maps one-to-one onto a Unicode code point in [0x00, 0xFF], matching
// RFB's "all strings are Latin-1" rule.
func readLatin1String(op string, r io.Reader) (string, error) {
	length, err := readUint32(op, r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if err := readFull(op, r, buf, false); err != nil {
		return "", err
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(buf)
	if err != nil {
		return "", unexpectedError(op, "latin-1 string")
	}
	return string(decoded), nil
}

// writeLatin1String writes a string as a u32 length prefix followed by its
// Latin-1 encoding. A rune outside [U+0000, U+00FF] cannot be represented
// and is rejected rather than silently lost.
func writeLatin1String(op string, w io.Writer, s string) error {
	for _, r := range s {
		if r > 0xFF {
			return unexpectedError(op, "latin-1 string")
		}
	}
	encoded, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return unexpectedError(op, "latin-1 string")
	}
	if err := writeUint32(op, w, uint32(len(encoded))); err != nil {
		return err
	}
	if _, err := io.Copy(w, strings.NewReader(encoded)); err != nil {
		return ioError(op, err)
	}
	return nil
}
