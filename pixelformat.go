// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"encoding/binary"
	"fmt"
	"io"
)

const pixelFormatWireLength = 16

// PixelFormat is the 16-byte structure describing how pixel colour data is
// encoded on the wire. Unlike a true-colour/colour-map union, every field
// is always present: the wire form is unconditionally 16 bytes, trailing 3
// of which are required zero padding.
type PixelFormat struct {
	BPP        uint8
	Depth      uint8
	BigEndian  bool
	TrueColour bool
	RedMax     uint16
	GreenMax   uint16
	BlueMax    uint16
	RedShift   uint8
	GreenShift uint8
	BlueShift  uint8
}

// PixelFormatRGB8888 is a common 32-bit true-colour preset: 4 bytes per
// pixel, 24 useful bits, big-endian, 8 bits per channel.
var PixelFormatRGB8888 = PixelFormat{
	BPP: 32, Depth: 24, BigEndian: true, TrueColour: true,
	RedMax: 255, GreenMax: 255, BlueMax: 255,
	RedShift: 16, GreenShift: 8, BlueShift: 0,
}

// ReadPixelFormat reads the fixed 16-byte pixel format structure. It always
// consumes exactly 16 bytes regardless of the flags it reads, including the
// 3 padding bytes: conditionally skipping the colour-max/shift fields when
// TrueColour is false would desynchronize framing against any peer that
// always sends a full 16 bytes (every real RFB peer does).
func ReadPixelFormat(r io.Reader) (PixelFormat, error) {
	const op = "PixelFormat.Read"
	var buf [pixelFormatWireLength]byte
	if err := readFull(op, r, buf[:], false); err != nil {
		return PixelFormat{}, err
	}
	pf := PixelFormat{
		BPP:        buf[0],
		Depth:      buf[1],
		BigEndian:  buf[2] != 0,
		TrueColour: buf[3] != 0,
		RedMax:     binary.BigEndian.Uint16(buf[4:6]),
		GreenMax:   binary.BigEndian.Uint16(buf[6:8]),
		BlueMax:    binary.BigEndian.Uint16(buf[8:10]),
		RedShift:   buf[10],
		GreenShift: buf[11],
		BlueShift:  buf[12],
	}
	// buf[13:16] is required zero padding, discarded.
	return pf, nil
}

// WriteTo writes the fixed 16-byte pixel format structure, always emitting
// all fields plus 3 zero padding bytes.
func (pf PixelFormat) WriteTo(w io.Writer) error {
	const op = "PixelFormat.Write"
	var buf [pixelFormatWireLength]byte
	buf[0] = pf.BPP
	buf[1] = pf.Depth
	if pf.BigEndian {
		buf[2] = 1
	}
	if pf.TrueColour {
		buf[3] = 1
	}
	binary.BigEndian.PutUint16(buf[4:6], pf.RedMax)
	binary.BigEndian.PutUint16(buf[6:8], pf.GreenMax)
	binary.BigEndian.PutUint16(buf[8:10], pf.BlueMax)
	buf[10] = pf.RedShift
	buf[11] = pf.GreenShift
	buf[12] = pf.BlueShift
	// buf[13:16] left zero.
	if _, err := w.Write(buf[:]); err != nil {
		return ioError(op, err)
	}
	return nil
}

// BytesPerPixel returns BPP/8.
func (pf PixelFormat) BytesPerPixel() int {
	return int(pf.BPP) / 8
}

// bitsFor returns ceil(log2(max+1)), the number of bits needed to represent
// values in [0, max].
func bitsFor(max uint16) int {
	bits := 0
	for v := uint32(max); v > 0; v >>= 1 {
		bits++
	}
	return bits
}

// usesCompactCPixel reports whether ZRLE must use the 3-byte CPIXEL form
// for this pixel format: true-colour, depth <= 24, and all three channels
// fit within the three most- or least-significant bytes of the 32-bit
// pixel.
func (pf PixelFormat) usesCompactCPixel() bool {
	if !pf.TrueColour || pf.Depth > 24 || pf.BPP != 32 {
		return false
	}
	maxShift := pf.RedShift
	if pf.GreenShift > maxShift {
		maxShift = pf.GreenShift
	}
	if pf.BlueShift > maxShift {
		maxShift = pf.BlueShift
	}
	minShift := pf.RedShift
	if pf.GreenShift < minShift {
		minShift = pf.GreenShift
	}
	if pf.BlueShift < minShift {
		minShift = pf.BlueShift
	}
	// All channels confined to the low 3 bytes (shift+bits <= 24) or the
	// high 3 bytes (shift >= 8) of the 32-bit word.
	allLow := maxShift+8 <= 24
	allHigh := minShift >= 8
	return allLow || allHigh
}

func (pf PixelFormat) String() string {
	return fmt.Sprintf("PixelFormat{bpp:%d depth:%d be:%v tc:%v}", pf.BPP, pf.Depth, pf.BigEndian, pf.TrueColour)
}
