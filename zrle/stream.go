// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package zrle

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Reader owns one Zlib inflate stream for the lifetime of a session. Its
// dictionary and adaptive state span every rectangle decoded through it;
// it must never be reset except at session teardown. Grounded on
// CambridgeSoftwareLtd-go-vnc/zrle's ZlibStream, generalized to full tile
// decoding per rectangle.
type Reader struct {
	buf *bytes.Buffer
	zr  io.ReadCloser
}

// NewReader returns a Reader with no inflate state yet; the underlying
// zlib.Reader is created lazily on the first rectangle, since zlib.NewReader
// must read the 2-byte header before returning.
func NewReader() *Reader {
	return &Reader{buf: new(bytes.Buffer)}
}

// DecodeRect consumes exactly len(compressed) bytes (the rectangle's
// published Zlib payload length) through the persistent inflate stream and
// decodes it into 64x64 tiles covering a rectWidth x rectHeight region, in
// row-major order.
func (r *Reader) DecodeRect(rectWidth, rectHeight, bytesPerCPixel int, compressed []byte) ([]Tile, error) {
	if _, err := r.buf.Write(compressed); err != nil {
		return nil, err
	}
	if r.zr == nil {
		zr, err := zlib.NewReader(r.buf)
		if err != nil {
			return nil, err
		}
		r.zr = zr
	}

	positions := Layout(rectWidth, rectHeight)
	tiles := make([]Tile, 0, len(positions))
	for _, p := range positions {
		t := Tile{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
		if err := decodeTile(r.zr, &t, bytesPerCPixel); err != nil {
			return nil, fmt.Errorf("zrle: tile (%d,%d): %w", p.X, p.Y, err)
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// Writer owns one Zlib deflate stream for the lifetime of a session,
// symmetric with Reader.
type Writer struct {
	buf *bytes.Buffer
	zw  *zlib.Writer
}

// NewWriter returns a Writer with a fresh persistent deflate stream.
func NewWriter() *Writer {
	buf := new(bytes.Buffer)
	return &Writer{buf: buf, zw: zlib.NewWriter(buf)}
}

// EncodeRect encodes rectWidth x rectHeight worth of tiles (in row-major
// order, matching Layout) through the persistent deflate stream and
// returns the compressed bytes produced for this rectangle only (i.e. the
// Zlib payload to prefix with a u32 length on the wire). The compressor's
// dictionary and state carry over to the next call.
func (w *Writer) EncodeRect(tiles []Tile, bytesPerCPixel int) ([]byte, error) {
	for _, t := range tiles {
		if err := encodeTile(w.zw, t, bytesPerCPixel); err != nil {
			return nil, err
		}
	}
	if err := w.zw.Flush(); err != nil {
		return nil, err
	}
	out := append([]byte(nil), w.buf.Bytes()...)
	w.buf.Reset()
	return out, nil
}
