// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package zrle

import (
	"bytes"
	"testing"
)

func solidTile(x, y, w, h int, px CPixel) Tile {
	pixels := make([]CPixel, w*h)
	for i := range pixels {
		pixels[i] = px
	}
	return Tile{X: x, Y: y, Width: w, Height: h, Pixels: pixels}
}

func TestWriterReader_SolidTileRoundTrip(t *testing.T) {
	tile := solidTile(0, 0, 64, 64, CPixel{1, 2, 3})
	w := NewWriter()
	compressed, err := w.EncodeRect([]Tile{tile}, 3)
	if err != nil {
		t.Fatalf("EncodeRect() error = %v", err)
	}

	r := NewReader()
	tiles, err := r.DecodeRect(64, 64, 3, compressed)
	if err != nil {
		t.Fatalf("DecodeRect() error = %v", err)
	}
	if len(tiles) != 1 {
		t.Fatalf("len(tiles) = %d, want 1", len(tiles))
	}
	for i, px := range tiles[0].Pixels {
		if !bytesEqual(px, CPixel{1, 2, 3}) {
			t.Fatalf("pixel %d = %v, want [1 2 3]", i, px)
		}
	}
}

func TestWriterReader_RawTileRoundTrip(t *testing.T) {
	pixels := make([]CPixel, 4)
	for i := range pixels {
		pixels[i] = CPixel{byte(i), byte(i + 1), byte(i + 2)}
	}
	tile := Tile{X: 0, Y: 0, Width: 2, Height: 2, Pixels: pixels}

	w := NewWriter()
	compressed, err := w.EncodeRect([]Tile{tile}, 3)
	if err != nil {
		t.Fatalf("EncodeRect() error = %v", err)
	}

	r := NewReader()
	tiles, err := r.DecodeRect(2, 2, 3, compressed)
	if err != nil {
		t.Fatalf("DecodeRect() error = %v", err)
	}
	for i, px := range tiles[0].Pixels {
		if !bytesEqual(px, pixels[i]) {
			t.Errorf("pixel %d = %v, want %v", i, px, pixels[i])
		}
	}
}

// TestWriterReader_PersistentStreamAcrossRectangles confirms the deflate
// and inflate state survives across independent EncodeRect/DecodeRect
// calls on the same Writer/Reader pair, as they would across successive
// framebuffer updates in one session.
func TestWriterReader_PersistentStreamAcrossRectangles(t *testing.T) {
	w := NewWriter()
	r := NewReader()

	for i := 0; i < 3; i++ {
		tile := solidTile(0, 0, 16, 16, CPixel{byte(i), byte(i), byte(i)})
		compressed, err := w.EncodeRect([]Tile{tile}, 3)
		if err != nil {
			t.Fatalf("EncodeRect() iteration %d error = %v", i, err)
		}
		tiles, err := r.DecodeRect(16, 16, 3, compressed)
		if err != nil {
			t.Fatalf("DecodeRect() iteration %d error = %v", i, err)
		}
		want := CPixel{byte(i), byte(i), byte(i)}
		for j, px := range tiles[0].Pixels {
			if !bytesEqual(px, want) {
				t.Fatalf("iteration %d pixel %d = %v, want %v", i, j, px, want)
			}
		}
	}
}

func TestDecodeTile_PackedPalette(t *testing.T) {
	// 2 palette entries (bpc=1), bits=1, tile 4x1: indices 1,0,1,0 -> row byte 0b10100000.
	palette := []byte{0xAA, 0xBB}
	row := []byte{0b10100000}
	var buf bytes.Buffer
	buf.WriteByte(2) // sub-encoding: packed palette, 2 entries
	buf.Write(palette)
	buf.Write(row)

	tile := &Tile{Width: 4, Height: 1}
	if err := decodeTile(&buf, tile, 1); err != nil {
		t.Fatalf("decodeTile() error = %v", err)
	}
	want := []byte{0xBB, 0xAA, 0xBB, 0xAA}
	for i, px := range tile.Pixels {
		if px[0] != want[i] {
			t.Errorf("pixel %d = 0x%X, want 0x%X", i, px[0], want[i])
		}
	}
}

func TestDecodeTile_RLE(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(128) // sub-encoding: RLE
	buf.Write([]byte{0x22})
	buf.WriteByte(3) // run length = 1+3 = 4

	tile := &Tile{Width: 2, Height: 2}
	if err := decodeTile(&buf, tile, 1); err != nil {
		t.Fatalf("decodeTile() error = %v", err)
	}
	if len(tile.Pixels) != 4 {
		t.Fatalf("len(Pixels) = %d, want 4", len(tile.Pixels))
	}
	for i, px := range tile.Pixels {
		if px[0] != 0x22 {
			t.Errorf("pixel %d = 0x%X, want 0x22", i, px[0])
		}
	}
}

func TestDecodeTile_PaletteRLE(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(130) // sub-encoding: palette RLE, paletteSize = 130-128 = 2
	buf.Write([]byte{0x01, 0x02})
	buf.WriteByte(0)          // direct index 0, run length 1
	buf.WriteByte(128 + 1)    // run-length-coded index 1
	buf.WriteByte(2)          // run length = 1+2 = 3

	tile := &Tile{Width: 4, Height: 1}
	if err := decodeTile(&buf, tile, 1); err != nil {
		t.Fatalf("decodeTile() error = %v", err)
	}
	want := []byte{0x01, 0x02, 0x02, 0x02}
	if len(tile.Pixels) != len(want) {
		t.Fatalf("len(Pixels) = %d, want %d", len(tile.Pixels), len(want))
	}
	for i, px := range tile.Pixels {
		if px[0] != want[i] {
			t.Errorf("pixel %d = 0x%X, want 0x%X", i, px[0], want[i])
		}
	}
}

func TestDecodeTile_ReservedSubEncoding(t *testing.T) {
	for _, sub := range []byte{17, 127, 129} {
		buf := bytes.NewBuffer([]byte{sub})
		tile := &Tile{Width: 1, Height: 1}
		if err := decodeTile(buf, tile, 1); err == nil {
			t.Errorf("decodeTile() with sub-encoding %d error = nil, want reserved error", sub)
		}
	}
}

func TestIsSolid(t *testing.T) {
	solid := solidTile(0, 0, 2, 2, CPixel{9, 9, 9})
	if !isSolid(solid) {
		t.Error("isSolid() = false, want true")
	}
	mixed := Tile{Pixels: []CPixel{{1, 2, 3}, {4, 5, 6}}}
	if isSolid(mixed) {
		t.Error("isSolid() = true, want false")
	}
	if isSolid(Tile{}) {
		t.Error("isSolid(empty tile) = true, want false")
	}
}
