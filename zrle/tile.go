// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

// Package zrle implements the ZRLE tile codec: 64x64 (or smaller at the
// right/bottom edge) pixel tiles compressed with a session-persistent Zlib
// stream and one of five sub-encodings. Grounded on
// CambridgeSoftwareLtd-go-vnc/zrle, generalized to both read and write and
// corrected against the published sub-encoding table.
package zrle

import "fmt"

// TileWidth and TileHeight are the maximum tile dimensions; tiles along
// the right/bottom edge of a rectangle may be narrower or shorter.
const (
	TileWidth  = 64
	TileHeight = 64
)

// CPixel is a single compact pixel: either 3 bytes (when the pixel format
// permits the compact form) or the full bytes-per-pixel width.
type CPixel []byte

// Tile is one decoded (or to-be-encoded) ZRLE tile.
type Tile struct {
	X, Y, Width, Height int
	Pixels              []CPixel // row-major, len == Width*Height
}

// Pos is a tile's position and size within its rectangle.
type Pos struct {
	X, Y, Width, Height int
}

// Layout decomposes a rectangle of the given size into tile positions in
// row-major order.
func Layout(width, height int) []Pos {
	var tiles []Pos
	for y := 0; y < height; y += TileHeight {
		th := TileHeight
		if height-y < th {
			th = height - y
		}
		for x := 0; x < width; x += TileWidth {
			tw := TileWidth
			if width-x < tw {
				tw = width - x
			}
			tiles = append(tiles, Pos{X: x, Y: y, Width: tw, Height: th})
		}
	}
	return tiles
}

// bitsForPaletteSize returns ceil(log2(n)) for a palette of n entries
// (n >= 2), the number of bits used per packed-palette index.
func bitsForPaletteSize(n int) int {
	bits := 0
	for v := n - 1; v > 0; v >>= 1 {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}

func errReserved(sub int) error {
	return fmt.Errorf("zrle: reserved sub-encoding %d", sub)
}
