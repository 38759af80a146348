// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package zrle

import "io"

// encodeTile writes one tile using the solid sub-encoding when every pixel
// is identical, and the raw sub-encoding otherwise. Packed-palette and RLE
// sub-encodings are a compression optimization the decoder supports for
// interoperability with peers that emit them; the encoder always produces
// one of the two sub-encodings every decoder must already support.
func encodeTile(w io.Writer, t Tile, bpc int) error {
	if isSolid(t) {
		if _, err := w.Write([]byte{1}); err != nil {
			return err
		}
		_, err := w.Write(t.Pixels[0])
		return err
	}
	if _, err := w.Write([]byte{0}); err != nil {
		return err
	}
	for _, px := range t.Pixels {
		if _, err := w.Write(px); err != nil {
			return err
		}
	}
	return nil
}

func isSolid(t Tile) bool {
	if len(t.Pixels) == 0 {
		return false
	}
	first := t.Pixels[0]
	for _, px := range t.Pixels[1:] {
		if !bytesEqual(px, first) {
			return false
		}
	}
	return true
}

func bytesEqual(a, b CPixel) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
