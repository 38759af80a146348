// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package zrle

import "testing"

func TestLayout_ExactMultiple(t *testing.T) {
	positions := Layout(128, 64)
	if len(positions) != 2 {
		t.Fatalf("len(positions) = %d, want 2", len(positions))
	}
	for _, p := range positions {
		if p.Width != 64 || p.Height != 64 {
			t.Errorf("position %+v, want 64x64", p)
		}
	}
}

func TestLayout_EdgeTilesAreSmaller(t *testing.T) {
	positions := Layout(100, 70)
	if len(positions) != 4 {
		t.Fatalf("len(positions) = %d, want 4", len(positions))
	}
	want := []Pos{
		{X: 0, Y: 0, Width: 64, Height: 64},
		{X: 64, Y: 0, Width: 36, Height: 64},
		{X: 0, Y: 64, Width: 64, Height: 6},
		{X: 64, Y: 64, Width: 36, Height: 6},
	}
	for i, p := range positions {
		if p != want[i] {
			t.Errorf("position[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestLayout_SmallerThanOneTile(t *testing.T) {
	positions := Layout(10, 10)
	if len(positions) != 1 {
		t.Fatalf("len(positions) = %d, want 1", len(positions))
	}
	if positions[0] != (Pos{X: 0, Y: 0, Width: 10, Height: 10}) {
		t.Errorf("position = %+v, want 10x10 at origin", positions[0])
	}
}

func TestBitsForPaletteSize(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{16, 4},
	}
	for _, tt := range tests {
		if got := bitsForPaletteSize(tt.n); got != tt.want {
			t.Errorf("bitsForPaletteSize(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
