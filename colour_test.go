// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"testing"
)

func TestColour_RoundTrip(t *testing.T) {
	c := Colour{Red: 0x1234, Green: 0x5678, Blue: 0x9abc}
	var buf bytes.Buffer
	if err := c.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if buf.Len() != 6 {
		t.Fatalf("WriteTo() wrote %d bytes, want 6", buf.Len())
	}
	got, err := ReadColour(&buf)
	if err != nil {
		t.Fatalf("ReadColour() error = %v", err)
	}
	if got != c {
		t.Errorf("ReadColour() = %+v, want %+v", got, c)
	}
}

func TestColourMap_SetRangeAndGet(t *testing.T) {
	m := NewColourMap()
	colours := []Colour{{Red: 1}, {Red: 2}, {Red: 3}}
	m.SetRange(10, colours)

	for i, want := range colours {
		got, ok := m.Get(uint16(10 + i))
		if !ok {
			t.Fatalf("Get(%d) ok = false, want true", 10+i)
		}
		if got != want {
			t.Errorf("Get(%d) = %+v, want %+v", 10+i, got, want)
		}
	}
}

func TestColourMap_GetOutOfRange(t *testing.T) {
	m := NewColourMap()
	if _, ok := m.Get(256); ok {
		t.Error("Get(256) ok = true, want false")
	}
}

func TestColourMap_SetRangeClampsAtCapacity(t *testing.T) {
	m := NewColourMap()
	colours := make([]Colour, 10)
	for i := range colours {
		colours[i] = Colour{Red: uint16(i)}
	}
	// Should not panic even though firstColour+len(colours) exceeds 256.
	m.SetRange(250, colours)

	got, ok := m.Get(255)
	if !ok || got.Red != 5 {
		t.Errorf("Get(255) = (%+v, %v), want (Red:5, true)", got, ok)
	}
}
