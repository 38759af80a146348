// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"io"
	"sync"
)

// Colour is a single colour-map entry: three u16 channel values.
type Colour struct {
	Red   uint16
	Green uint16
	Blue  uint16
}

// ReadColour reads one 6-byte Colour.
func ReadColour(r io.Reader) (Colour, error) {
	const op = "Colour.Read"
	red, err := readUint16(op, r)
	if err != nil {
		return Colour{}, err
	}
	green, err := readUint16(op, r)
	if err != nil {
		return Colour{}, err
	}
	blue, err := readUint16(op, r)
	if err != nil {
		return Colour{}, err
	}
	return Colour{Red: red, Green: green, Blue: blue}, nil
}

// WriteTo writes one 6-byte Colour.
func (c Colour) WriteTo(w io.Writer) error {
	const op = "Colour.Write"
	if err := writeUint16(op, w, c.Red); err != nil {
		return err
	}
	if err := writeUint16(op, w, c.Green); err != nil {
		return err
	}
	return writeUint16(op, w, c.Blue)
}

// colourMapSize is the fixed number of slots an indexed pixel format's
// colour map holds, per RFB's SetColourMapEntries message.
const colourMapSize = 256

// ColourMap is a thread-safe 256-entry colour table: a server's
// SetColourMapEntries messages mutate the slots a client-side session
// tracks for indexed pixel formats.
type ColourMap struct {
	mu      sync.RWMutex
	entries [colourMapSize]Colour
}

// NewColourMap returns an empty ColourMap.
func NewColourMap() *ColourMap {
	return &ColourMap{}
}

// Get returns the colour at index.
func (m *ColourMap) Get(index uint16) (Colour, bool) {
	if index >= uint16(len(m.entries)) {
		return Colour{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[index], true
}

// SetRange installs count consecutive colours starting at firstColour.
func (m *ColourMap) SetRange(firstColour uint16, colours []Colour) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range colours {
		idx := int(firstColour) + i
		if idx >= len(m.entries) {
			break
		}
		m.entries[idx] = c
	}
}
