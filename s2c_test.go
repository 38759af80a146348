// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"testing"
)

func TestS2C_RoundTrip(t *testing.T) {
	tests := []S2C{
		Bell{},
		ServerCutText{Text: "remote clipboard"},
	}
	for _, msg := range tests {
		var buf bytes.Buffer
		switch m := msg.(type) {
		case Bell:
			if err := m.WriteTo(&buf); err != nil {
				t.Fatalf("WriteTo() error = %v", err)
			}
		case ServerCutText:
			if err := m.WriteTo(&buf); err != nil {
				t.Fatalf("WriteTo() error = %v", err)
			}
		}
		got, err := ReadS2CHeader(&buf)
		if err != nil {
			t.Fatalf("ReadS2CHeader() error = %v", err)
		}
		if got != msg {
			t.Errorf("ReadS2CHeader() = %+v, want %+v", got, msg)
		}
	}
}

func TestS2C_SetColourMapEntriesRoundTrip(t *testing.T) {
	msg := SetColourMapEntries{FirstColour: 4, Colours: []Colour{{Red: 1}, {Green: 2}}}
	var buf bytes.Buffer
	if err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	got, err := ReadS2CHeader(&buf)
	if err != nil {
		t.Fatalf("ReadS2CHeader() error = %v", err)
	}
	sc, ok := got.(SetColourMapEntries)
	if !ok {
		t.Fatalf("ReadS2CHeader() type = %T, want SetColourMapEntries", got)
	}
	if sc.FirstColour != msg.FirstColour || len(sc.Colours) != len(msg.Colours) {
		t.Errorf("SetColourMapEntries = %+v, want %+v", sc, msg)
	}
}

func TestS2C_FramebufferUpdateHeaderRoundTrip(t *testing.T) {
	builder := NewFramebufferUpdateBuilder(PixelFormatRGB8888)
	builder.AddRawPixels(Rect{Left: 0, Top: 0, Width: 1, Height: 1}, make([]byte, 4))

	var buf bytes.Buffer
	if err := builder.SendTo(&buf); err != nil {
		t.Fatalf("SendTo() error = %v", err)
	}

	got, err := ReadS2CHeader(&buf)
	if err != nil {
		t.Fatalf("ReadS2CHeader() error = %v", err)
	}
	hdr, ok := got.(FramebufferUpdateHeader)
	if !ok {
		t.Fatalf("ReadS2CHeader() type = %T, want FramebufferUpdateHeader", got)
	}
	if hdr.Count != 1 {
		t.Errorf("Count = %d, want 1", hdr.Count)
	}
}

func TestS2C_UnknownMessageTypeIsUnexpected(t *testing.T) {
	buf := bytes.NewBuffer([]byte{250})
	_, err := ReadS2CHeader(buf)
	if !IsRFBError(err, ErrUnexpected) {
		t.Errorf("ReadS2CHeader() error = %v, want ErrUnexpected", err)
	}
}

func TestS2C_EmptyStreamIsDisconnected(t *testing.T) {
	_, err := ReadS2CHeader(bytes.NewReader(nil))
	if !IsRFBError(err, ErrDisconnected) {
		t.Errorf("ReadS2CHeader() error = %v, want ErrDisconnected", err)
	}
}
