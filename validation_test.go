// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import "testing"

func TestInputValidator_ValidateSecurityTypes(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateSecurityTypes(nil); err == nil {
		t.Error("ValidateSecurityTypes(nil) error = nil, want error")
	}
	if err := iv.ValidateSecurityTypes(SecurityTypes{SecurityTypeNone}); err != nil {
		t.Errorf("ValidateSecurityTypes() error = %v, want nil", err)
	}
}

func TestInputValidator_ValidateFramebufferDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint16
		wantErr       bool
	}{
		{"valid", 1920, 1080, false},
		{"zero width", 0, 1080, true},
		{"zero height", 1920, 0, true},
		{"too large", 32769, 100, true},
	}
	iv := newInputValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := iv.ValidateFramebufferDimensions(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFramebufferDimensions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInputValidator_ValidateRectangle(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateRectangle(0, 0, 100, 100, 640, 480); err != nil {
		t.Errorf("ValidateRectangle() error = %v, want nil", err)
	}
	if err := iv.ValidateRectangle(600, 0, 100, 100, 640, 480); err == nil {
		t.Error("ValidateRectangle() error = nil, want error (exceeds framebuffer)")
	}
	if err := iv.ValidateRectangle(0, 0, 0, 100, 640, 480); err == nil {
		t.Error("ValidateRectangle() error = nil, want error (zero width)")
	}
}

func TestInputValidator_ValidatePixelFormat(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidatePixelFormat(nil); err == nil {
		t.Error("ValidatePixelFormat(nil) error = nil, want error")
	}
	valid := PixelFormatRGB8888
	if err := iv.ValidatePixelFormat(&valid); err != nil {
		t.Errorf("ValidatePixelFormat() error = %v, want nil", err)
	}
	badBPP := PixelFormatRGB8888
	badBPP.BPP = 24
	if err := iv.ValidatePixelFormat(&badBPP); err == nil {
		t.Error("ValidatePixelFormat() error = nil, want error (invalid BPP)")
	}
	badDepth := PixelFormatRGB8888
	badDepth.Depth = 0
	if err := iv.ValidatePixelFormat(&badDepth); err == nil {
		t.Error("ValidatePixelFormat() error = nil, want error (zero depth)")
	}
}

func TestInputValidator_ValidateTextData(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateTextData("hello\tworld\n", 100); err != nil {
		t.Errorf("ValidateTextData() error = %v, want nil", err)
	}
	if err := iv.ValidateTextData("too long", 3); err == nil {
		t.Error("ValidateTextData() error = nil, want error (too long)")
	}
	if err := iv.ValidateTextData("bad\x01char", 100); err == nil {
		t.Error("ValidateTextData() error = nil, want error (control char)")
	}
}

func TestInputValidator_ValidateMessageLength(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateMessageLength(0, 100); err == nil {
		t.Error("ValidateMessageLength(0, ...) error = nil, want error")
	}
	if err := iv.ValidateMessageLength(200, 100); err == nil {
		t.Error("ValidateMessageLength() error = nil, want error (exceeds max)")
	}
	if err := iv.ValidateMessageLength(50, 100); err != nil {
		t.Errorf("ValidateMessageLength() error = %v, want nil", err)
	}
}

func TestInputValidator_ValidateColorMapEntries(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateColorMapEntries(0, 10, 256); err != nil {
		t.Errorf("ValidateColorMapEntries() error = %v, want nil", err)
	}
	if err := iv.ValidateColorMapEntries(0, 0, 256); err == nil {
		t.Error("ValidateColorMapEntries() error = nil, want error (zero colours)")
	}
	if err := iv.ValidateColorMapEntries(250, 10, 256); err == nil {
		t.Error("ValidateColorMapEntries() error = nil, want error (exceeds maxColours)")
	}
}

func TestInputValidator_ValidateKeySymbol(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateKeySymbol(0); err == nil {
		t.Error("ValidateKeySymbol(0) error = nil, want error")
	}
	if err := iv.ValidateKeySymbol(0xFF0D); err != nil {
		t.Errorf("ValidateKeySymbol() error = %v, want nil", err)
	}
	if err := iv.ValidateKeySymbol(0x2000000); err == nil {
		t.Error("ValidateKeySymbol() error = nil, want error (too large)")
	}
}

func TestInputValidator_ValidateQEMUKeyEvent(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateQEMUKeyEvent(0xFF0D, 30); err != nil {
		t.Errorf("ValidateQEMUKeyEvent() error = %v, want nil", err)
	}
	if err := iv.ValidateQEMUKeyEvent(0, 30); err == nil {
		t.Error("ValidateQEMUKeyEvent() error = nil, want error (zero keysym)")
	}
	if err := iv.ValidateQEMUKeyEvent(0xFF0D, 0x1000000); err == nil {
		t.Error("ValidateQEMUKeyEvent() error = nil, want error (keycode too large)")
	}
}

func TestInputValidator_ValidatePointerPosition(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidatePointerPosition(639, 479, 640, 480); err != nil {
		t.Errorf("ValidatePointerPosition() error = %v, want nil", err)
	}
	if err := iv.ValidatePointerPosition(640, 0, 640, 480); err == nil {
		t.Error("ValidatePointerPosition() error = nil, want error (x == fbWidth)")
	}
}

func TestInputValidator_ValidateZRLETile(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateZRLETile(64, 64, 128, 128); err != nil {
		t.Errorf("ValidateZRLETile() error = %v, want nil", err)
	}
	if err := iv.ValidateZRLETile(0, 64, 128, 128); err == nil {
		t.Error("ValidateZRLETile() error = nil, want error (zero dimension)")
	}
	if err := iv.ValidateZRLETile(65, 64, 128, 128); err == nil {
		t.Error("ValidateZRLETile() error = nil, want error (exceeds 64x64)")
	}
	if err := iv.ValidateZRLETile(64, 64, 32, 32); err == nil {
		t.Error("ValidateZRLETile() error = nil, want error (exceeds rectangle)")
	}
}

func TestInputValidator_SanitizeText(t *testing.T) {
	iv := newInputValidator()
	if got := iv.SanitizeText(""); got != "" {
		t.Errorf("SanitizeText(\"\") = %q, want \"\"", got)
	}
	got := iv.SanitizeText("a\tb\x01c")
	want := "a\tb c"
	if got != want {
		t.Errorf("SanitizeText() = %q, want %q", got, want)
	}
}

func TestInputValidator_ValidateBinaryData(t *testing.T) {
	iv := newInputValidator()
	if err := iv.ValidateBinaryData(nil, 0, 100); err == nil {
		t.Error("ValidateBinaryData(nil, ...) error = nil, want error")
	}
	if err := iv.ValidateBinaryData([]byte{1, 2, 3}, 3, 100); err != nil {
		t.Errorf("ValidateBinaryData() error = %v, want nil", err)
	}
	if err := iv.ValidateBinaryData([]byte{1, 2, 3}, 4, 100); err == nil {
		t.Error("ValidateBinaryData() error = nil, want error (length mismatch)")
	}
	if err := iv.ValidateBinaryData([]byte{1, 2, 3}, 0, 2); err == nil {
		t.Error("ValidateBinaryData() error = nil, want error (exceeds max)")
	}
}
