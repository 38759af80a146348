// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"
)

// InputValidator validates protocol input against the bounds and format
// rules the wire codec itself does not enforce.
type InputValidator struct{}

// newInputValidator returns a new InputValidator.
func newInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateSecurityTypes validates a negotiated security type list.
func (iv *InputValidator) ValidateSecurityTypes(securityTypes SecurityTypes) error {
	const op = "InputValidator.ValidateSecurityTypes"
	if len(securityTypes) == 0 {
		return validationError(op, "security types array cannot be empty")
	}
	if len(securityTypes) > 255 {
		return validationError(op, "security types array too large")
	}
	return nil
}

// ValidateFramebufferDimensions validates framebuffer dimensions.
func (iv *InputValidator) ValidateFramebufferDimensions(width, height uint16) error {
	const op = "InputValidator.ValidateFramebufferDimensions"
	if width == 0 || height == 0 {
		return validationError(op, "framebuffer dimensions cannot be zero")
	}

	const maxDimension = 32768
	if width > maxDimension || height > maxDimension {
		return validationError(op, fmt.Sprintf("framebuffer dimensions too large: %dx%d (max %d)",
			width, height, maxDimension))
	}

	area := uint64(width) * uint64(height)
	const maxArea = 1024 * 1024 * 1024
	if area > maxArea {
		return validationError(op, fmt.Sprintf("framebuffer area too large: %d pixels (max %d)", area, maxArea))
	}

	return nil
}

// ValidateRectangle validates rectangle bounds against framebuffer dimensions.
func (iv *InputValidator) ValidateRectangle(x, y, width, height, fbWidth, fbHeight uint16) error {
	const op = "InputValidator.ValidateRectangle"
	if width == 0 || height == 0 {
		return validationError(op, "rectangle dimensions cannot be zero")
	}

	if x > math.MaxUint16-width || y > math.MaxUint16-height {
		return validationError(op, "rectangle coordinates would cause integer overflow")
	}

	if x+width > fbWidth || y+height > fbHeight {
		return validationError(op, fmt.Sprintf("rectangle (%d,%d,%d,%d) exceeds framebuffer bounds (%d,%d)",
			x, y, width, height, fbWidth, fbHeight))
	}

	return nil
}

// ValidatePixelFormat validates a PixelFormat's internal consistency.
func (iv *InputValidator) ValidatePixelFormat(pf *PixelFormat) error {
	const op = "InputValidator.ValidatePixelFormat"
	if pf == nil {
		return validationError(op, "pixel format cannot be nil")
	}

	validBPP := []uint8{8, 16, 32}
	bppValid := false
	for _, valid := range validBPP {
		if pf.BPP == valid {
			bppValid = true
			break
		}
	}
	if !bppValid {
		return validationError(op, fmt.Sprintf("invalid bits per pixel: %d (must be 8, 16, or 32)", pf.BPP))
	}

	if pf.Depth == 0 || pf.Depth > pf.BPP {
		return validationError(op, fmt.Sprintf("invalid depth: %d (must be 1-%d for %d BPP)", pf.Depth, pf.BPP, pf.BPP))
	}

	if pf.TrueColour {
		if pf.RedMax == 0 || pf.GreenMax == 0 || pf.BlueMax == 0 {
			return validationError(op, "color component maximums cannot be zero in true colour format")
		}

		maxShift := pf.BPP - 1
		if pf.RedShift >= maxShift || pf.GreenShift >= maxShift || pf.BlueShift >= maxShift {
			return validationError(op, fmt.Sprintf("color shifts too large for %d BPP format", pf.BPP))
		}

		redBits := iv.countBits(uint32(pf.RedMax))
		greenBits := iv.countBits(uint32(pf.GreenMax))
		blueBits := iv.countBits(uint32(pf.BlueMax))

		if redBits+greenBits+blueBits > int(pf.Depth) {
			return validationError(op, "color component bits exceed pixel depth")
		}
	}

	return nil
}

// ValidateTextData validates text data for clipboard operations.
func (iv *InputValidator) ValidateTextData(text string, maxLength int) error {
	const op = "InputValidator.ValidateTextData"
	if len(text) > maxLength {
		return validationError(op, fmt.Sprintf("text length %d exceeds maximum %d", len(text), maxLength))
	}

	if !utf8.ValidString(text) {
		return validationError(op, "text contains invalid UTF-8 sequences")
	}

	for i, char := range text {
		if char < 32 && char != '\t' && char != '\n' && char != '\r' {
			return validationError(op, fmt.Sprintf("text contains invalid control character at position %d", i))
		}
	}

	return nil
}

// ValidateMessageLength validates message length fields to prevent overflow.
func (iv *InputValidator) ValidateMessageLength(length uint32, maxLength uint32) error {
	const op = "InputValidator.ValidateMessageLength"
	if length == 0 {
		return validationError(op, "message length cannot be zero")
	}
	if length > maxLength {
		return validationError(op, fmt.Sprintf("message length %d exceeds maximum %d", length, maxLength))
	}
	return nil
}

// ValidateColorMapEntries validates colour map entry ranges.
func (iv *InputValidator) ValidateColorMapEntries(firstColour, numColours, maxColours uint16) error {
	const op = "InputValidator.ValidateColorMapEntries"
	if numColours == 0 {
		return validationError(op, "number of colours cannot be zero")
	}

	if firstColour > math.MaxUint16-numColours {
		return validationError(op, "color map range would cause integer overflow")
	}

	if firstColour+numColours > maxColours {
		return validationError(op, fmt.Sprintf("color map range (%d-%d) exceeds maximum colours %d",
			firstColour, firstColour+numColours-1, maxColours))
	}

	return nil
}

// ValidateKeySymbol validates X11 keysym values for key events.
func (iv *InputValidator) ValidateKeySymbol(keysym uint32) error {
	const op = "InputValidator.ValidateKeySymbol"
	if keysym == 0 {
		return validationError(op, "keysym cannot be zero")
	}
	if keysym > 0x1FFFFFF {
		return validationError(op, fmt.Sprintf("keysym value too large: 0x%X", keysym))
	}
	return nil
}

// ValidateQEMUKeyEvent validates a QEMU extended key event's keycode, which
// additionally carries an X11 scancode rather than a keysym alone.
func (iv *InputValidator) ValidateQEMUKeyEvent(keysym, keycode uint32) error {
	const op = "InputValidator.ValidateQEMUKeyEvent"
	if err := iv.ValidateKeySymbol(keysym); err != nil {
		return err
	}
	if keycode > 0xFFFFFF {
		return validationError(op, fmt.Sprintf("qemu keycode value too large: 0x%X", keycode))
	}
	return nil
}

// ValidatePointerPosition validates pointer coordinates against framebuffer bounds.
func (iv *InputValidator) ValidatePointerPosition(x, y, fbWidth, fbHeight uint16) error {
	const op = "InputValidator.ValidatePointerPosition"
	if x >= fbWidth || y >= fbHeight {
		return validationError(op, fmt.Sprintf("pointer position (%d,%d) exceeds framebuffer bounds (%d,%d)",
			x, y, fbWidth, fbHeight))
	}
	return nil
}

// ValidateZRLETile validates a ZRLE tile's dimensions against the 64x64
// maximum tile size and against the rectangle it belongs to.
func (iv *InputValidator) ValidateZRLETile(tileWidth, tileHeight, rectWidth, rectHeight int) error {
	const op = "InputValidator.ValidateZRLETile"
	if tileWidth <= 0 || tileHeight <= 0 {
		return validationError(op, "zrle tile dimensions cannot be zero or negative")
	}
	if tileWidth > 64 || tileHeight > 64 {
		return validationError(op, fmt.Sprintf("zrle tile %dx%d exceeds the 64x64 maximum", tileWidth, tileHeight))
	}
	if tileWidth > rectWidth || tileHeight > rectHeight {
		return validationError(op, fmt.Sprintf("zrle tile %dx%d exceeds its rectangle %dx%d", tileWidth, tileHeight, rectWidth, rectHeight))
	}
	return nil
}

// countBits counts the number of set bits in a uint32 value.
func (iv *InputValidator) countBits(value uint32) int {
	count := 0
	for value != 0 {
		count++
		value &= value - 1
	}
	return count
}

// SanitizeText replaces control and non-printable characters in text with a
// placeholder, preserving tab/newline/carriage-return.
func (iv *InputValidator) SanitizeText(text string) string {
	if text == "" {
		return text
	}

	runes := []rune(text)
	sanitized := make([]rune, 0, len(runes))

	for _, r := range runes {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			sanitized = append(sanitized, r)
		case r < 32:
			sanitized = append(sanitized, ' ')
		case unicode.IsPrint(r):
			sanitized = append(sanitized, r)
		default:
			sanitized = append(sanitized, '�')
		}
	}

	return string(sanitized)
}

// ValidateBinaryData validates binary payload length against expected and
// maximum bounds.
func (iv *InputValidator) ValidateBinaryData(data []byte, expectedLength, maxLength int) error {
	const op = "InputValidator.ValidateBinaryData"
	if data == nil {
		return validationError(op, "binary data cannot be nil")
	}

	if expectedLength > 0 && len(data) != expectedLength {
		return validationError(op, fmt.Sprintf("binary data length %d does not match expected %d", len(data), expectedLength))
	}

	if len(data) > maxLength {
		return validationError(op, fmt.Sprintf("binary data length %d exceeds maximum %d", len(data), maxLength))
	}

	return nil
}
