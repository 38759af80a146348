// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import "io"

// Encoding is a signed 32-bit tag identifying a rectangle's payload
// format, or (outside a rectangle) a client's advertised capability. It is
// modeled as a tagged variant with an Unknown(n) fallback so any value
// round-trips losslessly, matching the wire codec's reference semantics.
type Encoding struct {
	code  int32
	named encodingName
}

type encodingName uint8

const (
	encUnknown encodingName = iota
	encRaw
	encCopyRect
	encRre
	encCoRre
	encHextile
	encZlib
	encTight
	encZlibHex
	encZrle
	encJpeg
	encDesktopSize
	encLastRect
	encPointerPosition
	encRichCursor
	encXCursor
	encCompressionLevel
	encPointerMotion
	encExtendedKeyEvent
	encAudio
	encTightPng
	encLed
	encGii
	encDesktopName
	encExtendedDesktopSize
	encXvp
	encFence
	encContinuousUpdate
	encCursorWithAlpha
	encJpegFineGrained
	encJpegSubSampling
	encVmwareCursor
	encVmwareCursorState
	encVmwareCursorPosition
	encVmwareKeyRepeat
	encVmwareLed
	encVmwareDisplayMode
	encVmwareVMState
	encExtendedClipboard
)

var (
	EncodingRaw                 = Encoding{code: 0, named: encRaw}
	EncodingCopyRect            = Encoding{code: 1, named: encCopyRect}
	EncodingRre                 = Encoding{code: 2, named: encRre}
	EncodingCoRre               = Encoding{code: 4, named: encCoRre}
	EncodingHextile             = Encoding{code: 5, named: encHextile}
	EncodingZlib                = Encoding{code: 6, named: encZlib}
	EncodingTight                = Encoding{code: 7, named: encTight}
	EncodingZlibHex             = Encoding{code: 8, named: encZlibHex}
	EncodingZrle                = Encoding{code: 16, named: encZrle}
	EncodingDesktopSize          = Encoding{code: -223, named: encDesktopSize}
	EncodingLastRect            = Encoding{code: -224, named: encLastRect}
	EncodingPointerPosition      = Encoding{code: -232, named: encPointerPosition}
	EncodingRichCursor          = Encoding{code: -239, named: encRichCursor}
	EncodingXCursor              = Encoding{code: -240, named: encXCursor}
	EncodingPointerMotion        = Encoding{code: -257, named: encPointerMotion}
	EncodingExtendedKeyEvent     = Encoding{code: -258, named: encExtendedKeyEvent}
	EncodingAudio                = Encoding{code: -259, named: encAudio}
	EncodingTightPng            = Encoding{code: -260, named: encTightPng}
	EncodingLed                  = Encoding{code: -261, named: encLed}
	EncodingGii                  = Encoding{code: -305, named: encGii}
	EncodingDesktopName          = Encoding{code: -307, named: encDesktopName}
	EncodingExtendedDesktopSize  = Encoding{code: -308, named: encExtendedDesktopSize}
	EncodingXvp                  = Encoding{code: -309, named: encXvp}
	EncodingFence                = Encoding{code: -312, named: encFence}
	EncodingContinuousUpdate     = Encoding{code: -313, named: encContinuousUpdate}
	EncodingCursorWithAlpha      = Encoding{code: -314, named: encCursorWithAlpha}
	EncodingVmwareCursor         = Encoding{code: 0x574d5664, named: encVmwareCursor}
	EncodingVmwareCursorState    = Encoding{code: 0x574d5665, named: encVmwareCursorState}
	EncodingVmwareCursorPosition = Encoding{code: 0x574d5666, named: encVmwareCursorPosition}
	EncodingVmwareKeyRepeat      = Encoding{code: 0x574d5667, named: encVmwareKeyRepeat}
	EncodingVmwareLed            = Encoding{code: 0x574d5668, named: encVmwareLed}
	EncodingVmwareDisplayMode    = Encoding{code: 0x574d5669, named: encVmwareDisplayMode}
	EncodingVmwareVMState        = Encoding{code: 0x574d566a, named: encVmwareVMState}
	EncodingExtendedClipboard    = Encoding{code: -1063131698, named: encExtendedClipboard}
)

// EncodingJpeg constructs a Jpeg(quality) encoding; n must be in [-32,-23].
func EncodingJpeg(n int32) Encoding { return Encoding{code: n, named: encJpeg} }

// EncodingCompressionLevel constructs a CompressionLevel(n) pseudo-encoding;
// n must be in [-256,-247].
func EncodingCompressionLevel(n int32) Encoding {
	return Encoding{code: n, named: encCompressionLevel}
}

// EncodingJpegFineGrained constructs a JpegFineGrained(n) pseudo-encoding;
// n must be in [-512,-412].
func EncodingJpegFineGrained(n int32) Encoding {
	return Encoding{code: n, named: encJpegFineGrained}
}

// EncodingJpegSubSampling constructs a JpegSubSampling(n) pseudo-encoding;
// n must be in [-768,-763].
func EncodingJpegSubSampling(n int32) Encoding {
	return Encoding{code: n, named: encJpegSubSampling}
}

// UnknownEncoding constructs an Unknown(n) encoding for any value outside
// the recognized fixed codes, ranges, and pseudo-encodings.
func UnknownEncoding(n int32) Encoding { return Encoding{code: n, named: encUnknown} }

// Code returns the raw wire value.
func (e Encoding) Code() int32 { return e.code }

// IsUnknown reports whether e is an Unknown(n) variant.
func (e Encoding) IsUnknown() bool { return e.named == encUnknown }

func (e Encoding) Equal(other Encoding) bool { return e.code == other.code }

func encodingFromCode(n int32) Encoding {
	switch n {
	case 0:
		return EncodingRaw
	case 1:
		return EncodingCopyRect
	case 2:
		return EncodingRre
	case 4:
		return EncodingCoRre
	case 5:
		return EncodingHextile
	case 6:
		return EncodingZlib
	case 7:
		return EncodingTight
	case 8:
		return EncodingZlibHex
	case 16:
		return EncodingZrle
	case -223:
		return EncodingDesktopSize
	case -224:
		return EncodingLastRect
	case -232:
		return EncodingPointerPosition
	case -239:
		return EncodingRichCursor
	case -240:
		return EncodingXCursor
	case -257:
		return EncodingPointerMotion
	case -258:
		return EncodingExtendedKeyEvent
	case -259:
		return EncodingAudio
	case -260:
		return EncodingTightPng
	case -261:
		return EncodingLed
	case -305:
		return EncodingGii
	case -307:
		return EncodingDesktopName
	case -308:
		return EncodingExtendedDesktopSize
	case -309:
		return EncodingXvp
	case -312:
		return EncodingFence
	case -313:
		return EncodingContinuousUpdate
	case -314:
		return EncodingCursorWithAlpha
	case 0x574d5664:
		return EncodingVmwareCursor
	case 0x574d5665:
		return EncodingVmwareCursorState
	case 0x574d5666:
		return EncodingVmwareCursorPosition
	case 0x574d5667:
		return EncodingVmwareKeyRepeat
	case 0x574d5668:
		return EncodingVmwareLed
	case 0x574d5669:
		return EncodingVmwareDisplayMode
	case 0x574d566a:
		return EncodingVmwareVMState
	case -1063131698:
		return EncodingExtendedClipboard
	}
	switch {
	case n >= -32 && n <= -23:
		return EncodingJpeg(n)
	case n >= -256 && n <= -247:
		return EncodingCompressionLevel(n)
	case n >= -512 && n <= -412:
		return EncodingJpegFineGrained(n)
	case n >= -768 && n <= -763:
		return EncodingJpegSubSampling(n)
	}
	return UnknownEncoding(n)
}

// ReadEncoding reads the four-byte signed encoding tag.
func ReadEncoding(r io.Reader) (Encoding, error) {
	n, err := readInt32("Encoding.Read", r)
	if err != nil {
		return Encoding{}, err
	}
	return encodingFromCode(n), nil
}

// WriteTo writes the four-byte signed encoding tag.
func (e Encoding) WriteTo(w io.Writer) error {
	return writeInt32("Encoding.Write", w, e.code)
}

// IsPseudo reports whether e is a capability-signaling pseudo-encoding
// rather than one carrying pixel data (DesktopSize, cursor variants, and
// similar encodings that are surfaced without interpretation).
func (e Encoding) IsPseudo() bool {
	switch e.named {
	case encDesktopSize, encLastRect, encPointerPosition, encRichCursor, encXCursor,
		encCompressionLevel, encPointerMotion, encExtendedKeyEvent, encAudio, encTightPng,
		encLed, encGii, encDesktopName, encExtendedDesktopSize, encXvp, encFence,
		encContinuousUpdate, encCursorWithAlpha, encVmwareCursor, encVmwareCursorState,
		encVmwareCursorPosition, encVmwareKeyRepeat, encVmwareLed, encVmwareDisplayMode,
		encVmwareVMState, encExtendedClipboard:
		return true
	default:
		return false
	}
}
