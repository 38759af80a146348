// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"io"

	"github.com/relayrfb/rfb/zrle"
)

// RectanglePayload is the decoded body of one Rectangle. Concrete types:
// RawPixels, CopyRectPayload, ZRLEPayload, PseudoPayload.
type RectanglePayload interface {
	isRectanglePayload()
}

// RawPixels is the Encoding=Raw payload: width*height*bytesPerPixel bytes,
// already in the negotiated pixel format.
type RawPixels struct{ Data []byte }

func (RawPixels) isRectanglePayload() {}

// CopyRectPayload is the Encoding=CopyRect payload: the source origin to
// copy the destination rectangle's pixels from.
type CopyRectPayload struct{ SrcX, SrcY uint16 }

func (CopyRectPayload) isRectanglePayload() {}

// ZRLEPayload is the Encoding=Zrle payload: the decoded tile set.
type ZRLEPayload struct{ Tiles []zrle.Tile }

func (ZRLEPayload) isRectanglePayload() {}

// PseudoPayload is a capability-signaling pseudo-encoding's payload,
// surfaced without interpretation beyond the byte count consumed.
type PseudoPayload struct{ Data []byte }

func (PseudoPayload) isRectanglePayload() {}

// DecodedRectangle pairs a rectangle header with its decoded payload.
type DecodedRectangle struct {
	Rectangle Rectangle
	Payload   RectanglePayload
}

// ReadRectangle reads one Rectangle header and dispatches to its payload
// decoder. zrleReader is the session's persistent ZRLE inflate stream (nil
// if the session never negotiated ZRLE); it is only consulted when the
// rectangle's encoding is Zrle.
func ReadRectangle(r io.Reader, pf PixelFormat, zrleReader *zrle.Reader) (DecodedRectangle, error) {
	const op = "Rectangle.Read"
	header, err := ReadRectangleHeader(r)
	if err != nil {
		return DecodedRectangle{}, err
	}

	switch header.Encoding.Code() {
	case EncodingRaw.Code():
		n := int(header.Width) * int(header.Height) * pf.BytesPerPixel()
		data := make([]byte, n)
		if err := readFull(op, r, data, false); err != nil {
			return DecodedRectangle{}, err
		}
		return DecodedRectangle{Rectangle: header, Payload: RawPixels{Data: data}}, nil

	case EncodingCopyRect.Code():
		srcX, err := readUint16(op, r)
		if err != nil {
			return DecodedRectangle{}, err
		}
		srcY, err := readUint16(op, r)
		if err != nil {
			return DecodedRectangle{}, err
		}
		return DecodedRectangle{Rectangle: header, Payload: CopyRectPayload{SrcX: srcX, SrcY: srcY}}, nil

	case EncodingZrle.Code():
		if zrleReader == nil {
			return DecodedRectangle{}, unexpectedError(op, "ZRLE rectangle without negotiated ZRLE stream")
		}
		length, err := readUint32(op, r)
		if err != nil {
			return DecodedRectangle{}, err
		}
		maxCompressedLength := uint32(header.Width)*uint32(header.Height)*4 + 4096
		if err := newInputValidator().ValidateMessageLength(length, maxCompressedLength); err != nil {
			return DecodedRectangle{}, err
		}
		compressed := make([]byte, length)
		if err := readFull(op, r, compressed, false); err != nil {
			return DecodedRectangle{}, err
		}
		bpc := bytesPerCPixel(pf)
		tiles, err := zrleReader.DecodeRect(int(header.Width), int(header.Height), bpc, compressed)
		if err != nil {
			return DecodedRectangle{}, unexpectedError(op, "ZRLE tile")
		}
		validator := newInputValidator()
		for _, t := range tiles {
			if err := validator.ValidateZRLETile(t.Width, t.Height, int(header.Width), int(header.Height)); err != nil {
				return DecodedRectangle{}, err
			}
		}
		return DecodedRectangle{Rectangle: header, Payload: ZRLEPayload{Tiles: tiles}}, nil

	default:
		if header.Encoding.IsPseudo() {
			n, err := pseudoPayloadSize(header.Encoding, header.Rect, pf)
			if err != nil {
				return DecodedRectangle{}, err
			}
			data := make([]byte, n)
			if err := readFull(op, r, data, false); err != nil {
				return DecodedRectangle{}, err
			}
			return DecodedRectangle{Rectangle: header, Payload: PseudoPayload{Data: data}}, nil
		}
		// Rre, CoRre, Hextile, Zlib, Tight, ZlibHex, Jpeg*: no outer length
		// prefix exists to skip past an un-decoded payload of these kinds.
		// A session only ever advertises Raw/CopyRect/ZRLE/pseudo via
		// SetEncodings, so a correctly behaving peer never sends these.
		return DecodedRectangle{}, unexpectedError(op, "rectangle encoding")
	}
}

// pseudoPayloadSize returns the byte count a pseudo-encoding's rectangle
// carries beyond its header. DesktopSize and most capability signals carry
// nothing; cursor encodings carry pixel and bitmask data sized from the
// rectangle's own width/height.
func pseudoPayloadSize(enc Encoding, rect Rect, pf PixelFormat) (int, error) {
	switch enc.Code() {
	case EncodingRichCursor.Code():
		maskBytes := ((int(rect.Width) + 7) / 8) * int(rect.Height)
		return int(rect.Width)*int(rect.Height)*pf.BytesPerPixel() + maskBytes, nil
	case EncodingXCursor.Code():
		maskBytes := ((int(rect.Width) + 7) / 8) * int(rect.Height)
		return 6 + 2*maskBytes, nil
	default:
		return 0, nil
	}
}

// bytesPerCPixel returns the ZRLE CPIXEL width for pf: 3 bytes when the
// compact form applies, otherwise the full pixel width.
func bytesPerCPixel(pf PixelFormat) int {
	if pf.usesCompactCPixel() {
		return 3
	}
	return pf.BytesPerPixel()
}

// FramebufferUpdateBuilder accumulates encoded rectangles into an internal
// buffer, then emits the S2C=0 framing header followed by that buffer as
// one write.
type FramebufferUpdateBuilder struct {
	pixelFormat PixelFormat
	count       uint16
	buf         bytes.Buffer
}

// NewFramebufferUpdateBuilder returns an empty builder bound to pf, which
// determines Raw pixels' expected byte width.
func NewFramebufferUpdateBuilder(pf PixelFormat) *FramebufferUpdateBuilder {
	return &FramebufferUpdateBuilder{pixelFormat: pf}
}

// AddRawPixels appends a Raw-encoded rectangle. len(pixels) must equal
// rect.Width * rect.Height * bytesPerPixel; violating this is a
// programming error, not a runtime one, and panics accordingly.
func (b *FramebufferUpdateBuilder) AddRawPixels(rect Rect, pixels []byte) {
	want := int(rect.Width) * int(rect.Height) * b.pixelFormat.BytesPerPixel()
	if len(pixels) != want {
		panic("rfb: AddRawPixels: pixel buffer length does not match rect dimensions")
	}
	header := Rectangle{Rect: rect, Encoding: EncodingRaw}
	_ = header.WriteTo(&b.buf)
	b.buf.Write(pixels)
	b.count++
}

// AddCopyRect appends a CopyRect-encoded rectangle.
func (b *FramebufferUpdateBuilder) AddCopyRect(dstRect Rect, srcX, srcY uint16) {
	header := Rectangle{Rect: dstRect, Encoding: EncodingCopyRect}
	_ = header.WriteTo(&b.buf)
	_ = writeUint16("FramebufferUpdateBuilder.AddCopyRect", &b.buf, srcX)
	_ = writeUint16("FramebufferUpdateBuilder.AddCopyRect", &b.buf, srcY)
	b.count++
}

// AddZRLE appends a ZRLE-encoded rectangle using the session's persistent
// deflate stream to compress tiles already decomposed via zrle.Layout.
func (b *FramebufferUpdateBuilder) AddZRLE(rect Rect, zw *zrle.Writer, tiles []zrle.Tile) error {
	const op = "FramebufferUpdateBuilder.AddZRLE"
	compressed, err := zw.EncodeRect(tiles, bytesPerCPixel(b.pixelFormat))
	if err != nil {
		return ioError(op, err)
	}
	header := Rectangle{Rect: rect, Encoding: EncodingZrle}
	if err := header.WriteTo(&b.buf); err != nil {
		return err
	}
	if err := writeUint32(op, &b.buf, uint32(len(compressed))); err != nil {
		return err
	}
	b.buf.Write(compressed)
	b.count++
	return nil
}

// SendTo writes the S2C=0 framing header followed by the accumulated
// rectangles as one logical write.
func (b *FramebufferUpdateBuilder) SendTo(w io.Writer) error {
	const op = "FramebufferUpdateBuilder.Send"
	if err := writeByte(op, w, s2cFramebufferUpdate); err != nil {
		return err
	}
	if err := writePad(op, w, 1); err != nil {
		return err
	}
	if err := writeUint16(op, w, b.count); err != nil {
		return err
	}
	if _, err := w.Write(b.buf.Bytes()); err != nil {
		return ioError(op, err)
	}
	return nil
}
