// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

// Package rfb implements the RFB (Remote Framebuffer) protocol described by
// RFC 6143: the wire codec, the Version/Security/Init handshake state
// machine, and ZRLE tile compression, plus client, server, and proxy role
// drivers built on top of them.
//
// # Client
//
//	conn, err := net.Dial("tcp", "localhost:5900")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := rfb.ClientWithOptions(context.Background(), conn,
//		rfb.WithAuth(rfb.NewPasswordAuth("secret")),
//		rfb.WithConnectTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.EnableZRLE()
//	client.SetEncodings(context.Background(), []rfb.Encoding{rfb.EncodingZrle, rfb.EncodingRaw})
//	client.FramebufferUpdateRequest(context.Background(), false, 0, 0, w, h)
//
//	for {
//		event, err := client.ReadEvent(context.Background())
//		if err != nil {
//			break
//		}
//		switch e := event.(type) {
//		case rfb.FramebufferRectangle:
//			// handle e.Rectangle / e.Payload
//		case rfb.Bell:
//			// handle bell
//		}
//	}
//
// # Server
//
//	server, shared, err := rfb.ServerWithOptions(context.Background(), conn,
//		rfb.WithServerAuth(rfb.NewVncPasswordServerAuth("secret")),
//		rfb.WithFramebuffer(640, 480, rfb.PixelFormatRGB8888),
//		rfb.WithDesktopName("example"),
//	)
//
// # Errors
//
//	if rfb.IsRFBError(err, rfb.ErrAuthenticationFailure) {
//		log.Printf("authentication failed: %v", err)
//	}
package rfb
