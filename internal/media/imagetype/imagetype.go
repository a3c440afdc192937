// Package imagetype identifies uploaded images by their leading bytes and
// restricts uploads to a fixed set of formats.
package imagetype

import (
	"bytes"
	"errors"
	"mime"
	"net/textproto"
	"strings"
)

// HeadSize is how many leading bytes Detect needs.
const HeadSize = 512

var ErrUnsupported = errors.New("unsupported image type")

type Kind struct {
	Ext  string
	MIME string
}

var (
	JPEG = Kind{Ext: "jpg", MIME: "image/jpeg"}
	PNG  = Kind{Ext: "png", MIME: "image/png"}
	GIF  = Kind{Ext: "gif", MIME: "image/gif"}
	WEBP = Kind{Ext: "webp", MIME: "image/webp"}
	AVIF = Kind{Ext: "avif", MIME: "image/avif"}
	SVG  = Kind{Ext: "svg", MIME: "image/svg+xml"}
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func Detect(head []byte) (Kind, error) {
	switch {
	case len(head) > 3 && head[0] == 0xff && head[1] == 0xd8 && head[2] == 0xff:
		return JPEG, nil
	case bytes.HasPrefix(head, pngMagic):
		return PNG, nil
	case bytes.HasPrefix(head, []byte("GIF87a")), bytes.HasPrefix(head, []byte("GIF89a")):
		return GIF, nil
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return WEBP, nil
	case isAVIF(head):
		return AVIF, nil
	case isSVG(head):
		return SVG, nil
	}
	return Kind{}, ErrUnsupported
}

// isAVIF checks the ISO-BMFF ftyp box for an avif or avis brand.
func isAVIF(head []byte) bool {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return false
	}
	brands := head[8:]
	if len(brands) > 32 {
		brands = brands[:32]
	}
	return bytes.Contains(brands, []byte("avif")) || bytes.Contains(brands, []byte("avis"))
}

func isSVG(head []byte) bool {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")))
	lower := bytes.ToLower(trimmed)
	if bytes.HasPrefix(lower, []byte("<svg")) {
		return true
	}
	return bytes.HasPrefix(lower, []byte("<?xml")) && bytes.Contains(lower, []byte("<svg"))
}

// DeclaredMIME returns the media type from a multipart part header, without
// parameters. Empty when the client sent none.
func DeclaredMIME(header textproto.MIMEHeader) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	if mediaType == "image/jpg" || mediaType == "image/pjpeg" {
		return JPEG.MIME
	}
	return mediaType
}

// Matches reports whether a declared type is compatible with the sniffed
// kind. Generic binary declarations are accepted.
func Matches(declared string, kind Kind) bool {
	return declared == "" || declared == "application/octet-stream" || declared == kind.MIME
}
