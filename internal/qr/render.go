package qr

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const DefaultPNGSize = 256

// RenderPNG draws encoded as a square PNG of size pixels.
func RenderPNG(encoded string, size int) ([]byte, error) {
	if encoded == "" {
		return nil, errors.New("nothing to render")
	}
	if size <= 0 {
		size = DefaultPNGSize
	}
	return qrcode.Encode(encoded, qrcode.Medium, size)
}
