// Package service renders transport payloads for bearer link distribution.
package service

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// qrImageSize is the side length in pixels of rendered QR images.
const qrImageSize = 256

// RenderQR encodes a bearer link URL as a PNG QR image. The URL goes into
// the image verbatim; scanning must reproduce it losslessly.
func RenderQR(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR image: %w", err)
	}
	return png, nil
}
