package ui

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRCode renders url as a terminal QR code so checkout links can be opened
// from a phone.
func QRCode(url string) (string, error) {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}
	return qr.ToSmallString(false), nil
}
