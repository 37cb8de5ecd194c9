package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRService renders share QR codes pointing at an event's public gallery.
type QRService struct {
	baseURL string // frontend origin, e.g. "https://flashframe.io"
}

func NewQRService(baseURL string) *QRService {
	return &QRService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// GenerateQRCode returns a PNG QR code for the event's gallery URL.
func (s *QRService) GenerateQRCode(eventID string, size int) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/gallery/%s", s.baseURL, eventID)

	png, err := qrcode.Encode(fullURL, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
	}

	return png, nil
}
