package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// BookingReference is the short code printed on confirmations, e.g. EVT-1A2B3C4D.
func BookingReference(eventID uuid.UUID) string {
	return "EVT-" + strings.ToUpper(strings.ReplaceAll(eventID.String(), "-", "")[:8])
}

// GenerateQRCodePNG renders content as a PNG QR code.
func GenerateQRCodePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// ParseBookingReference extracts the reference from a scanned payload of the
// form "<reference>|<event id>" and checks the two agree.
func ParseBookingReference(payload string) (string, uuid.UUID, error) {
	ref, rawID, ok := strings.Cut(payload, "|")
	if !ok {
		return "", uuid.Nil, fmt.Errorf("invalid booking payload format")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("invalid UUID in booking payload: %w", err)
	}
	if BookingReference(id) != ref {
		return "", uuid.Nil, fmt.Errorf("booking reference does not match event")
	}

	return ref, id, nil
}

func BookingPayload(eventID uuid.UUID) string {
	return BookingReference(eventID) + "|" + eventID.String()
}
