package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	QRTypeAttendance = "attendance"

	bucketMillis = int64(time.Minute / time.Millisecond)
)

var ErrInvalidQRPayload = errors.New("invalid qr payload")

// QRPayload is the content of an attendance QR code. It is valid only during
// the minute identified by Timestamp.
type QRPayload struct {
	MeetingID string `json:"meetingId"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
}

// Bucket returns floor(unix milliseconds / 60000).
func Bucket(now time.Time) int64 {
	ms := now.UnixMilli()
	b := ms / bucketMillis
	if ms%bucketMillis < 0 {
		b--
	}
	return b
}

// SecondsToNextMinute is the countdown shown next to a QR code.
func SecondsToNextMinute(now time.Time) int {
	return 60 - now.Second()
}

// NewQRPayload builds the payload for meetingID at now. It reports false when
// there is no meeting to generate for.
func NewQRPayload(meetingID string, now time.Time) (QRPayload, bool) {
	if strings.TrimSpace(meetingID) == "" {
		return QRPayload{}, false
	}
	return QRPayload{
		MeetingID: meetingID,
		Timestamp: Bucket(now),
		Type:      QRTypeAttendance,
	}, true
}

// Encode serializes the payload as {"meetingId":..,"timestamp":..,"type":..}.
func (p QRPayload) Encode() string {
	b, err := json.Marshal(p)
	if err != nil {
		// a struct of strings and an int64 always marshals
		panic(err)
	}
	return string(b)
}

// ValidAt reports whether the payload belongs to the minute of now.
func (p QRPayload) ValidAt(now time.Time) bool {
	return p.Timestamp == Bucket(now)
}

// ParseQRPayload decodes scanned text. Missing fields, a zero timestamp and
// any type other than "attendance" are rejected.
func ParseQRPayload(raw string) (QRPayload, error) {
	var wire struct {
		MeetingID *string `json:"meetingId"`
		Timestamp *int64  `json:"timestamp"`
		Type      *string `json:"type"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &wire); err != nil {
		return QRPayload{}, fmt.Errorf("%w: %v", ErrInvalidQRPayload, err)
	}
	switch {
	case wire.MeetingID == nil || strings.TrimSpace(*wire.MeetingID) == "":
		return QRPayload{}, fmt.Errorf("%w: missing meetingId", ErrInvalidQRPayload)
	case wire.Timestamp == nil || *wire.Timestamp == 0:
		return QRPayload{}, fmt.Errorf("%w: missing timestamp", ErrInvalidQRPayload)
	case wire.Type == nil || *wire.Type != QRTypeAttendance:
		return QRPayload{}, fmt.Errorf("%w: unexpected type", ErrInvalidQRPayload)
	}
	return QRPayload{
		MeetingID: *wire.MeetingID,
		Timestamp: *wire.Timestamp,
		Type:      *wire.Type,
	}, nil
}
