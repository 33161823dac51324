package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket(t *testing.T) {
	at := time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)
	b := Bucket(at)
	assert.Equal(t, at.UnixMilli()/60000, b)
	assert.Equal(t, b, Bucket(at.Add(59*time.Second+999*time.Millisecond)))
	assert.Equal(t, b+1, Bucket(at.Add(time.Minute)))
	assert.Equal(t, b-1, Bucket(at.Add(-time.Millisecond)))
}

func TestNewQRPayload(t *testing.T) {
	at := time.Date(2026, 10, 19, 10, 30, 12, 0, time.UTC)

	p, ok := NewQRPayload("m-1", at)
	require.True(t, ok)
	assert.Equal(t, QRPayload{MeetingID: "m-1", Timestamp: Bucket(at), Type: QRTypeAttendance}, p)

	_, ok = NewQRPayload("  ", at)
	assert.False(t, ok)
}

func TestQRPayloadEncode(t *testing.T) {
	p := QRPayload{MeetingID: "abc", Timestamp: 29876543, Type: QRTypeAttendance}
	assert.Equal(t, `{"meetingId":"abc","timestamp":29876543,"type":"attendance"}`, p.Encode())
}

func TestQRRotation(t *testing.T) {
	at := time.Date(2026, 10, 19, 10, 30, 59, 0, time.UTC)
	p1, _ := NewQRPayload("m", at)
	p2, _ := NewQRPayload("m", at.Add(time.Second))

	assert.NotEqual(t, p1.Encode(), p2.Encode())
	assert.True(t, p1.ValidAt(at))
	assert.False(t, p1.ValidAt(at.Add(time.Second)))
	assert.True(t, p2.ValidAt(at.Add(time.Minute)))
}

func TestParseQRPayload(t *testing.T) {
	p, err := ParseQRPayload(` {"meetingId":"abc","timestamp":42,"type":"attendance"} `)
	require.NoError(t, err)
	assert.Equal(t, QRPayload{MeetingID: "abc", Timestamp: 42, Type: "attendance"}, p)

	invalid := map[string]string{
		"not json":       "hello",
		"array":          `[1,2]`,
		"null":           `null`,
		"no meeting":     `{"timestamp":42,"type":"attendance"}`,
		"empty meeting":  `{"meetingId":"","timestamp":42,"type":"attendance"}`,
		"numeric id":     `{"meetingId":7,"timestamp":42,"type":"attendance"}`,
		"no timestamp":   `{"meetingId":"abc","type":"attendance"}`,
		"zero timestamp": `{"meetingId":"abc","timestamp":0,"type":"attendance"}`,
		"float stamp":    `{"meetingId":"abc","timestamp":4.5,"type":"attendance"}`,
		"no type":        `{"meetingId":"abc","timestamp":42}`,
		"wrong type":     `{"meetingId":"abc","timestamp":42,"type":"login"}`,
	}
	for name, raw := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQRPayload(raw)
			assert.ErrorIs(t, err, ErrInvalidQRPayload)
		})
	}
}

func TestSecondsToNextMinute(t *testing.T) {
	assert.Equal(t, 60, SecondsToNextMinute(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, SecondsToNextMinute(time.Date(2026, 1, 1, 0, 0, 59, 0, time.UTC)))
}
