package converter

import (
	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/qr"
	"github.com/immxrtalbeast/presensi/internal/service"
)

type ScanResponse struct {
	Outcome      service.ScanOutcome `json:"outcome"`
	Accepted     bool                `json:"accepted"`
	Message      string              `json:"message"`
	MeetingID    *uuid.UUID          `json:"meeting_id,omitempty"`
	MeetingTitle string              `json:"meeting_title,omitempty"`
	Attendance   *AttendanceResponse `json:"attendance,omitempty"`
}

func ScanToApi(r service.ScanResult) *ScanResponse {
	resp := &ScanResponse{
		Outcome:      r.Outcome,
		Accepted:     r.Outcome == service.ScanAccepted,
		Message:      r.Outcome.Message(),
		MeetingTitle: r.MeetingTitle,
		Attendance:   AttendanceToApi(r.Attendance),
	}
	if r.MeetingID != uuid.Nil {
		id := r.MeetingID
		resp.MeetingID = &id
	}
	return resp
}

type FrameResponse struct {
	Type        string `json:"type"`
	MeetingID   string `json:"meeting_id"`
	Payload     string `json:"payload"`
	Bucket      int64  `json:"bucket"`
	SecondsLeft int    `json:"seconds_left"`
}

func FrameToApi(f qr.Frame) FrameResponse {
	return FrameResponse{
		Type:        "frame",
		MeetingID:   f.MeetingID,
		Payload:     f.Encoded,
		Bucket:      f.Bucket,
		SecondsLeft: f.SecondsLeft,
	}
}
