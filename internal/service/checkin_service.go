package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/metrics"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/session"
	"github.com/immxrtalbeast/presensi/lib/logger/sl"
)

type ScanOutcome string

const (
	ScanAccepted        ScanOutcome = "accepted"
	ScanInvalidFormat   ScanOutcome = "invalid_format"
	ScanExpired         ScanOutcome = "expired"
	ScanMeetingNotFound ScanOutcome = "meeting_not_found"
	ScanNotStarted      ScanOutcome = "not_started"
	ScanEnded           ScanOutcome = "ended"
	ScanNotParticipant  ScanOutcome = "not_participant"
	ScanAlreadyPresent  ScanOutcome = "already_present"
	ScanWriteFailure    ScanOutcome = "write_failure"
)

var scanMessages = map[ScanOutcome]string{
	ScanAccepted:        "Presensi berhasil dicatat.",
	ScanInvalidFormat:   "QR Code tidak valid. Pastikan Anda memindai QR Code presensi rapat.",
	ScanExpired:         "QR Code sudah kadaluarsa. Pindai QR Code terbaru.",
	ScanMeetingNotFound: "Rapat tidak ditemukan.",
	ScanNotStarted:      "Rapat belum dimulai. Silakan pindai QR Code saat rapat sudah dimulai.",
	ScanEnded:           "Waktu rapat sudah terlewat. Presensi tidak dapat dilakukan.",
	ScanNotParticipant:  "Anda bukan peserta rapat ini. Hubungi pembuat rapat jika ini adalah kesalahan.",
	ScanAlreadyPresent:  "Anda sudah melakukan presensi untuk rapat ini.",
	ScanWriteFailure:    "Gagal mencatat presensi. Silakan coba lagi.",
}

// Message is the user-facing text for the outcome.
func (o ScanOutcome) Message() string {
	return scanMessages[o]
}

type ScanResult struct {
	Outcome ScanOutcome
	// MeetingID and MeetingTitle are set once the meeting has been found.
	MeetingID    uuid.UUID
	MeetingTitle string
	Attendance   *domain.Attendance
}

type CheckInService struct {
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	attendance   repository.AttendanceRepository
	clock        domain.Clock
	loc          *time.Location
	metrics      *metrics.Metrics
	log          *slog.Logger
}

func NewCheckInService(
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	attendance repository.AttendanceRepository,
	clock domain.Clock,
	loc *time.Location,
	m *metrics.Metrics,
	log *slog.Logger,
) *CheckInService {
	if log == nil {
		log = slog.Default()
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &CheckInService{
		meetings:     meetings,
		participants: participants,
		attendance:   attendance,
		clock:        clock,
		loc:          loc,
		metrics:      m,
		log:          log,
	}
}

// Scan runs a scanned payload through the check-in pipeline. Rejections are
// reported in the result; an error means a store read failed and nothing was
// decided.
func (s *CheckInService) Scan(ctx context.Context, sess *session.Session, raw string) (ScanResult, error) {
	const op = "service.checkin.scan"

	if sess == nil || sess.User == nil {
		return ScanResult{}, session.ErrUnauthorized
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", sess.User.ID.String()),
	)

	res, err := s.scan(ctx, sess.User.ID, raw, log)
	if err != nil {
		log.Error("scan aborted", sl.Err(err))
		return ScanResult{}, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Scan(string(res.Outcome))
	log.Debug("scan finished", slog.String("outcome", string(res.Outcome)))
	return res, nil
}

func (s *CheckInService) scan(ctx context.Context, userID uuid.UUID, raw string, log *slog.Logger) (ScanResult, error) {
	now := s.clock.Now()

	payload, err := domain.ParseQRPayload(raw)
	if err != nil {
		return ScanResult{Outcome: ScanInvalidFormat}, nil
	}
	if !payload.ValidAt(now) {
		return ScanResult{Outcome: ScanExpired}, nil
	}

	meetingID, err := uuid.Parse(payload.MeetingID)
	if err != nil {
		return ScanResult{Outcome: ScanMeetingNotFound}, nil
	}
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, repository.ErrMeetingNotFound) {
			return ScanResult{Outcome: ScanMeetingNotFound}, nil
		}
		return ScanResult{}, err
	}

	res := ScanResult{MeetingID: meeting.ID, MeetingTitle: meeting.Title}

	// the end instant itself still accepts check-ins
	iv := meeting.Interval(s.loc)
	if now.Before(iv.Start) {
		res.Outcome = ScanNotStarted
		return res, nil
	}
	if now.After(iv.End) {
		res.Outcome = ScanEnded
		return res, nil
	}

	if _, err := s.participants.Get(ctx, meeting.ID, userID); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			res.Outcome = ScanNotParticipant
			return res, nil
		}
		return ScanResult{}, err
	}

	existing, err := s.attendance.Get(ctx, meeting.ID, userID)
	switch {
	case err == nil:
		res.Outcome = ScanAlreadyPresent
		res.Attendance = existing
		return res, nil
	case !errors.Is(err, repository.ErrAttendanceNotFound):
		return ScanResult{}, err
	}

	row := domain.NewAttendance(meeting.ID, userID, domain.StatusPresent, now)
	if err := s.attendance.Insert(ctx, row); err != nil {
		if errors.Is(err, repository.ErrAttendanceExists) {
			res.Outcome = ScanAlreadyPresent
			return res, nil
		}
		log.Error("failed to record attendance",
			slog.String("meeting_id", meeting.ID.String()),
			sl.Err(err),
		)
		res.Outcome = ScanWriteFailure
		return res, nil
	}

	log.Info("attendance recorded", slog.String("meeting_id", meeting.ID.String()))
	res.Outcome = ScanAccepted
	res.Attendance = row
	return res, nil
}
