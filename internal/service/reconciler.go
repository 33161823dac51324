package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/metrics"
	"github.com/immxrtalbeast/presensi/internal/repository"
)

// Reconciler backfills "terlewat" rows for participants who never checked in
// once a meeting has ended.
type Reconciler struct {
	participants repository.ParticipantRepository
	attendance   repository.AttendanceRepository
	loc          *time.Location
	metrics      *metrics.Metrics
	log          *slog.Logger
}

func NewReconciler(
	participants repository.ParticipantRepository,
	attendance repository.AttendanceRepository,
	loc *time.Location,
	m *metrics.Metrics,
	log *slog.Logger,
) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		participants: participants,
		attendance:   attendance,
		loc:          loc,
		metrics:      m,
		log:          log,
	}
}

// Reconcile reports how many rows were written. Rows are inserted only where
// the (meeting, user) pair has none, so a concurrent check-in always wins and
// running it again is a no-op.
func (r *Reconciler) Reconcile(ctx context.Context, meeting *domain.Meeting, now time.Time) (int, error) {
	const op = "service.reconciler.reconcile"

	if !meeting.Interval(r.loc).Ended(now) {
		return 0, nil
	}

	participants, err := r.participants.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: participants: %w", op, err)
	}
	existing, err := r.attendance.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: attendance: %w", op, err)
	}

	attended := make(map[uuid.UUID]struct{}, len(existing))
	for _, a := range existing {
		attended[a.UserID] = struct{}{}
	}

	missing := make([]*domain.Attendance, 0)
	for _, p := range participants {
		if _, ok := attended[p.UserID]; ok {
			continue
		}
		missing = append(missing, domain.NewAttendance(meeting.ID, p.UserID, domain.StatusMissed, now))
	}
	if len(missing) == 0 {
		return 0, nil
	}

	written, err := r.attendance.InsertIfAbsent(ctx, missing)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	r.metrics.Reconciled(written)
	if written > 0 {
		r.log.Info("missed attendance recorded",
			slog.String("op", op),
			slog.String("meeting_id", meeting.ID.String()),
			slog.Int("rows", written),
		)
	}
	return written, nil
}
