package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
)

// UserFilter narrows user listings. Zero values match everything.
type UserFilter struct {
	Divisi string
	// Query matches a substring of the name or the NIM, case-insensitively.
	Query string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByNIM(ctx context.Context, nim string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
}

type MeetingRepository interface {
	// Create stores the meeting together with its creator as a required
	// participant and the creator's present attendance, atomically.
	Create(ctx context.Context, meeting *domain.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meeting, error)
	Update(ctx context.Context, meeting *domain.Meeting) error
	// Delete removes attendance, participants and the meeting in one step.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListFrom returns meetings dated on or after from, earliest first.
	ListFrom(ctx context.Context, from time.Time, limit int) ([]*domain.Meeting, error)
	// ListForUser returns meetings the user participates in, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Meeting, error)
}

type ParticipantRepository interface {
	Get(ctx context.Context, meetingID, userID uuid.UUID) (*domain.Participant, error)
	// ListByMeeting returns participants with their User filled, oldest first.
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Participant, error)
	Add(ctx context.Context, participants []*domain.Participant) error
	Remove(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error
}

type AttendanceRepository interface {
	Get(ctx context.Context, meetingID, userID uuid.UUID) (*domain.Attendance, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Attendance, error)
	// ListByUser returns the user's rows, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Attendance, error)
	// Insert fails with ErrAttendanceExists when the pair already has a row.
	Insert(ctx context.Context, attendance *domain.Attendance) error
	// InsertIfAbsent writes only rows whose (meeting, user) pair has no row yet
	// and reports how many were written. Existing rows are left untouched.
	InsertIfAbsent(ctx context.Context, rows []*domain.Attendance) (int, error)
	DeleteForUsers(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
