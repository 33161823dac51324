package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/session"
)

var (
	ErrForbidden          = errors.New("access denied")
	ErrMeetingEnded       = errors.New("meeting has ended")
	ErrInvalidMeeting     = errors.New("invalid meeting")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrCredentialsRequired = errors.New("nim and password are required")
	ErrNameRequired        = errors.New("name is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters")
	ErrPasswordUnchanged   = errors.New("new password must differ from the old one")
	ErrPasswordMismatch    = errors.New("password confirmation does not match")
	ErrWrongPassword       = errors.New("old password is incorrect")
)

type UserInteractor interface {
	Login(ctx context.Context, nim, password string) (string, *session.Session, error)
	Logout(ctx context.Context, s *session.Session) error
	CreateUser(ctx context.Context, in NewUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, in PasswordChange) error
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error)
}

type MeetingInteractor interface {
	CreateMeeting(ctx context.Context, creator *domain.User, in MeetingInput) (*domain.Meeting, error)
	UpdateMeeting(ctx context.Context, actor *domain.User, id uuid.UUID, in MeetingInput) (*domain.Meeting, error)
	DeleteMeeting(ctx context.Context, actor *domain.User, id uuid.UUID) error
	MeetingDetail(ctx context.Context, viewer *domain.User, id uuid.UUID) (*MeetingDetail, error)
	SetParticipants(ctx context.Context, actor *domain.User, id uuid.UUID, userIDs []uuid.UUID) (*ParticipantChange, error)
	Overview(ctx context.Context, user *domain.User) (*Overview, error)
	Upcoming(ctx context.Context, limit int) ([]*domain.Meeting, error)
	History(ctx context.Context, user *domain.User) ([]HistoryEntry, error)
	QRMeeting(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Meeting, error)
	Ended(meeting *domain.Meeting) bool
}

type CheckInInteractor interface {
	Scan(ctx context.Context, s *session.Session, raw string) (ScanResult, error)
}

// SessionIssuer establishes and ends logins.
type SessionIssuer interface {
	Issue(ctx context.Context, user *domain.User) (string, *session.Session, error)
	Clear(ctx context.Context, s *session.Session) error
}
