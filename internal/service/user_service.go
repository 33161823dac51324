package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/session"
	"github.com/immxrtalbeast/presensi/lib/logger/sl"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type NewUserInput struct {
	NIM              string
	Name             string
	Divisi           string
	Password         string
	CanCreateMeeting bool
}

// ProfileInput carries the editable profile fields. Nil fields are left as is.
type ProfileInput struct {
	Name         *string
	Divisi       *string
	ProfilePhoto *string
}

type PasswordChange struct {
	Old     string
	New     string
	Confirm string
}

type UserService struct {
	users      repository.UserRepository
	sessions   SessionIssuer
	bcryptCost int
	log        *slog.Logger
}

func NewUserService(users repository.UserRepository, sessions SessionIssuer, bcryptCost int, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{users: users, sessions: sessions, bcryptCost: bcryptCost, log: log}
}

// Login answers ErrInvalidCredentials both for an unknown NIM and for a wrong
// password.
func (s *UserService) Login(ctx context.Context, nim, password string) (string, *session.Session, error) {
	const op = "service.user.login"
	log := s.log.With(slog.String("op", op))

	nim = strings.TrimSpace(nim)
	if nim == "" || password == "" {
		return "", nil, ErrCredentialsRequired
	}

	user, err := s.users.GetByNIM(ctx, nim)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", sl.Err(err))
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, sess, err := s.sessions.Issue(ctx, user)
	if err != nil {
		log.Error("failed to issue session", sl.Err(err))
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return token, sess, nil
}

func (s *UserService) Logout(ctx context.Context, sess *session.Session) error {
	return s.sessions.Clear(ctx, sess)
}

func (s *UserService) CreateUser(ctx context.Context, in NewUserInput) (*domain.User, error) {
	const op = "service.user.create"
	log := s.log.With(slog.String("op", op))

	if strings.TrimSpace(in.NIM) == "" {
		return nil, ErrCredentialsRequired
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := domain.NewUser(in.NIM, in.Name, in.Divisi, string(hash), in.CanCreateMeeting)
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrUserNIMExists) {
			log.Error("failed to create user", sl.Err(err))
		}
		return nil, err
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*domain.User, error) {
	const op = "service.user.update_profile"
	log := s.log.With(slog.String("op", op))

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if in.Divisi != nil {
		user.Divisi = strings.TrimSpace(*in.Divisi)
	}
	if in.ProfilePhoto != nil {
		user.ProfilePhoto = strings.TrimSpace(*in.ProfilePhoto)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		log.Error("failed to update profile", sl.Err(err))
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, in PasswordChange) error {
	const op = "service.user.change_password"
	log := s.log.With(slog.String("op", op))

	switch {
	case in.Old == "" || in.New == "":
		return ErrPasswordRequired
	case len(in.New) < minPasswordLength:
		return ErrPasswordTooShort
	case in.New == in.Old:
		return ErrPasswordUnchanged
	case in.New != in.Confirm:
		return ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Old)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		log.Error("failed to store password", sl.Err(err))
		return err
	}

	log.Info("password changed", slog.String("user_id", user.ID.String()))
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error) {
	return s.users.List(ctx, filter)
}
