package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/repository"
)

var ErrUnauthorized = errors.New("unauthorized")

// Session is the logged-in user attached to a request.
type Session struct {
	ID        uuid.UUID
	User      *domain.User
	ExpiresAt time.Time
}

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager issues signed tokens backed by persisted session rows, so a token
// stops working as soon as its row is cleared.
type Manager struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	secret   []byte
	ttl      time.Duration
	clock    domain.Clock
}

// NewManager builds a manager. An empty secret is replaced by a random one,
// which invalidates every token on restart.
func NewManager(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	secret string,
	ttl time.Duration,
	clock domain.Clock,
) *Manager {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Manager{
		sessions: sessions,
		users:    users,
		secret:   key,
		ttl:      ttl,
		clock:    clock,
	}
}

func (m *Manager) Issue(ctx context.Context, user *domain.User) (string, *Session, error) {
	if user == nil {
		return "", nil, errors.New("user is nil")
	}

	now := m.clock.Now()
	row := domain.NewSession(user.ID, now, m.ttl)
	if err := m.sessions.Create(ctx, row); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: row.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, &Session{ID: row.ID, User: user, ExpiresAt: row.ExpiresAt}, nil
}

// Load verifies the token, checks its session row and fetches the current
// user. Every failure to authenticate is reported as ErrUnauthorized.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrUnauthorized
	}

	sessionID, err := uuid.Parse(c.SessionID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}

	row, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if row.UserID != userID {
		return nil, ErrUnauthorized
	}
	if row.Expired(m.clock.Now()) {
		_ = m.sessions.Delete(ctx, row.ID)
		return nil, ErrUnauthorized
	}

	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return &Session{ID: row.ID, User: user, ExpiresAt: row.ExpiresAt}, nil
}

// Clear ends the session. Clearing an already cleared session is not an error.
func (m *Manager) Clear(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	if err := m.sessions.Delete(ctx, s.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return err
	}
	return nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
