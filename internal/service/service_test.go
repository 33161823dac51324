package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/session"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var wib = time.FixedZone("WIB", 7*60*60)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// at is a wall-clock instant on the fixture date 2025-03-10 in WIB.
func at(hour, minute, second int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, second, 0, wib)
}

type testEnv struct {
	store      *repository.InMemoryStore
	clock      *testClock
	sessions   *session.Manager
	users      *UserService
	meetings   *MeetingService
	checkin    *CheckInService
	reconciler *Reconciler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewInMemoryStore()
	clock := &testClock{now: at(9, 0, 0)}
	sessions := session.NewManager(store.Sessions, store.Users, "test-secret", time.Hour, clock)
	reconciler := NewReconciler(store.Participants, store.Attendance, wib, nil, log)

	return &testEnv{
		store:      store,
		clock:      clock,
		sessions:   sessions,
		users:      NewUserService(store.Users, sessions, bcrypt.MinCost, log),
		meetings:   NewMeetingService(store.Meetings, store.Participants, store.Attendance, store.Users, reconciler, clock, wib, log),
		checkin:    NewCheckInService(store.Meetings, store.Participants, store.Attendance, clock, wib, nil, log),
		reconciler: reconciler,
	}
}

func (e *testEnv) user(t *testing.T, nim, name string, canCreate bool) *domain.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), NewUserInput{
		NIM:              nim,
		Name:             name,
		Password:         "secret123",
		CanCreateMeeting: canCreate,
	})
	require.NoError(t, err)
	return u
}

// meeting creates a meeting on the fixture date owned by creator with the
// given extra participants.
func (e *testEnv) meeting(t *testing.T, creator *domain.User, start, end string, participants ...*domain.User) *domain.Meeting {
	t.Helper()
	return e.meetingOn(t, creator, "2025-03-10", start, end, participants...)
}

func (e *testEnv) meetingOn(t *testing.T, creator *domain.User, date, start, end string, participants ...*domain.User) *domain.Meeting {
	t.Helper()
	ctx := context.Background()
	m, err := e.meetings.CreateMeeting(ctx, creator, MeetingInput{
		Title:     "Rapat Koordinasi",
		Location:  "Aula",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)

	if len(participants) > 0 {
		ids := make([]uuid.UUID, 0, len(participants))
		for _, p := range participants {
			ids = append(ids, p.ID)
		}
		_, err = e.meetings.SetParticipants(ctx, creator, m.ID, ids)
		require.NoError(t, err)
	}
	return m
}

func (e *testEnv) payload(m *domain.Meeting) string {
	p, ok := domain.NewQRPayload(m.ID.String(), e.clock.Now())
	if !ok {
		panic("empty meeting id")
	}
	return p.Encode()
}

func (e *testEnv) scan(t *testing.T, u *domain.User, raw string) ScanResult {
	t.Helper()
	res, err := e.checkin.Scan(context.Background(), &session.Session{User: u}, raw)
	require.NoError(t, err)
	return res
}

func (e *testEnv) rowsFor(t *testing.T, m *domain.Meeting, u *domain.User) []*domain.Attendance {
	t.Helper()
	rows, err := e.store.Attendance.ListByMeeting(context.Background(), m.ID)
	require.NoError(t, err)
	out := make([]*domain.Attendance, 0)
	for _, r := range rows {
		if r.UserID == u.ID {
			out = append(out, r)
		}
	}
	return out
}
