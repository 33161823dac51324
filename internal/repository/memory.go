package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
)

type pairKey struct {
	meetingID uuid.UUID
	userID    uuid.UUID
}

// memoryState is shared by the in-memory repositories so that joins and the
// multi-table writes see one consistent snapshot.
type memoryState struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*domain.User
	nims         map[string]uuid.UUID
	meetings     map[uuid.UUID]*domain.Meeting
	participants map[pairKey]*domain.Participant
	attendance   map[pairKey]*domain.Attendance
	sessions     map[uuid.UUID]*domain.Session
}

// InMemoryStore bundles map-backed repositories over one state.
type InMemoryStore struct {
	Users        *InMemoryUserRepository
	Meetings     *InMemoryMeetingRepository
	Participants *InMemoryParticipantRepository
	Attendance   *InMemoryAttendanceRepository
	Sessions     *InMemorySessionRepository
}

func NewInMemoryStore() *InMemoryStore {
	st := &memoryState{
		users:        make(map[uuid.UUID]*domain.User),
		nims:         make(map[string]uuid.UUID),
		meetings:     make(map[uuid.UUID]*domain.Meeting),
		participants: make(map[pairKey]*domain.Participant),
		attendance:   make(map[pairKey]*domain.Attendance),
		sessions:     make(map[uuid.UUID]*domain.Session),
	}
	return &InMemoryStore{
		Users:        &InMemoryUserRepository{st: st},
		Meetings:     &InMemoryMeetingRepository{st: st},
		Participants: &InMemoryParticipantRepository{st: st},
		Attendance:   &InMemoryAttendanceRepository{st: st},
		Sessions:     &InMemorySessionRepository{st: st},
	}
}

type InMemoryUserRepository struct {
	st *memoryState
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.nims[user.NIM]; ok {
		return ErrUserNIMExists
	}

	u := *user
	r.st.users[u.ID] = &u
	r.st.nims[u.NIM] = u.ID
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	user, ok := r.st.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (r *InMemoryUserRepository) GetByNIM(ctx context.Context, nim string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	id, ok := r.st.nims[strings.TrimSpace(nim)]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *r.st.users[id]
	return &u, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	current, ok := r.st.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if owner, ok := r.st.nims[user.NIM]; ok && owner != user.ID {
		return ErrUserNIMExists
	}

	delete(r.st.nims, current.NIM)
	u := *user
	r.st.users[u.ID] = &u
	r.st.nims[u.NIM] = u.ID
	return nil
}

func (r *InMemoryUserRepository) List(ctx context.Context, filter UserFilter) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	divisi := strings.TrimSpace(filter.Divisi)
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	result := make([]*domain.User, 0, len(r.st.users))
	for _, user := range r.st.users {
		if divisi != "" && user.Divisi != divisi {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(user.Name), query) &&
			!strings.Contains(strings.ToLower(user.NIM), query) {
			continue
		}
		u := *user
		result = append(result, &u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type InMemoryMeetingRepository struct {
	st *memoryState
}

func (r *InMemoryMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meeting == nil {
		return errors.New("meeting is nil")
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	m := *meeting
	r.st.meetings[m.ID] = &m

	key := pairKey{meetingID: m.ID, userID: m.CreatedBy}
	r.st.participants[key] = &domain.Participant{
		ID:         uuid.New(),
		MeetingID:  m.ID,
		UserID:     m.CreatedBy,
		IsRequired: true,
		CreatedAt:  m.CreatedAt,
	}
	r.st.attendance[key] = &domain.Attendance{
		ID:          uuid.New(),
		MeetingID:   m.ID,
		UserID:      m.CreatedBy,
		Status:      domain.StatusPresent,
		CheckInTime: m.CreatedAt,
		CreatedAt:   m.CreatedAt,
	}
	return nil
}

func (r *InMemoryMeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	meeting, ok := r.st.meetings[id]
	if !ok {
		return nil, ErrMeetingNotFound
	}
	m := *meeting
	return &m, nil
}

func (r *InMemoryMeetingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	result := make([]*domain.Meeting, 0, len(ids))
	for _, id := range ids {
		if meeting, ok := r.st.meetings[id]; ok {
			m := *meeting
			result = append(result, &m)
		}
	}
	return result, nil
}

func (r *InMemoryMeetingRepository) Update(ctx context.Context, meeting *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meeting == nil {
		return errors.New("meeting is nil")
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.meetings[meeting.ID]; !ok {
		return ErrMeetingNotFound
	}
	m := *meeting
	r.st.meetings[m.ID] = &m
	return nil
}

func (r *InMemoryMeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.meetings[id]; !ok {
		return ErrMeetingNotFound
	}
	for key := range r.st.attendance {
		if key.meetingID == id {
			delete(r.st.attendance, key)
		}
	}
	for key := range r.st.participants {
		if key.meetingID == id {
			delete(r.st.participants, key)
		}
	}
	delete(r.st.meetings, id)
	return nil
}

func (r *InMemoryMeetingRepository) ListFrom(ctx context.Context, from time.Time, limit int) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	day := from.Format(domain.DateLayout)
	result := make([]*domain.Meeting, 0)
	for _, meeting := range r.st.meetings {
		if meeting.DateString() < day {
			continue
		}
		m := *meeting
		result = append(result, &m)
	}
	sort.Slice(result, func(i, j int) bool {
		if di, dj := result[i].DateString(), result[j].DateString(); di != dj {
			return di < dj
		}
		return result[i].StartTime.String() < result[j].StartTime.String()
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryMeetingRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	result := make([]*domain.Meeting, 0)
	for key := range r.st.participants {
		if key.userID != userID {
			continue
		}
		if meeting, ok := r.st.meetings[key.meetingID]; ok {
			m := *meeting
			result = append(result, &m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if di, dj := result[i].DateString(), result[j].DateString(); di != dj {
			return di > dj
		}
		return result[i].StartTime.String() > result[j].StartTime.String()
	})
	return result, nil
}

type InMemoryParticipantRepository struct {
	st *memoryState
}

func (r *InMemoryParticipantRepository) Get(ctx context.Context, meetingID, userID uuid.UUID) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	participant, ok := r.st.participants[pairKey{meetingID: meetingID, userID: userID}]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	p := *participant
	return &p, nil
}

func (r *InMemoryParticipantRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	result := make([]*domain.Participant, 0)
	for key, participant := range r.st.participants {
		if key.meetingID != meetingID {
			continue
		}
		p := *participant
		if user, ok := r.st.users[p.UserID]; ok {
			u := *user
			p.User = &u
		}
		result = append(result, &p)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *InMemoryParticipantRepository) Add(ctx context.Context, participants []*domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, p := range participants {
		if p == nil {
			continue
		}
		if _, ok := r.st.participants[pairKey{meetingID: p.MeetingID, userID: p.UserID}]; ok {
			return ErrParticipantExists
		}
	}
	for _, participant := range participants {
		if participant == nil {
			continue
		}
		p := *participant
		p.User = nil
		r.st.participants[pairKey{meetingID: p.MeetingID, userID: p.UserID}] = &p
	}
	return nil
}

func (r *InMemoryParticipantRepository) Remove(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, id := range userIDs {
		delete(r.st.participants, pairKey{meetingID: meetingID, userID: id})
	}
	return nil
}

type InMemoryAttendanceRepository struct {
	st *memoryState
}

func (r *InMemoryAttendanceRepository) Get(ctx context.Context, meetingID, userID uuid.UUID) (*domain.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	attendance, ok := r.st.attendance[pairKey{meetingID: meetingID, userID: userID}]
	if !ok {
		return nil, ErrAttendanceNotFound
	}
	a := *attendance
	return &a, nil
}

func (r *InMemoryAttendanceRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	result := make([]*domain.Attendance, 0)
	for key, attendance := range r.st.attendance {
		if key.meetingID == meetingID {
			a := *attendance
			result = append(result, &a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *InMemoryAttendanceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	result := make([]*domain.Attendance, 0)
	for key, attendance := range r.st.attendance {
		if key.userID == userID {
			a := *attendance
			result = append(result, &a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *InMemoryAttendanceRepository) Insert(ctx context.Context, attendance *domain.Attendance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if attendance == nil {
		return errors.New("attendance is nil")
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	key := pairKey{meetingID: attendance.MeetingID, userID: attendance.UserID}
	if _, ok := r.st.attendance[key]; ok {
		return ErrAttendanceExists
	}
	a := *attendance
	r.st.attendance[key] = &a
	return nil
}

func (r *InMemoryAttendanceRepository) InsertIfAbsent(ctx context.Context, rows []*domain.Attendance) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	written := 0
	for _, row := range rows {
		if row == nil {
			continue
		}
		key := pairKey{meetingID: row.MeetingID, userID: row.UserID}
		if _, ok := r.st.attendance[key]; ok {
			continue
		}
		a := *row
		r.st.attendance[key] = &a
		written++
	}
	return written, nil
}

func (r *InMemoryAttendanceRepository) DeleteForUsers(ctx context.Context, meetingID uuid.UUID, userIDs []uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, id := range userIDs {
		delete(r.st.attendance, pairKey{meetingID: meetingID, userID: id})
	}
	return nil
}

type InMemorySessionRepository struct {
	st *memoryState
}

func (r *InMemorySessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil {
		return errors.New("session is nil")
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	s := *session
	r.st.sessions[s.ID] = &s
	return nil
}

func (r *InMemorySessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	session, ok := r.st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := *session
	return &s, nil
}

func (r *InMemorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.st.sessions, id)
	return nil
}
