package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/lib/logger/sl"
)

// MeetingInput is the raw form of a meeting as submitted by a client.
type MeetingInput struct {
	Title       string
	Description string
	Location    string
	Date        string
	StartTime   string
	EndTime     string
}

func (in MeetingInput) details() (domain.MeetingDetails, error) {
	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return domain.MeetingDetails{}, fmt.Errorf("%w: %w", ErrInvalidMeeting, err)
	}
	start, err := domain.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return domain.MeetingDetails{}, fmt.Errorf("%w: %w", ErrInvalidMeeting, err)
	}
	end, err := domain.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return domain.MeetingDetails{}, fmt.Errorf("%w: %w", ErrInvalidMeeting, err)
	}

	d := domain.MeetingDetails{
		Title:       plainText(in.Title),
		Description: plainText(in.Description),
		Location:    plainText(in.Location),
		Date:        date,
		StartTime:   start,
		EndTime:     end,
	}
	if err := d.Validate(); err != nil {
		return domain.MeetingDetails{}, fmt.Errorf("%w: %w", ErrInvalidMeeting, err)
	}
	return d, nil
}

type ParticipantStatus struct {
	User       *domain.User
	IsCreator  bool
	Attendance *domain.Attendance
}

type Stats struct {
	Total    int
	Attended int
	// Rate is the attended share of participants as a rounded percentage.
	Rate int
}

type MeetingDetail struct {
	Meeting          *domain.Meeting
	Participants     []ParticipantStatus
	Stats            Stats
	Phase            domain.Phase
	IsCreator        bool
	ViewerAttendance *domain.Attendance
}

type MeetingSummary struct {
	Meeting    *domain.Meeting
	Phase      domain.Phase
	Attendance *domain.Attendance
}

// Overview partitions a user's meetings for list views.
type Overview struct {
	MustAttend []MeetingSummary
	Missed     []MeetingSummary
	Attended   []MeetingSummary
}

type HistoryEntry struct {
	Meeting    *domain.Meeting
	Attendance *domain.Attendance
}

type ParticipantChange struct {
	Added   int
	Removed int
}

type MeetingService struct {
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	attendance   repository.AttendanceRepository
	users        repository.UserRepository
	reconciler   *Reconciler
	clock        domain.Clock
	loc          *time.Location
	log          *slog.Logger
}

func NewMeetingService(
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	attendance repository.AttendanceRepository,
	users repository.UserRepository,
	reconciler *Reconciler,
	clock domain.Clock,
	loc *time.Location,
	log *slog.Logger,
) *MeetingService {
	if log == nil {
		log = slog.Default()
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &MeetingService{
		meetings:     meetings,
		participants: participants,
		attendance:   attendance,
		users:        users,
		reconciler:   reconciler,
		clock:        clock,
		loc:          loc,
		log:          log,
	}
}

// CreateMeeting stores the meeting with its creator already a participant
// marked present.
func (s *MeetingService) CreateMeeting(ctx context.Context, creator *domain.User, in MeetingInput) (*domain.Meeting, error) {
	const op = "service.meeting.create"
	log := s.log.With(slog.String("op", op))

	if creator == nil || !creator.CanCreateMeeting {
		return nil, ErrForbidden
	}

	details, err := in.details()
	if err != nil {
		return nil, err
	}
	meeting, err := domain.NewMeeting(details, creator.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMeeting, err)
	}
	meeting.CreatedAt = s.clock.Now().UTC()
	meeting.UpdatedAt = meeting.CreatedAt

	if err := s.meetings.Create(ctx, meeting); err != nil {
		log.Error("failed to create meeting", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("meeting created",
		slog.String("meeting_id", meeting.ID.String()),
		slog.String("creator_id", creator.ID.String()),
	)
	return meeting, nil
}

func (s *MeetingService) UpdateMeeting(ctx context.Context, actor *domain.User, id uuid.UUID, in MeetingInput) (*domain.Meeting, error) {
	const op = "service.meeting.update"
	log := s.log.With(slog.String("op", op))

	meeting, err := s.ownedMeeting(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if meeting.Interval(s.loc).Ended(s.clock.Now()) {
		return nil, ErrMeetingEnded
	}

	details, err := in.details()
	if err != nil {
		return nil, err
	}
	if err := meeting.Apply(details); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMeeting, err)
	}

	if err := s.meetings.Update(ctx, meeting); err != nil {
		log.Error("failed to update meeting", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return meeting, nil
}

func (s *MeetingService) DeleteMeeting(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	const op = "service.meeting.delete"
	log := s.log.With(slog.String("op", op))

	if _, err := s.ownedMeeting(ctx, actor, id); err != nil {
		return err
	}
	if err := s.meetings.Delete(ctx, id); err != nil {
		log.Error("failed to delete meeting", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("meeting deleted", slog.String("meeting_id", id.String()))
	return nil
}

// MeetingDetail reconciles missed attendance before reading, so an ended
// meeting always shows every participant with a status.
func (s *MeetingService) MeetingDetail(ctx context.Context, viewer *domain.User, id uuid.UUID) (*MeetingDetail, error) {
	const op = "service.meeting.detail"
	log := s.log.With(slog.String("op", op), slog.String("meeting_id", id.String()))

	if viewer == nil {
		return nil, ErrForbidden
	}
	now := s.clock.Now()

	meeting, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isCreator := meeting.IsCreator(viewer.ID)
	if !isCreator {
		if _, err := s.participants.Get(ctx, id, viewer.ID); err != nil {
			if errors.Is(err, repository.ErrParticipantNotFound) {
				return nil, ErrForbidden
			}
			return nil, err
		}
	}

	if _, err := s.reconciler.Reconcile(ctx, meeting, now); err != nil {
		log.Error("reconciliation failed", sl.Err(err))
	}

	participants, err := s.participants.ListByMeeting(ctx, id)
	if err != nil {
		log.Error("failed to list participants", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.attendance.ListByMeeting(ctx, id)
	if err != nil {
		log.Error("failed to list attendance", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byUser := make(map[uuid.UUID]*domain.Attendance, len(rows))
	for _, a := range rows {
		byUser[a.UserID] = a
	}

	detail := &MeetingDetail{
		Meeting:      meeting,
		Participants: make([]ParticipantStatus, 0, len(participants)),
		IsCreator:    isCreator,
	}
	for _, p := range participants {
		user := p.User
		if user == nil {
			user = &domain.User{ID: p.UserID}
		}
		att := byUser[p.UserID]
		detail.Participants = append(detail.Participants, ParticipantStatus{
			User:       user,
			IsCreator:  meeting.IsCreator(p.UserID),
			Attendance: att,
		})
		if att.Present() {
			detail.Stats.Attended++
		}
	}
	detail.Stats.Total = len(participants)
	detail.Stats.Rate = attendanceRate(detail.Stats.Attended, detail.Stats.Total)

	detail.ViewerAttendance = byUser[viewer.ID]
	detail.Phase = domain.Classify(meeting.Interval(s.loc), now, detail.ViewerAttendance)

	return detail, nil
}

func attendanceRate(attended, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(attended) * 100 / float64(total)))
}

// SetParticipants makes the participant set equal to userIDs plus the
// creator, who can never be removed. Removed users lose their attendance row.
func (s *MeetingService) SetParticipants(ctx context.Context, actor *domain.User, id uuid.UUID, userIDs []uuid.UUID) (*ParticipantChange, error) {
	const op = "service.meeting.set_participants"
	log := s.log.With(slog.String("op", op), slog.String("meeting_id", id.String()))

	meeting, err := s.ownedMeeting(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	ordered := append([]uuid.UUID{meeting.CreatedBy}, userIDs...)
	want := make(map[uuid.UUID]struct{}, len(ordered))

	current, err := s.participants.ListByMeeting(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	have := make(map[uuid.UUID]struct{}, len(current))
	for _, p := range current {
		have[p.UserID] = struct{}{}
	}

	toAdd := make([]*domain.Participant, 0)
	for _, uid := range ordered {
		if _, dup := want[uid]; dup {
			continue
		}
		want[uid] = struct{}{}
		if _, ok := have[uid]; ok {
			continue
		}
		if _, err := s.users.GetByID(ctx, uid); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownUser, uid)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		toAdd = append(toAdd, domain.NewParticipant(id, uid))
	}

	toRemove := make([]uuid.UUID, 0)
	for uid := range have {
		if _, ok := want[uid]; !ok {
			toRemove = append(toRemove, uid)
		}
	}

	if err := s.participants.Add(ctx, toAdd); err != nil {
		log.Error("failed to add participants", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.participants.Remove(ctx, id, toRemove); err != nil {
		log.Error("failed to remove participants", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.attendance.DeleteForUsers(ctx, id, toRemove); err != nil {
		// participants are already gone; stale rows are only cosmetic
		log.Error("failed to remove attendance of removed participants", sl.Err(err))
	}

	log.Info("participants updated", slog.Int("added", len(toAdd)), slog.Int("removed", len(toRemove)))
	return &ParticipantChange{Added: len(toAdd), Removed: len(toRemove)}, nil
}

func (s *MeetingService) Overview(ctx context.Context, user *domain.User) (*Overview, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	now := s.clock.Now()

	meetings, err := s.meetings.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	rows, err := s.attendance.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	byMeeting := make(map[uuid.UUID]*domain.Attendance, len(rows))
	for _, a := range rows {
		byMeeting[a.MeetingID] = a
	}

	ov := &Overview{
		MustAttend: []MeetingSummary{},
		Missed:     []MeetingSummary{},
		Attended:   []MeetingSummary{},
	}
	for _, m := range meetings {
		att := byMeeting[m.ID]
		phase := domain.Classify(m.Interval(s.loc), now, att)
		summary := MeetingSummary{Meeting: m, Phase: phase, Attendance: att}
		switch phase.Listing() {
		case domain.PhaseUpcoming:
			ov.MustAttend = append(ov.MustAttend, summary)
		case domain.PhaseMissed:
			ov.Missed = append(ov.Missed, summary)
		case domain.PhaseAttended:
			ov.Attended = append(ov.Attended, summary)
		}
	}

	sort.SliceStable(ov.MustAttend, func(i, j int) bool {
		return ov.MustAttend[i].Meeting.Interval(s.loc).Start.Before(ov.MustAttend[j].Meeting.Interval(s.loc).Start)
	})
	return ov, nil
}

// Upcoming lists meetings dated today or later in the configured zone.
func (s *MeetingService) Upcoming(ctx context.Context, limit int) ([]*domain.Meeting, error) {
	y, m, d := s.clock.Now().In(s.loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return s.meetings.ListFrom(ctx, today, limit)
}

// History returns the user's attendance rows with their meetings, newest first.
func (s *MeetingService) History(ctx context.Context, user *domain.User) ([]HistoryEntry, error) {
	if user == nil {
		return nil, ErrForbidden
	}

	rows, err := s.attendance.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.MeetingID)
	}
	meetings, err := s.meetings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Meeting, len(meetings))
	for _, m := range meetings {
		byID[m.ID] = m
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, a := range rows {
		m, ok := byID[a.MeetingID]
		if !ok {
			continue
		}
		entries = append(entries, HistoryEntry{Meeting: m, Attendance: a})
	}
	return entries, nil
}

// QRMeeting returns the meeting whose check-in code actor may display: only
// the creator, and only until the meeting ends.
func (s *MeetingService) QRMeeting(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Meeting, error) {
	meeting, err := s.ownedMeeting(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if meeting.Interval(s.loc).Ended(s.clock.Now()) {
		return nil, ErrMeetingEnded
	}
	return meeting, nil
}

// Ended reports whether the meeting is over at the current instant.
func (s *MeetingService) Ended(meeting *domain.Meeting) bool {
	return meeting.Interval(s.loc).Ended(s.clock.Now())
}

func (s *MeetingService) ownedMeeting(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Meeting, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	meeting, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !meeting.IsCreator(actor.ID) {
		return nil, ErrForbidden
	}
	return meeting, nil
}
