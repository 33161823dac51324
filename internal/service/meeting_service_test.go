package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMeeting(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	creator := e.user(t, "1001", "Creator", true)
	member := e.user(t, "1002", "Member", false)

	in := MeetingInput{
		Title:       "<b>Rapat</b> & Evaluasi<script>alert(1)</script>",
		Description: "Agenda <i>bulanan</i>",
		Location:    "Aula",
		Date:        "2025-03-10",
		StartTime:   "10:00",
		EndTime:     "11:00",
	}

	_, err := e.meetings.CreateMeeting(ctx, member, in)
	assert.ErrorIs(t, err, ErrForbidden)

	m, err := e.meetings.CreateMeeting(ctx, creator, in)
	require.NoError(t, err)
	assert.Equal(t, "Rapat & Evaluasi", m.Title)
	assert.Equal(t, "Agenda bulanan", m.Description)

	p, err := e.store.Participants.Get(ctx, m.ID, creator.ID)
	require.NoError(t, err)
	assert.True(t, p.IsRequired)
	a, err := e.store.Attendance.Get(ctx, m.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPresent, a.Status)
}

func TestCreateMeetingValidation(t *testing.T) {
	e := newTestEnv(t)
	creator := e.user(t, "1001", "Creator", true)

	valid := MeetingInput{Title: "Rapat", Location: "Aula", Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00"}
	cases := []struct {
		name   string
		mutate func(*MeetingInput)
		want   error
	}{
		{"no title", func(in *MeetingInput) { in.Title = "  " }, domain.ErrTitleRequired},
		{"markup only title", func(in *MeetingInput) { in.Title = "<p></p>" }, domain.ErrTitleRequired},
		{"no location", func(in *MeetingInput) { in.Location = "" }, domain.ErrLocationRequired},
		{"bad date", func(in *MeetingInput) { in.Date = "10/03/2025" }, domain.ErrInvalidDate},
		{"bad time", func(in *MeetingInput) { in.StartTime = "25:00" }, domain.ErrInvalidTimeOfDay},
		{"end equals start", func(in *MeetingInput) { in.EndTime = "10:00" }, domain.ErrInvalidWindow},
		{"end before start", func(in *MeetingInput) { in.EndTime = "09:00" }, domain.ErrInvalidWindow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := e.meetings.CreateMeeting(context.Background(), creator, in)
			assert.ErrorIs(t, err, ErrInvalidMeeting)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateMeeting(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	creator := e.user(t, "1001", "Creator", true)
	member := e.user(t, "1002", "Member", false)
	m := e.meeting(t, creator, "10:00", "11:00", member)

	in := MeetingInput{Title: "Rapat Baru", Location: "Ruang 2", Date: "2025-03-10", StartTime: "10:30", EndTime: "12:00"}

	_, err := e.meetings.UpdateMeeting(ctx, member, m.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := e.meetings.UpdateMeeting(ctx, creator, m.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Rapat Baru", updated.Title)
	assert.Equal(t, "10:30:00", updated.StartTime.String())

	stored, err := e.store.Meetings.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ruang 2", stored.Location)

	e.clock.set(at(12, 0, 0))
	_, err = e.meetings.UpdateMeeting(ctx, creator, m.ID, in)
	assert.ErrorIs(t, err, ErrMeetingEnded)

	_, err = e.meetings.UpdateMeeting(ctx, creator, uuid.New(), in)
	assert.ErrorIs(t, err, repository.ErrMeetingNotFound)
}

func TestDeleteMeeting(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	creator := e.user(t, "1001", "Creator", true)
	member := e.user(t, "1002", "Member", false)
	m := e.meeting(t, creator, "10:00", "11:00", member)

	assert.ErrorIs(t, e.meetings.DeleteMeeting(ctx, member, m.ID), ErrForbidden)
	require.NoError(t, e.meetings.DeleteMeeting(ctx, creator, m.ID))

	_, err := e.store.Meetings.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, repository.ErrMeetingNotFound)
	assert.Empty(t, e.rowsFor(t, m, creator))
	_, err = e.store.Participants.Get(ctx, m.ID, member.ID)
	assert.ErrorIs(t, err, repository.ErrParticipantNotFound)
}

func TestMeetingDetailReconcilesAfterEnd(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.user(t, "1001", "Creator", true)
	u2 := e.user(t, "1002", "Member", false)
	m := e.meeting(t, u1, "10:00", "11:00", u2)

	e.clock.set(at(11, 5, 0))
	detail, err := e.meetings.MeetingDetail(ctx, u1, m.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsCreator)
	assert.Equal(t, domain.PhaseAttended, detail.Phase)

	rows := e.rowsFor(t, m, u2)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.StatusMissed, rows[0].Status)

	var member *ParticipantStatus
	for i := range detail.Participants {
		if detail.Participants[i].User.ID == u2.ID {
			member = &detail.Participants[i]
		}
	}
	require.NotNil(t, member)
	require.NotNil(t, member.Attendance)
	assert.Equal(t, domain.StatusMissed, member.Attendance.Status)
	assert.Equal(t, "Member", member.User.Name)
	assert.Equal(t, domain.PhaseMissed, domain.Classify(m.Interval(wib), e.clock.Now(), member.Attendance))

	assert.Equal(t, Stats{Total: 2, Attended: 1, Rate: 50}, detail.Stats)

	viewer, err := e.meetings.MeetingDetail(ctx, u2, m.ID)
	require.NoError(t, err)
	assert.False(t, viewer.IsCreator)
	assert.Equal(t, domain.PhaseMissed, viewer.Phase)
	assert.Len(t, e.rowsFor(t, m, u2), 1)
}

func TestMeetingDetailAccess(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.user(t, "1001", "Creator", true)
	outsider := e.user(t, "1003", "Outsider", false)
	m := e.meeting(t, u1, "10:00", "11:00")

	_, err := e.meetings.MeetingDetail(ctx, outsider, m.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.meetings.MeetingDetail(ctx, u1, uuid.New())
	assert.ErrorIs(t, err, repository.ErrMeetingNotFound)

	e.clock.set(at(10, 10, 0))
	detail, err := e.meetings.MeetingDetail(ctx, u1, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseInProgress, detail.Phase)
}

func TestMeetingStatsRate(t *testing.T) {
	e := newTestEnv(t)
	u1 := e.user(t, "1001", "Creator", true)
	u2 := e.user(t, "1002", "Present", false)
	u3 := e.user(t, "1003", "Absent", false)
	m := e.meeting(t, u1, "10:00", "11:00", u2, u3)

	e.clock.set(at(10, 15, 0))
	require.Equal(t, ScanAccepted, e.scan(t, u2, e.payload(m)).Outcome)

	detail, err := e.meetings.MeetingDetail(context.Background(), u1, m.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Attended: 2, Rate: 67}, detail.Stats)
	for _, ps := range detail.Participants {
		if ps.User.ID == u3.ID {
			assert.Nil(t, ps.Attendance)
		} else {
			assert.True(t, ps.Attendance.Present(), ps.User.Name)
		}
	}

	assert.Equal(t, 0, attendanceRate(0, 0))
	assert.Equal(t, 33, attendanceRate(1, 3))
	assert.Equal(t, 100, attendanceRate(4, 4))
}

func TestSetParticipantsKeepsCreator(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.user(t, "1001", "Creator", true)
	u2 := e.user(t, "1002", "Member", false)
	u3 := e.user(t, "1003", "Another", false)
	m := e.meeting(t, u1, "10:00", "11:00", u2)

	e.clock.set(at(10, 10, 0))
	require.Equal(t, ScanAccepted, e.scan(t, u2, e.payload(m)).Outcome)

	change, err := e.meetings.SetParticipants(ctx, u1, m.ID, []uuid.UUID{u3.ID, u3.ID})
	require.NoError(t, err)
	assert.Equal(t, ParticipantChange{Added: 1, Removed: 1}, *change)

	_, err = e.store.Participants.Get(ctx, m.ID, u1.ID)
	require.NoError(t, err)
	_, err = e.store.Participants.Get(ctx, m.ID, u2.ID)
	assert.ErrorIs(t, err, repository.ErrParticipantNotFound)
	assert.Empty(t, e.rowsFor(t, m, u2))

	change, err = e.meetings.SetParticipants(ctx, u1, m.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, ParticipantChange{Added: 0, Removed: 1}, *change)

	parts, err := e.store.Participants.ListByMeeting(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, u1.ID, parts[0].UserID)
	assert.Len(t, e.rowsFor(t, m, u1), 1)

	_, err = e.meetings.SetParticipants(ctx, u2, m.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.meetings.SetParticipants(ctx, u1, m.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestOverviewPartitions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.user(t, "1001", "Creator", true)
	u2 := e.user(t, "1002", "Member", false)

	attended := e.meeting(t, u1, "08:00", "09:00", u2)
	missed := e.meeting(t, u1, "09:00", "10:00", u2)
	running := e.meeting(t, u1, "11:30", "13:00", u2)
	tomorrow := e.meetingOn(t, u1, "2025-03-11", "10:00", "11:00", u2)
	e.meeting(t, u1, "07:00", "08:00")

	e.clock.set(at(8, 30, 0))
	require.Equal(t, ScanAccepted, e.scan(t, u2, e.payload(attended)).Outcome)

	e.clock.set(at(12, 0, 0))
	ov, err := e.meetings.Overview(ctx, u2)
	require.NoError(t, err)

	ids := func(list []MeetingSummary) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(list))
		for _, s := range list {
			out = append(out, s.Meeting.ID)
		}
		return out
	}
	assert.Equal(t, []uuid.UUID{running.ID, tomorrow.ID}, ids(ov.MustAttend))
	assert.Equal(t, []uuid.UUID{missed.ID}, ids(ov.Missed))
	assert.Equal(t, []uuid.UUID{attended.ID}, ids(ov.Attended))
	assert.Equal(t, domain.PhaseInProgress, ov.MustAttend[0].Phase)

	creatorView, err := e.meetings.Overview(ctx, u1)
	require.NoError(t, err)
	assert.Len(t, creatorView.Attended, 3)
	assert.Len(t, creatorView.MustAttend, 2)
	assert.Empty(t, creatorView.Missed)
}

func TestUpcomingAndHistory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.user(t, "1001", "Creator", true)
	u2 := e.user(t, "1002", "Member", false)

	e.meetingOn(t, u1, "2025-03-09", "10:00", "11:00", u2)
	today := e.meeting(t, u1, "10:00", "11:00", u2)
	e.meetingOn(t, u1, "2025-03-12", "10:00", "11:00")
	e.meetingOn(t, u1, "2025-03-11", "10:00", "11:00")

	// 00:30 WIB is still the previous day in UTC
	e.clock.set(at(0, 30, 0))
	upcoming, err := e.meetings.Upcoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, today.ID, upcoming[0].ID)
	assert.Equal(t, "2025-03-11", upcoming[1].DateString())

	e.clock.set(at(10, 5, 0))
	require.Equal(t, ScanAccepted, e.scan(t, u2, e.payload(today)).Outcome)

	history, err := e.meetings.History(ctx, u2)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, today.ID, history[0].Meeting.ID)
	assert.Equal(t, domain.StatusPresent, history[0].Attendance.Status)
}

func TestQRMeetingGate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u1 := e.user(t, "1001", "Creator", true)
	u2 := e.user(t, "1002", "Member", false)
	m := e.meeting(t, u1, "10:00", "11:00", u2)

	_, err := e.meetings.QRMeeting(ctx, u2, m.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := e.meetings.QRMeeting(ctx, u1, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.False(t, e.meetings.Ended(got))

	e.clock.set(at(11, 0, 0))
	_, err = e.meetings.QRMeeting(ctx, u1, m.ID)
	assert.ErrorIs(t, err, ErrMeetingEnded)
	assert.True(t, e.meetings.Ended(m))
}
