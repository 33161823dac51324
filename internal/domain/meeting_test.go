package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 5}, tod)
	assert.Equal(t, "09:05:00", tod.String())

	tod, err = ParseTimeOfDay("23:59:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 23, Minute: 59, Second: 30}, tod)

	_, err = ParseTimeOfDay("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func validDetails(t *testing.T) MeetingDetails {
	t.Helper()
	d, err := ParseDate("2026-10-19")
	require.NoError(t, err)
	return MeetingDetails{
		Title:     " Rapat Pleno ",
		Location:  "Sekre",
		Date:      d,
		StartTime: TimeOfDay{Hour: 10},
		EndTime:   TimeOfDay{Hour: 11},
	}
}

func TestNewMeeting(t *testing.T) {
	creator := uuid.New()
	m, err := NewMeeting(validDetails(t), creator)
	require.NoError(t, err)
	assert.Equal(t, "Rapat Pleno", m.Title)
	assert.Equal(t, "2026-10-19", m.DateString())
	assert.True(t, m.IsCreator(creator))
	assert.False(t, m.IsCreator(uuid.New()))
}

func TestMeetingDetailsValidate(t *testing.T) {
	d := validDetails(t)
	d.Title = " "
	assert.ErrorIs(t, d.Validate(), ErrTitleRequired)

	d = validDetails(t)
	d.Location = ""
	assert.ErrorIs(t, d.Validate(), ErrLocationRequired)

	d = validDetails(t)
	d.EndTime = d.StartTime
	assert.ErrorIs(t, d.Validate(), ErrInvalidWindow)

	d = validDetails(t)
	d.Date = time.Time{}
	assert.ErrorIs(t, d.Validate(), ErrInvalidDate)
}

func TestMeetingInterval(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	m, err := NewMeeting(validDetails(t), uuid.New())
	require.NoError(t, err)

	iv := m.Interval(loc)
	assert.True(t, iv.Start.Equal(time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)))
	assert.True(t, iv.End.Equal(time.Date(2026, 10, 19, 4, 0, 0, 0, time.UTC)))
	assert.False(t, iv.Ended(iv.End.Add(-time.Nanosecond)))
	assert.True(t, iv.Ended(iv.End))
	assert.True(t, iv.Started(iv.Start))
}
