package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrLocationRequired = errors.New("location is required")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidWindow    = errors.New("end time must be after start time")
)

// TimeOfDay is a wall-clock time without a date, to the second.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "15:04" and "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) After(o TimeOfDay) bool {
	return t.secondsOfDay() > o.secondsOfDay()
}

func (t TimeOfDay) secondsOfDay() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// ParseDate parses a calendar date in DateLayout. The result is midnight UTC
// and only its year, month and day are meaningful.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Meeting is a scheduled gathering on a single calendar date.
type Meeting struct {
	ID          uuid.UUID
	Title       string
	Description string
	Date        time.Time
	StartTime   TimeOfDay
	EndTime     TimeOfDay
	Location    string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MeetingDetails holds the editable fields of a meeting.
type MeetingDetails struct {
	Title       string
	Description string
	Location    string
	Date        time.Time
	StartTime   TimeOfDay
	EndTime     TimeOfDay
}

func (d MeetingDetails) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(d.Location) == "" {
		return ErrLocationRequired
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	if !d.EndTime.After(d.StartTime) {
		return ErrInvalidWindow
	}
	return nil
}

// NewMeeting validates the details and builds a meeting owned by creator.
func NewMeeting(details MeetingDetails, creator uuid.UUID) (*Meeting, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m := &Meeting{
		ID:        uuid.New(),
		CreatedBy: creator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.apply(details)
	return m, nil
}

// Apply replaces the editable fields after validating them.
func (m *Meeting) Apply(details MeetingDetails) error {
	if err := details.Validate(); err != nil {
		return err
	}
	m.apply(details)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Meeting) apply(d MeetingDetails) {
	m.Title = strings.TrimSpace(d.Title)
	m.Description = strings.TrimSpace(d.Description)
	m.Location = strings.TrimSpace(d.Location)
	y, mo, day := d.Date.Date()
	m.Date = time.Date(y, mo, day, 0, 0, 0, 0, time.UTC)
	m.StartTime = d.StartTime
	m.EndTime = d.EndTime
}

func (m *Meeting) IsCreator(userID uuid.UUID) bool {
	return m != nil && m.CreatedBy == userID
}

func (m *Meeting) DateString() string {
	return m.Date.Format(DateLayout)
}

// Interval is the instant span [Start, End) of a meeting.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Interval resolves the meeting's date and times of day in loc.
func (m *Meeting) Interval(loc *time.Location) Interval {
	if loc == nil {
		loc = time.Local
	}
	y, mo, d := m.Date.Date()
	at := func(t TimeOfDay) time.Time {
		return time.Date(y, mo, d, t.Hour, t.Minute, t.Second, 0, loc)
	}
	return Interval{Start: at(m.StartTime), End: at(m.EndTime)}
}

func (i Interval) Started(now time.Time) bool {
	return !now.Before(i.Start)
}

// Ended reports now >= End.
func (i Interval) Ended(now time.Time) bool {
	return !now.Before(i.End)
}
