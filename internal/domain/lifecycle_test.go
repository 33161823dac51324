package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	m := &Meeting{
		Date:      time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		StartTime: TimeOfDay{Hour: 10},
		EndTime:   TimeOfDay{Hour: 11},
	}
	iv := m.Interval(loc)
	at := func(h, min int) time.Time { return time.Date(2026, 10, 19, h, min, 0, 0, loc) }

	present := NewAttendance(uuid.New(), uuid.New(), StatusPresent, at(10, 5))
	missed := NewAttendance(uuid.New(), uuid.New(), StatusMissed, at(11, 5))

	tests := []struct {
		name string
		now  time.Time
		att  *Attendance
		want Phase
	}{
		{"before start", at(9, 59), nil, PhaseUpcoming},
		{"at start", at(10, 0), nil, PhaseInProgress},
		{"during, already present", at(10, 30), present, PhaseInProgress},
		{"at end without row", at(11, 0), nil, PhaseMissed},
		{"after end present", at(11, 5), present, PhaseAttended},
		{"after end missed row", at(11, 5), missed, PhaseMissed},
		{"next day", at(11, 0).Add(24 * time.Hour), nil, PhaseMissed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(iv, tt.now, tt.att))
		})
	}
}

func TestPhaseListing(t *testing.T) {
	assert.Equal(t, PhaseUpcoming, PhaseInProgress.Listing())
	assert.Equal(t, PhaseUpcoming, PhaseUpcoming.Listing())
	assert.Equal(t, PhaseMissed, PhaseMissed.Listing())
	assert.True(t, PhaseAttended.Ended())
	assert.False(t, PhaseInProgress.Ended())
}
