package domain

import "time"

// Phase is the state of a meeting as seen by one participant.
type Phase string

const (
	PhaseUpcoming   Phase = "upcoming"
	PhaseInProgress Phase = "in_progress"
	PhaseAttended   Phase = "attended"
	PhaseMissed     Phase = "missed"
)

// Classify places a meeting instance relative to now. att is the user's
// attendance row for the meeting, nil when there is none.
func Classify(iv Interval, now time.Time, att *Attendance) Phase {
	if iv.Ended(now) {
		if att.Present() {
			return PhaseAttended
		}
		return PhaseMissed
	}
	if iv.Started(now) {
		return PhaseInProgress
	}
	return PhaseUpcoming
}

func (p Phase) Ended() bool {
	return p == PhaseAttended || p == PhaseMissed
}

// Listing folds in-progress meetings into upcoming, as list views show them.
func (p Phase) Listing() Phase {
	if p == PhaseInProgress {
		return PhaseUpcoming
	}
	return p
}
