package qr

import (
	"context"
	"sync"
	"time"

	"github.com/immxrtalbeast/presensi/internal/domain"
)

// Frame is one published state of a rotating check-in code.
type Frame struct {
	MeetingID   string           `json:"meeting_id"`
	Payload     domain.QRPayload `json:"payload"`
	Encoded     string           `json:"encoded"`
	Bucket      int64            `json:"bucket"`
	SecondsLeft int              `json:"seconds_left"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// NewFrame builds the frame for meetingID at now. It reports false when
// meetingID is empty.
func NewFrame(meetingID string, now time.Time) (Frame, bool) {
	payload, ok := domain.NewQRPayload(meetingID, now)
	if !ok {
		return Frame{}, false
	}
	return Frame{
		MeetingID:   meetingID,
		Payload:     payload,
		Encoded:     payload.Encode(),
		Bucket:      payload.Timestamp,
		SecondsLeft: domain.SecondsToNextMinute(now),
		GeneratedAt: now,
	}, true
}

// Rotator re-publishes the code of one meeting on every tick. The payload
// only changes when the minute bucket does; the countdown changes each tick.
type Rotator struct {
	meetingID string
	clock     domain.Clock
	tick      time.Duration

	mu     sync.Mutex
	subs   map[int]chan Frame
	nextID int
	closed bool
}

func NewRotator(meetingID string, clock domain.Clock, tick time.Duration) *Rotator {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if tick <= 0 {
		tick = time.Second
	}
	return &Rotator{
		meetingID: meetingID,
		clock:     clock,
		tick:      tick,
		subs:      make(map[int]chan Frame),
	}
}

// Subscribe registers a receiver. Frames are dropped for a receiver whose
// buffer is full. The channel is closed by the returned cancel func or when
// Run returns, whichever comes first.
func (r *Rotator) Subscribe(buffer int) (<-chan Frame, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Frame, buffer)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		close(ch)
		return ch, func() {}
	}

	id := r.nextID
	r.nextID++
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if sub, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(sub)
			}
		})
	}
}

// Current returns the frame for the clock's current instant.
func (r *Rotator) Current() (Frame, bool) {
	return NewFrame(r.meetingID, r.clock.Now())
}

// Tick publishes the frame for now to every subscriber without blocking.
func (r *Rotator) Tick(now time.Time) (Frame, bool) {
	frame, ok := NewFrame(r.meetingID, now)
	if !ok {
		return Frame{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.subs {
		select {
		case ch <- frame:
		default:
		}
	}
	return frame, true
}

// Run ticks until ctx is done and then closes all subscriptions. With no
// meeting id it returns at once.
func (r *Rotator) Run(ctx context.Context) {
	defer r.shutdown()

	if r.meetingID == "" {
		return
	}

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.Tick(r.clock.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(r.clock.Now())
		}
	}
}

func (r *Rotator) shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}
