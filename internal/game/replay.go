package game

import (
	"sync"
)

// DefaultReplayLimit caps how many snapshots a replay keeps per match.
const DefaultReplayLimit = 512

// Frame is one recorded state of a match.
type Frame struct {
	View     MatchView `json:"view"`
	Checksum string    `json:"checksum"`
}

// Replay is the sequence of states a match went through, for playback by a
// renderer. Consecutive identical states are recorded once.
type Replay struct {
	MatchID string

	mu     sync.RWMutex
	frames []Frame
	index  int
	limit  int
}

// NewReplay creates an empty replay. A limit below one uses
// DefaultReplayLimit; the oldest frames are dropped beyond it.
func NewReplay(matchID string, limit int) *Replay {
	if limit < 1 {
		limit = DefaultReplayLimit
	}
	return &Replay{MatchID: matchID, limit: limit}
}

// Record appends v unless it matches the last recorded state.
func (r *Replay) Record(v MatchView) error {
	sum, err := Checksum(v)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.frames); n > 0 && r.frames[n-1].Checksum == sum {
		return nil
	}
	r.frames = append(r.frames, Frame{View: v, Checksum: sum})
	if over := len(r.frames) - r.limit; over > 0 {
		r.frames = append([]Frame(nil), r.frames[over:]...)
		r.index = max(0, r.index-over)
	}
	return nil
}

// Start rewinds playback to the first frame.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = 0
}

// Next returns the frame at the cursor and advances it.
func (r *Replay) Next() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index >= len(r.frames) {
		return Frame{}, false
	}
	f := r.frames[r.index]
	r.index++
	return f, true
}

// Previous steps the cursor back and returns that frame.
func (r *Replay) Previous() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index == 0 {
		return Frame{}, false
	}
	r.index--
	return r.frames[r.index], true
}

// Skip moves the cursor by count frames, clamped to the recording, and
// returns the frame it lands on.
func (r *Replay) Skip(count int) (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.frames) == 0 {
		return Frame{}, false
	}
	r.index = min(max(r.index+count, 0), len(r.frames)-1)
	return r.frames[r.index], true
}

// Size returns the number of recorded frames.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

// At returns the frame at index.
func (r *Replay) At(index int) (Frame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.frames) {
		return Frame{}, false
	}
	return r.frames[index], true
}

// Clone copies the recording with a fresh cursor.
func (r *Replay) Clone() *Replay {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Replay{
		MatchID: r.MatchID,
		frames:  append([]Frame(nil), r.frames...),
		limit:   r.limit,
	}
}
