// Package sequence plays narrative message sequences triggered by elapsed
// time or distance travelled. Playback is driven entirely by Update calls
// from the tick loop; there are no timers to leak or cancel.
package sequence

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"watego/pkg/config"
)

// Source is the journey state the manager reads its triggers from.
type Source interface {
	ElapsedTime() (time.Duration, bool)
	Distance() float64
}

type playState int

const (
	stateIdle playState = iota
	stateShowing
	stateFading
)

// Display is the currently visible message, for rendering.
type Display struct {
	SequenceID string `json:"sequence_id"`
	Text       string `json:"text"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Fading     bool   `json:"fading"`
	Skippable  bool   `json:"skippable"`
}

// Manager tracks which sequences have played and drives the playback of
// the active one. Triggered identifiers are append-only and persisted;
// playback position is transient and never survives a restart.
type Manager struct {
	mu  sync.Mutex
	now func() time.Time

	source Source
	fade   time.Duration

	triggered map[string]struct{}

	current  *Sequence
	msgIdx   int
	state    playState
	deadline time.Time
}

// NewManager creates a sequence manager reading triggers from source.
func NewManager(cfg *config.SequencesConfig, source Source) *Manager {
	fade := time.Duration(cfg.FadeDuration)
	if fade <= 0 {
		fade = 500 * time.Millisecond
	}
	return &Manager{
		now:       time.Now,
		source:    source,
		fade:      fade,
		triggered: make(map[string]struct{}),
	}
}

// Update advances playback and checks triggers. It must run after the
// journey's own Update within the same tick, so both see one consistent
// distance value.
func (m *Manager) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.advance()
		return
	}

	if elapsed, ok := m.source.ElapsedTime(); ok {
		for i := range TimeSequences {
			seq := &TimeSequences[i]
			key := "time-" + seq.ID
			if _, done := m.triggered[key]; !done && elapsed >= seq.TriggerAfter {
				m.start(seq, key)
				return
			}
		}
	}

	distance := m.source.Distance()
	if distance < 0 {
		distance = -distance
	}
	for i := range DistanceSequences {
		seq := &DistanceSequences[i]
		key := "distance-" + seq.ID
		if _, done := m.triggered[key]; !done && distance >= seq.TriggerKm {
			m.start(seq, key)
			return
		}
	}
}

// advance walks the message state machine past any expired deadlines.
// Deadlines chain off each other, so a slow tick catches up cleanly.
// Callers hold the lock.
func (m *Manager) advance() {
	now := m.now()
	for m.current != nil && !now.Before(m.deadline) {
		switch m.state {
		case stateShowing:
			m.state = stateFading
			m.deadline = m.deadline.Add(m.fade)
		case stateFading:
			m.msgIdx++
			if m.msgIdx >= len(m.current.Messages) {
				m.finish()
				return
			}
			m.state = stateShowing
			m.deadline = m.deadline.Add(m.current.Messages[m.msgIdx].Duration)
		}
	}
}

// start begins playback of a sequence and marks it triggered. Callers
// hold the lock.
func (m *Manager) start(seq *Sequence, key string) {
	slog.Info("Starting sequence", "id", seq.ID)
	m.triggered[key] = struct{}{}
	m.current = seq
	m.msgIdx = 0
	m.state = stateShowing
	m.deadline = m.now().Add(seq.Messages[0].Duration)
}

// finish returns to idle. Callers hold the lock.
func (m *Manager) finish() {
	m.current = nil
	m.msgIdx = 0
	m.state = stateIdle
	m.deadline = time.Time{}
}

// Skip abandons the active sequence. It stays marked as triggered.
func (m *Manager) Skip() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	slog.Info("Skipping sequence", "id", m.current.ID)
	m.finish()
}

// Current returns the visible message, or false when idle.
func (m *Manager) Current() (Display, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Display{}, false
	}
	return Display{
		SequenceID: m.current.ID,
		Text:       m.current.Messages[m.msgIdx].Text,
		Index:      m.msgIdx,
		Total:      len(m.current.Messages),
		Fading:     m.state == stateFading,
		Skippable:  m.current.Skippable,
	}, true
}

// SaveState returns the triggered identifiers, sorted for a stable
// serialized form.
func (m *Manager) SaveState() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.triggered))
	for k := range m.triggered {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RestoreState replaces the triggered set. Already-triggered sequences
// will not replay.
func (m *Manager) RestoreState(triggered []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.triggered = make(map[string]struct{}, len(triggered))
	for _, k := range triggered {
		m.triggered[k] = struct{}{}
	}
	if len(triggered) > 0 {
		slog.Info("Restored triggered sequences", "count", len(triggered))
	}
}

// Reset clears all state for a fresh journey.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggered = make(map[string]struct{})
	m.finish()
}
