// Package core wires the simulation together: the tick loop that drives
// journey and sequence updates, periodic persistence, and restore on
// startup.
package core

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"watego/pkg/config"
	"watego/pkg/journey"
	"watego/pkg/model"
	"watego/pkg/sequence"
	"watego/pkg/solar"
)

// TickSink consumes the per-tick state, typically for streaming to
// connected clients. Update must not block.
type TickSink interface {
	Update(s *model.TickState)
}

// Scheduler runs the central heartbeat. Within one tick the journey is
// fully advanced before the sequence manager reads it, and the snapshot
// handed to sinks reflects that same tick.
type Scheduler struct {
	cfg    *config.Config
	j      *journey.Journey
	seqMgr *sequence.Manager
	sink   TickSink

	last atomic.Pointer[model.TickState]
}

// NewScheduler creates a Scheduler. sink may be nil.
func NewScheduler(cfg *config.Config, j *journey.Journey, seqMgr *sequence.Manager, sink TickSink) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		j:      j,
		seqMgr: seqMgr,
		sink:   sink,
	}
}

// Start runs the main loop. It blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	interval := time.Duration(s.cfg.Ticker.FrameLoop)
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	// Ordering matters: distance and virtual time advance first, the
	// sequence manager reads them second, and the snapshot captures the
	// result.
	s.j.Update()
	s.seqMgr.Update()

	pos := s.j.CurrentPosition()
	vt := s.j.VirtualTime()

	snap := &model.TickState{
		Distance:    s.j.Distance(),
		OffsetPx:    s.j.Offset(),
		Lat:         pos.Lat,
		Lng:         pos.Lng,
		SpeedKmh:    s.j.Speed(),
		VirtualTime: vt,
		Phase:       string(solar.PhaseAt(pos.Lat, pos.Lng, vt)),
		TravelMode:  s.j.TravelMode(),
		Paused:      s.j.Paused(),
	}
	s.last.Store(snap)

	if s.sink != nil {
		s.sink.Update(snap)
	}
}

// Snapshot returns the most recent tick's state, or nil before the first
// tick completes.
func (s *Scheduler) Snapshot() *model.TickState {
	return s.last.Load()
}
