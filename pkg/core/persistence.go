package core

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"watego/pkg/config"
	"watego/pkg/journey"
	"watego/pkg/sequence"
	"watego/pkg/store"
)

// stateKey is the persistent_state row holding the journey record.
const stateKey = "journey"

// JourneyPersistenceJob periodically saves the journey record, skipping
// writes when nothing changed since the last save.
type JourneyPersistenceJob struct {
	st       store.StateStore
	j        *journey.Journey
	seqMgr   *sequence.Manager
	interval time.Duration

	// lastSaved holds the previous record serialized with its save
	// timestamp zeroed, so the dirty check ignores the clock.
	lastSaved []byte
}

// NewJourneyPersistenceJob creates a persistence job.
func NewJourneyPersistenceJob(cfg *config.PersistenceConfig, st store.StateStore, j *journey.Journey, seqMgr *sequence.Manager) *JourneyPersistenceJob {
	interval := time.Duration(cfg.AutosaveInterval)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &JourneyPersistenceJob{
		st:       st,
		j:        j,
		seqMgr:   seqMgr,
		interval: interval,
	}
}

// Start begins the autosave loop.
func (p *JourneyPersistenceJob) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)

	slog.Info("Persistence: journey autosave loop started", "interval", p.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.checkAndSave(ctx)
			}
		}
	}()
}

// SaveNow forces a write regardless of the dirty check, for shutdown.
func (p *JourneyPersistenceJob) SaveNow(ctx context.Context) error {
	data, stripped, err := p.serialize()
	if err != nil {
		return err
	}
	if err := p.st.SetState(ctx, stateKey, string(data)); err != nil {
		return err
	}
	p.lastSaved = stripped
	slog.Info("Persistence: journey saved", "size", len(data))
	return nil
}

// Clear removes the saved record, for a journey restart.
func (p *JourneyPersistenceJob) Clear(ctx context.Context) error {
	p.lastSaved = nil
	return p.st.DeleteState(ctx, stateKey)
}

func (p *JourneyPersistenceJob) checkAndSave(ctx context.Context) {
	data, stripped, err := p.serialize()
	if err != nil {
		slog.Error("Persistence: failed to serialize journey", "error", err)
		return
	}

	if bytes.Equal(stripped, p.lastSaved) {
		return // No change
	}

	if err := p.st.SetState(ctx, stateKey, string(data)); err != nil {
		slog.Error("Persistence: failed to save journey", "error", err)
		return
	}
	p.lastSaved = stripped
	slog.Debug("Persistence: journey saved", "size", len(data))
}

// serialize returns the record payload to store and a copy with the save
// timestamp zeroed that feeds the dirty check.
func (p *JourneyPersistenceJob) serialize() (data, stripped []byte, err error) {
	rec := p.j.Snapshot(p.seqMgr.SaveState())
	data, err = json.Marshal(rec)
	if err != nil {
		return nil, nil, err
	}
	rec.LastSaveTime = 0
	stripped, err = json.Marshal(rec)
	if err != nil {
		return nil, nil, err
	}
	return data, stripped, nil
}
