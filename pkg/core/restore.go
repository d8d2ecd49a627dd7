package core

import (
	"context"
	"encoding/json"
	"log/slog"

	"watego/pkg/journey"
	"watego/pkg/model"
	"watego/pkg/sequence"
	"watego/pkg/store"
)

// RestoreJourney loads the saved journey record and applies it to the
// journey and sequence manager. It returns away-time info when a cruise
// journey was resumed, or nil when starting fresh. A corrupt record is
// logged and discarded rather than blocking startup.
func RestoreJourney(ctx context.Context, st store.StateStore, j *journey.Journey, seqMgr *sequence.Manager) *journey.ReturnInfo {
	raw, ok := st.GetState(ctx, stateKey)
	if !ok || raw == "" {
		slog.Info("Persistence: no saved journey, starting fresh")
		return nil
	}

	var rec model.JourneyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		slog.Warn("Persistence: saved journey is corrupt, starting fresh", "error", err)
		return nil
	}
	model.MigrateRecord(&rec)

	info := j.Restore(&rec)
	seqMgr.RestoreState(rec.TriggeredSequences)

	slog.Info("Persistence: journey restored",
		"distance_km", rec.Distance,
		"mode", rec.TravelMode,
		"sequences", len(rec.TriggeredSequences))
	return info
}
