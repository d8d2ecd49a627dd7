package journey

import (
	"log/slog"
	"time"

	"watego/pkg/model"
)

// ReturnInfo summarizes the distance covered while the process was down,
// credited on restore when the journey was left in cruise control.
type ReturnInfo struct {
	TimeAway           time.Duration `json:"time_away"`
	DistanceTraveledKm float64       `json:"distance_traveled_km"`
}

// Snapshot captures the persistable journey state. triggered is the
// sequence manager's triggered-identifier set, stored alongside so a
// restore does not replay old narration.
func (j *Journey) Snapshot(triggered []string) *model.JourneyRecord {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rec := &model.JourneyRecord{
		ID:                 j.id,
		Distance:           j.distanceKm,
		StartLocation:      j.startLocation,
		Bearing:            j.bearing,
		TravelMode:         j.travelMode,
		CruiseModeIndex:    j.cruiseIdx,
		ThrottleIndex:      j.throttleIdx,
		LastSaveTime:       j.now().UnixMilli(),
		VirtualTime:        j.virtualTime.UnixMilli(),
		TriggeredSequences: triggered,
		Version:            model.RecordVersion,
	}
	if !j.startedAt.IsZero() {
		ms := j.startedAt.UnixMilli()
		rec.JourneyStartTime = &ms
	}
	if rec.TriggeredSequences == nil {
		rec.TriggeredSequences = []string{}
	}
	return rec
}

// Restore applies a saved record. When the journey was left cruising, the
// distance it would have covered while the process was down is credited
// and reported back. Waypoints are invalidated and must be regenerated.
func (j *Journey) Restore(rec *model.JourneyRecord) *ReturnInfo {
	j.mu.Lock()
	defer j.mu.Unlock()

	if rec.ID != "" {
		j.id = rec.ID
	}
	j.startLocation = rec.StartLocation
	j.bearing = rec.Bearing
	j.distanceKm = rec.Distance

	j.travelMode = rec.TravelMode
	if !j.travelMode.Valid() {
		j.travelMode = model.TravelCruiseControl
	}
	j.cruiseIdx = clampIndex(rec.CruiseModeIndex, len(CruiseModes))
	j.throttleIdx = clampIndex(rec.ThrottleIndex, len(ThrottleLevels))

	now := j.now()
	if rec.VirtualTime != 0 {
		j.virtualTime = time.UnixMilli(rec.VirtualTime)
	} else {
		j.virtualTime = now
	}
	j.lastUpdate = now
	j.lastSampleKm = j.distanceKm
	j.lastSampleAt = now
	j.lastSpeedKmh = 0

	if rec.JourneyStartTime != nil {
		j.startedAt = time.UnixMilli(*rec.JourneyStartTime)
	} else {
		j.startedAt = time.Time{}
	}

	j.velocity = 0
	j.dragging = false
	j.waypoints = nil
	j.waypointsReady = false

	var info *ReturnInfo
	if j.travelMode == model.TravelCruiseControl && rec.LastSaveTime > 0 {
		away := now.Sub(time.UnixMilli(rec.LastSaveTime))
		if away > 0 {
			travelled := CruiseModes[j.cruiseIdx].SpeedKmh * away.Hours()
			j.distanceKm += travelled
			info = &ReturnInfo{TimeAway: away, DistanceTraveledKm: travelled}
			slog.Info("Credited distance travelled while away",
				"away", away, "km", travelled, "mode", CruiseModes[j.cruiseIdx].Name)
		}
	}

	slog.Info("Journey restored", "id", j.id, "distance_km", j.distanceKm, "mode", j.travelMode)
	return info
}

func clampIndex(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return i
}
