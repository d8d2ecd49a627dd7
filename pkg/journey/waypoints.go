package journey

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"watego/pkg/config"
	"watego/pkg/geo"
	"watego/pkg/model"
)

// GeoService classifies a coordinate as land or ocean.
type GeoService interface {
	Info(ctx context.Context, lat, lng float64) (model.GeoInfo, error)
}

// GenerateWaypoints samples the full circumference at the configured
// interval and classifies each point. It blocks for the duration of the
// batch and is meant to run in its own goroutine; ticks keep flowing and
// CurrentWaypointInfo returns nil until the batch lands.
//
// Lookup failures follow the waypoint policy: fail aborts the batch,
// unknown records the point with unclassified terrain and moves on.
func (j *Journey) GenerateWaypoints(ctx context.Context, svc GeoService) error {
	j.mu.RLock()
	gen := j.id
	start := j.startLocation
	bearing := j.bearing
	interval := j.waypointInterval
	policy := j.waypointPolicy
	j.mu.RUnlock()

	began := time.Now()
	var waypoints []model.Waypoint

	for km := 0.0; km <= geo.EarthCircumferenceKm; km += interval {
		if err := ctx.Err(); err != nil {
			return err
		}

		pos := geo.DestinationPoint(geo.Point{Lat: start.Lat, Lng: start.Lng}, bearing, km)

		info, err := svc.Info(ctx, pos.Lat, pos.Lng)
		if err != nil {
			if policy == config.WaypointFail {
				return fmt.Errorf("failed to classify waypoint at %.0f km: %w", km, err)
			}
			slog.Warn("Waypoint classification failed, continuing", "km", km, "error", err)
			info = model.GeoInfo{Terrain: model.TerrainUnknown, Lat: pos.Lat, Lng: pos.Lng}
		}

		waypoints = append(waypoints, model.Waypoint{
			Km:      km,
			Lat:     pos.Lat,
			Lng:     pos.Lng,
			IsLand:  info.IsLand,
			Terrain: info.Terrain,
		})
	}

	j.mu.Lock()
	if j.id != gen {
		// The journey was reset mid-batch. These waypoints are
		// projected from the old start and must not land.
		j.mu.Unlock()
		slog.Info("Discarding waypoint batch for superseded journey", "id", gen)
		return nil
	}
	j.waypoints = waypoints
	j.waypointsReady = true
	j.mu.Unlock()

	slog.Info("Waypoints generated", "count", len(waypoints), "took", time.Since(began))
	return nil
}

// WaypointsReady reports whether the waypoint batch has completed.
func (j *Journey) WaypointsReady() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.waypointsReady
}

// Waypoints returns a copy of the generated waypoints, or nil if the
// batch has not completed.
func (j *Journey) Waypoints() []model.Waypoint {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if !j.waypointsReady {
		return nil
	}
	out := make([]model.Waypoint, len(j.waypoints))
	copy(out, j.waypoints)
	return out
}

// CurrentWaypointInfo returns the waypoint nearest the current position,
// or nil while the batch is still generating.
func (j *Journey) CurrentWaypointInfo() *model.Waypoint {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.waypointsReady || len(j.waypoints) == 0 {
		return nil
	}
	idx := int(math.Round(math.Abs(j.distanceKm) / j.waypointInterval))
	if idx < 0 || idx >= len(j.waypoints) {
		idx = 0
	}
	wp := j.waypoints[idx]
	return &wp
}
