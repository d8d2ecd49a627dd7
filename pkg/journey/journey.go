// Package journey holds the simulation state: travelled distance under
// free scroll physics or cruise control, virtual time, and everything
// derived from them.
package journey

import (
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"watego/pkg/config"
	"watego/pkg/geo"
	"watego/pkg/model"
	"watego/pkg/solar"
)

const (
	// ScalePxPerKm maps the travelled distance onto the scrolling strip.
	ScalePxPerKm = 10.0

	// maxVelocity caps drag and scroll input, in pixels per tick.
	maxVelocity = 15.0

	// friction decays free scroll velocity every tick outside a drag.
	friction = 0.92

	// scrollSensitivity converts wheel input to velocity.
	scrollSensitivity = 0.5

	// assumedFPS is the reference tick rate the physics are tuned for.
	// Cruise speeds and throttle caps are computed against it rather
	// than the actual tick interval.
	assumedFPS = 60

	// Velocities below this snap to zero so the strip comes to rest.
	restThreshold = 0.1
)

// Journey is the complete state of one trip around the equator.
// All methods are safe for concurrent use.
type Journey struct {
	mu  sync.RWMutex
	now func() time.Time

	id            string
	startLocation model.Location
	bearing       float64
	travelMode    model.TravelMode
	cruiseIdx     int
	throttleIdx   int

	distanceKm float64
	velocity   float64 // pixels per tick
	dragging   bool
	lastDragX  float64

	virtualTime time.Time
	lastUpdate  time.Time
	timeScale   float64
	paused      bool

	// Zero until Start is called.
	startedAt time.Time

	// Speed sampler state.
	lastSampleKm float64
	lastSampleAt time.Time
	lastSpeedKmh float64

	wrap config.WrapPolicy

	waypointInterval float64
	waypointPolicy   config.WaypointPolicy
	waypoints        []model.Waypoint
	waypointsReady   bool
}

// New creates a fresh journey at a random equatorial start, heading due
// east in cruise control at walking pace.
func New(cfg *config.JourneyConfig) *Journey {
	now := time.Now
	start := EquatorialLocations[rand.Intn(len(EquatorialLocations))]

	j := &Journey{
		now:              now,
		id:               uuid.NewString(),
		startLocation:    start,
		bearing:          90,
		travelMode:       model.TravelCruiseControl,
		timeScale:        cfg.TimeScale,
		wrap:             cfg.Wrap,
		waypointInterval: cfg.WaypointIntervalKm,
		waypointPolicy:   cfg.WaypointPolicy,
		virtualTime:      now(),
		lastUpdate:       now(),
		lastSampleAt:     now(),
	}
	if j.timeScale == 0 {
		j.timeScale = 1
	}
	if j.waypointInterval <= 0 {
		j.waypointInterval = 100
	}
	slog.Info("New journey", "id", j.id, "start", start.Name, "bearing", j.bearing)
	return j
}

// Reset discards all progress and begins a fresh journey at a new random
// start. Waypoints must be regenerated afterwards.
func (j *Journey) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	start := EquatorialLocations[rand.Intn(len(EquatorialLocations))]

	j.id = uuid.NewString()
	j.startLocation = start
	j.bearing = 90
	j.travelMode = model.TravelCruiseControl
	j.cruiseIdx = 0
	j.throttleIdx = 0
	j.distanceKm = 0
	j.velocity = 0
	j.dragging = false
	j.virtualTime = now
	j.lastUpdate = now
	j.paused = false
	j.startedAt = time.Time{}
	j.lastSampleKm = 0
	j.lastSampleAt = now
	j.lastSpeedKmh = 0
	j.waypoints = nil
	j.waypointsReady = false

	slog.Info("Journey reset", "id", j.id, "start", start.Name)
}

// ID returns the journey's identifier.
func (j *Journey) ID() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.id
}

// Update advances virtual time and applies one tick of movement. It must
// be called once per tick, before anything reads this tick's state.
func (j *Journey) Update() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.advanceVirtualTime()

	if j.travelMode == model.TravelCruiseControl {
		// Constant speed, unaffected by friction or drag.
		kmPerTick := CruiseModes[j.cruiseIdx].SpeedKmh / (assumedFPS * 3600)
		j.velocity = kmPerTick * ScalePxPerKm
	} else if !j.dragging {
		j.velocity *= friction
		if math.Abs(j.velocity) < restThreshold {
			j.velocity = 0
		}
	}

	deltaPixels := j.velocity

	if j.travelMode == model.TravelFreeScroll {
		if limit := ThrottleLevels[j.throttleIdx].MaxSpeedKmh; limit != nil {
			impliedKmh := math.Abs(deltaPixels/ScalePxPerKm) * assumedFPS * 3600
			if impliedKmh > *limit {
				deltaPixels *= *limit / impliedKmh
			}
		}
	}

	j.distanceKm += deltaPixels / ScalePxPerKm
	j.applyWrap()
}

// advanceVirtualTime moves virtual time forward by the scaled wall-clock
// delta. Callers hold the lock.
func (j *Journey) advanceVirtualTime() {
	now := j.now()
	if j.paused {
		j.lastUpdate = now
		return
	}
	delta := now.Sub(j.lastUpdate)
	j.lastUpdate = now
	j.virtualTime = j.virtualTime.Add(time.Duration(float64(delta) * j.timeScale))
}

// applyWrap reflects the distance at the antipodal point when the reflect
// policy is active. Callers hold the lock.
func (j *Journey) applyWrap() {
	if j.wrap != config.WrapReflect {
		return
	}
	half := geo.EarthCircumferenceKm / 2
	if j.distanceKm > half {
		j.distanceKm = half - (j.distanceKm - half)
		j.velocity = 0
	} else if j.distanceKm < -half {
		j.distanceKm = -half - (j.distanceKm + half)
		j.velocity = 0
	}
}

// StartDrag begins a drag gesture at pixel position x.
func (j *Journey) StartDrag(x float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.dragging = true
	j.lastDragX = x
	j.velocity = 0
}

// Drag updates an active drag gesture. Velocity follows the pointer
// delta, clamped to the velocity cap.
func (j *Journey) Drag(x float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.dragging {
		return
	}
	delta := x - j.lastDragX
	j.velocity = clamp(delta, -maxVelocity, maxVelocity)
	j.lastDragX = x
}

// EndDrag finishes a drag gesture. Velocity persists and decays under
// friction.
func (j *Journey) EndDrag() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.dragging = false
}

// Scroll applies wheel input to the velocity.
func (j *Journey) Scroll(deltaY float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.velocity = clamp(j.velocity+(-deltaY*scrollSensitivity), -maxVelocity, maxVelocity)
}

// Distance returns the signed travelled distance in km.
func (j *Journey) Distance() float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.distanceKm
}

// Offset returns the strip offset in pixels.
func (j *Journey) Offset() float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.distanceKm * ScalePxPerKm
}

// CurrentPosition projects the travelled distance along the bearing from
// the start location.
func (j *Journey) CurrentPosition() geo.Point {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.positionAt(j.distanceKm)
}

// positionAt projects a distance along the journey's great circle.
// Callers hold the lock.
func (j *Journey) positionAt(km float64) geo.Point {
	return geo.DestinationPoint(geo.Point{Lat: j.startLocation.Lat, Lng: j.startLocation.Lng}, j.bearing, km)
}

// StartLocation returns where the journey began.
func (j *Journey) StartLocation() model.Location {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.startLocation
}

// Bearing returns the journey's heading in degrees.
func (j *Journey) Bearing() float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.bearing
}

// Speed estimates the current speed in km/h from the distance covered
// since the previous call. It is a sampler that advances its own state,
// so only the tick loop should call it; everyone else reads LastSpeed.
// Returns 0 when called twice within the same instant.
func (j *Journey) Speed() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	deltaSeconds := now.Sub(j.lastSampleAt).Seconds()
	deltaKm := math.Abs(j.distanceKm - j.lastSampleKm)

	j.lastSampleKm = j.distanceKm
	j.lastSampleAt = now

	if deltaSeconds == 0 {
		return 0
	}
	j.lastSpeedKmh = deltaKm / deltaSeconds * 3600
	return j.lastSpeedKmh
}

// LastSpeed returns the most recent Speed sample without advancing it.
func (j *Journey) LastSpeed() float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.lastSpeedKmh
}

// TravelMode returns the active travel mode.
func (j *Journey) TravelMode() model.TravelMode {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.travelMode
}

// SetTravelMode switches between free scroll and cruise control.
// Entering cruise control resets any residual scroll velocity.
func (j *Journey) SetTravelMode(mode model.TravelMode) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.travelMode = mode
	if mode == model.TravelCruiseControl {
		j.velocity = 0
	}
}

// CycleCruiseMode advances to the next cruise table entry.
func (j *Journey) CycleCruiseMode() model.CruiseMode {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cruiseIdx = (j.cruiseIdx + 1) % len(CruiseModes)
	return CruiseModes[j.cruiseIdx]
}

// CurrentCruiseMode returns the active cruise table entry.
func (j *Journey) CurrentCruiseMode() model.CruiseMode {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return CruiseModes[j.cruiseIdx]
}

// CycleThrottle advances to the next throttle level.
func (j *Journey) CycleThrottle() model.ThrottleLevel {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.throttleIdx = (j.throttleIdx + 1) % len(ThrottleLevels)
	return ThrottleLevels[j.throttleIdx]
}

// CurrentThrottle returns the active throttle level.
func (j *Journey) CurrentThrottle() model.ThrottleLevel {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return ThrottleLevels[j.throttleIdx]
}

// VirtualTime returns the journey's current virtual instant.
func (j *Journey) VirtualTime() time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.virtualTime
}

// Pause suspends virtual time. Movement input keeps working.
func (j *Journey) Pause() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.paused = true
	slog.Info("Journey paused", "id", j.id)
}

// Resume restarts virtual time without a jump over the paused span.
func (j *Journey) Resume() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.paused = false
	j.lastUpdate = j.now()
	slog.Info("Journey resumed", "id", j.id)
}

// Paused reports whether virtual time is suspended.
func (j *Journey) Paused() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.paused
}

// Start marks the journey as begun. Subsequent calls are no-ops.
func (j *Journey) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.startedAt.IsZero() {
		j.startedAt = j.now()
		slog.Info("Journey started", "id", j.id, "at", j.startedAt)
	}
}

// Started reports whether Start has been called.
func (j *Journey) Started() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return !j.startedAt.IsZero()
}

// ElapsedTime returns the wall-clock time since Start, or false if the
// journey has not begun.
func (j *Journey) ElapsedTime() (time.Duration, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.startedAt.IsZero() {
		return 0, false
	}
	return j.now().Sub(j.startedAt), true
}

// TimeRemaining estimates how long until the circumnavigation completes
// at the current cruise speed. Free scroll mode has no meaningful
// estimate and returns false.
func (j *Journey) TimeRemaining() (time.Duration, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.travelMode != model.TravelCruiseControl {
		return 0, false
	}
	remainingKm := geo.EarthCircumferenceKm - math.Abs(j.distanceKm)
	hours := remainingKm / CruiseModes[j.cruiseIdx].SpeedKmh
	return time.Duration(hours * float64(time.Hour)), true
}

// VisibleMarkers returns the distance markers within one viewport width
// either side of the current position, spaced every 10 km.
func (j *Journey) VisibleMarkers(viewportWidth float64) []model.Marker {
	j.mu.RLock()
	defer j.mu.RUnlock()

	viewportKm := viewportWidth / ScalePxPerKm
	start := math.Floor((j.distanceKm-viewportKm)/10) * 10
	end := math.Ceil((j.distanceKm+viewportKm)/10) * 10

	var markers []model.Marker
	for km := start; km <= end; km += 10 {
		m := model.Marker{Km: km, Offset: km * ScalePxPerKm}

		antipodal := math.Abs(math.Abs(km)-geo.EarthCircumferenceKm/2) < 0.1
		switch {
		case km == 0:
			m.Type = model.MarkerOrigin
		case antipodal:
			m.Type = model.MarkerAntipodal
		case math.Mod(km, 1000) == 0:
			m.Type = model.MarkerMajor
		case math.Mod(km, 100) == 0:
			m.Type = model.MarkerHundred
		default:
			m.Type = model.MarkerMinor
		}

		if m.Type == model.MarkerOrigin || m.Type == model.MarkerAntipodal || m.Type == model.MarkerMajor {
			m.Label = formatKm(math.Abs(km))
		}
		markers = append(markers, m)
	}
	return markers
}

// NextSolarTransition finds the next light phase change along the route,
// simulating forward at the cruise speed in one hour steps for at most
// 48 hours. Standing still falls back to the phase chain at the current
// position. Only meaningful in cruise control.
func (j *Journey) NextSolarTransition() (model.SolarTransition, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.travelMode != model.TravelCruiseControl {
		return model.SolarTransition{}, false
	}

	speed := CruiseModes[j.cruiseIdx].SpeedKmh
	pos := j.positionAt(j.distanceKm)

	if speed < 0.1 {
		phase, when, ok := solar.NextEvent(pos.Lat, pos.Lng, j.virtualTime)
		if !ok {
			return model.SolarTransition{}, false
		}
		return model.SolarTransition{
			Phase:         string(phase),
			In:            when.Sub(j.virtualTime),
			StandingStill: true,
		}, true
	}

	current := solar.PhaseAt(pos.Lat, pos.Lng, j.virtualTime)
	simKm := j.distanceKm
	simTime := j.virtualTime

	for step := 0; step < 48; step++ {
		simKm += speed
		simTime = simTime.Add(time.Hour)

		p := j.positionAt(simKm)
		if phase := solar.PhaseAt(p.Lat, p.Lng, simTime); phase != current {
			in := simTime.Sub(j.virtualTime)
			return model.SolarTransition{
				Phase:  string(phase),
				In:     in,
				KmAway: speed * in.Hours(),
			}, true
		}
	}
	return model.SolarTransition{}, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// formatKm renders a marker label with thousands separators.
func formatKm(km float64) string {
	n := int64(math.Abs(km))
	s := strconv.FormatInt(n, 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
