package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watego/pkg/config"
	"watego/pkg/geo"
	"watego/pkg/model"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestJourney(t *testing.T) (*Journey, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)}

	cfg := config.DefaultConfig().Journey
	j := New(&cfg)
	j.now = clock.now
	j.startLocation = EquatorialLocations[0] // deterministic
	j.virtualTime = clock.t
	j.lastUpdate = clock.t
	j.lastSampleAt = clock.t
	return j, clock
}

func tick(j *Journey, clock *fakeClock, n int) {
	for i := 0; i < n; i++ {
		clock.advance(time.Second / assumedFPS)
		j.Update()
	}
}

func TestCruiseControlAdvance(t *testing.T) {
	j, clock := newTestJourney(t)
	require.Equal(t, model.TravelCruiseControl, j.TravelMode())
	require.Equal(t, "Walking", j.CurrentCruiseMode().Name)

	// One simulated minute of walking at 5 km/h.
	tick(j, clock, 60*assumedFPS)
	assert.InDelta(t, 5.0/60, j.Distance(), 1e-9)
}

func TestCruiseSpeedIsIndependentOfResidualVelocity(t *testing.T) {
	j, clock := newTestJourney(t)
	j.SetTravelMode(model.TravelFreeScroll)
	j.Scroll(-30)
	j.SetTravelMode(model.TravelCruiseControl)

	tick(j, clock, 1)
	assert.InDelta(t, CruiseModes[0].SpeedKmh/(assumedFPS*3600), j.Distance(), 1e-12)
}

func TestFrictionDecaysToRest(t *testing.T) {
	j, clock := newTestJourney(t)
	j.SetTravelMode(model.TravelFreeScroll)
	j.Scroll(-20)
	require.InDelta(t, 10.0, velocityOf(j), 1e-9)

	tick(j, clock, 200)

	assert.Zero(t, velocityOf(j))
	before := j.Distance()
	tick(j, clock, 10)
	assert.Equal(t, before, j.Distance())
}

func TestDragClampsVelocity(t *testing.T) {
	j, _ := newTestJourney(t)
	j.SetTravelMode(model.TravelFreeScroll)

	j.StartDrag(0)
	j.Drag(100)
	assert.Equal(t, maxVelocity, velocityOf(j))

	j.Drag(100 - 300)
	assert.Equal(t, -maxVelocity, velocityOf(j))

	j.EndDrag()
	j.Drag(500) // ignored outside a drag
	assert.Equal(t, -maxVelocity, velocityOf(j))
}

func TestScrollAccumulatesAndClamps(t *testing.T) {
	j, _ := newTestJourney(t)
	j.SetTravelMode(model.TravelFreeScroll)

	j.Scroll(-10)
	assert.InDelta(t, 5.0, velocityOf(j), 1e-9)
	j.Scroll(-10)
	assert.InDelta(t, 10.0, velocityOf(j), 1e-9)
	j.Scroll(-100)
	assert.Equal(t, maxVelocity, velocityOf(j))
}

func TestThrottleCapsImpliedSpeed(t *testing.T) {
	j, clock := newTestJourney(t)
	j.SetTravelMode(model.TravelFreeScroll)

	level := j.CycleThrottle()
	require.Equal(t, "25 km/h", level.Label)

	// Hold a drag at max velocity so friction stays out of the picture.
	j.StartDrag(0)
	j.Drag(100)

	tick(j, clock, 1)

	// The positional increment is capped to 25 km/h at the reference
	// frame rate, far below the raw drag velocity.
	assert.InDelta(t, 25.0/(assumedFPS*3600), j.Distance(), 1e-12)
}

func TestThrottleUnlimitedPassesRawVelocity(t *testing.T) {
	j, clock := newTestJourney(t)
	j.SetTravelMode(model.TravelFreeScroll)
	require.Nil(t, j.CurrentThrottle().MaxSpeedKmh)

	j.StartDrag(0)
	j.Drag(100)
	tick(j, clock, 1)

	assert.InDelta(t, maxVelocity/ScalePxPerKm, j.Distance(), 1e-12)
}

func TestVirtualTimeTracksWallClock(t *testing.T) {
	j, clock := newTestJourney(t)
	start := j.VirtualTime()

	tick(j, clock, 60)
	assert.Equal(t, time.Second, j.VirtualTime().Sub(start))
}

func TestVirtualTimePauseAndResume(t *testing.T) {
	j, clock := newTestJourney(t)
	start := j.VirtualTime()

	j.Pause()
	tick(j, clock, 120)
	assert.Equal(t, start, j.VirtualTime(), "paused time must not advance")

	j.Resume()
	tick(j, clock, 60)
	assert.Equal(t, time.Second, j.VirtualTime().Sub(start), "no jump over the paused span")
}

func TestTimeScaleMultipliesVirtualTime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)}
	cfg := config.DefaultConfig().Journey
	cfg.TimeScale = 60
	j := New(&cfg)
	j.now = clock.now
	j.virtualTime = clock.t
	j.lastUpdate = clock.t

	start := j.VirtualTime()
	tick(j, clock, 60)
	assert.Equal(t, time.Minute, j.VirtualTime().Sub(start))
}

func TestSpeedSampler(t *testing.T) {
	j, clock := newTestJourney(t)

	j.mu.Lock()
	j.distanceKm = 0
	j.mu.Unlock()
	j.Speed() // prime the sampler

	clock.advance(time.Hour)
	j.mu.Lock()
	j.distanceKm = 10
	j.mu.Unlock()

	assert.InDelta(t, 10.0, j.Speed(), 1e-9)

	// Second call within the same instant.
	assert.Zero(t, j.Speed())
}

func TestElapsedTimeRequiresStart(t *testing.T) {
	j, clock := newTestJourney(t)

	_, ok := j.ElapsedTime()
	assert.False(t, ok)

	j.Start()
	clock.advance(90 * time.Minute)
	elapsed, ok := j.ElapsedTime()
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, elapsed)

	// Start is idempotent.
	startedAt := j.startedAt
	j.Start()
	assert.Equal(t, startedAt, j.startedAt)
}

func TestTimeRemaining(t *testing.T) {
	j, _ := newTestJourney(t)

	remaining, ok := j.TimeRemaining()
	require.True(t, ok)
	wantHours := geo.EarthCircumferenceKm / CruiseModes[0].SpeedKmh
	assert.InDelta(t, wantHours, remaining.Hours(), 1e-6)

	j.SetTravelMode(model.TravelFreeScroll)
	_, ok = j.TimeRemaining()
	assert.False(t, ok)
}

func TestVisibleMarkers(t *testing.T) {
	j, _ := newTestJourney(t)
	markers := j.VisibleMarkers(400) // +-40 km around the origin

	require.NotEmpty(t, markers)
	assert.Equal(t, -40.0, markers[0].Km)
	assert.Equal(t, 40.0, markers[len(markers)-1].Km)

	byKm := map[float64]model.Marker{}
	for _, m := range markers {
		byKm[m.Km] = m
	}
	assert.Equal(t, model.MarkerOrigin, byKm[0].Type)
	assert.Equal(t, "0", byKm[0].Label)
	assert.Equal(t, model.MarkerMinor, byKm[10].Type)
	assert.Empty(t, byKm[10].Label)
}

func TestVisibleMarkersMajorLabels(t *testing.T) {
	j, _ := newTestJourney(t)
	j.mu.Lock()
	j.distanceKm = 20000
	j.mu.Unlock()

	markers := j.VisibleMarkers(500)
	var major *model.Marker
	for i := range markers {
		if markers[i].Km == 20000 {
			major = &markers[i]
		}
	}
	require.NotNil(t, major)
	assert.Equal(t, model.MarkerMajor, major.Type)
	assert.Equal(t, "20,000", major.Label)
	assert.Equal(t, 200000.0, major.Offset)
}

func TestWrapPolicyNoneGrowsUnbounded(t *testing.T) {
	j, clock := newTestJourney(t)
	j.mu.Lock()
	j.distanceKm = geo.EarthCircumferenceKm/2 - 0.0001
	j.cruiseIdx = 9 // Voyager I
	j.mu.Unlock()

	tick(j, clock, 100)
	assert.Greater(t, j.Distance(), geo.EarthCircumferenceKm/2)
}

func TestWrapPolicyReflect(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)}
	cfg := config.DefaultConfig().Journey
	cfg.Wrap = config.WrapReflect
	j := New(&cfg)
	j.now = clock.now
	j.lastUpdate = clock.t

	half := geo.EarthCircumferenceKm / 2
	j.mu.Lock()
	j.distanceKm = half + 10
	j.mu.Unlock()

	tick(j, clock, 1)
	assert.InDelta(t, half-10, j.Distance(), 0.001)
	assert.Zero(t, velocityOf(j))
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	j, clock := newTestJourney(t)
	j.Start()
	j.SetTravelMode(model.TravelFreeScroll)
	j.CycleThrottle()
	j.mu.Lock()
	j.distanceKm = 1234.5
	j.mu.Unlock()

	rec := j.Snapshot([]string{"time-onboarding"})
	assert.Equal(t, model.RecordVersion, rec.Version)
	assert.Equal(t, []string{"time-onboarding"}, rec.TriggeredSequences)
	require.NotNil(t, rec.JourneyStartTime)

	cfg := config.DefaultConfig().Journey
	restored := New(&cfg)
	restored.now = clock.now
	info := restored.Restore(rec)

	assert.Nil(t, info, "no catch-up outside cruise control")
	assert.Equal(t, j.ID(), restored.ID())
	assert.Equal(t, 1234.5, restored.Distance())
	assert.Equal(t, model.TravelFreeScroll, restored.TravelMode())
	assert.Equal(t, 1, restored.CurrentThrottle().Level)
	assert.Equal(t, j.StartLocation(), restored.StartLocation())
	assert.True(t, restored.Started())
	assert.False(t, restored.WaypointsReady())
}

func TestRestoreCreditsAwayDistance(t *testing.T) {
	j, clock := newTestJourney(t)
	rec := j.Snapshot(nil)

	// Two hours pass while the process is down, walking at 5 km/h.
	clock.advance(2 * time.Hour)

	cfg := config.DefaultConfig().Journey
	restored := New(&cfg)
	restored.now = clock.now
	info := restored.Restore(rec)

	require.NotNil(t, info)
	assert.Equal(t, 2*time.Hour, info.TimeAway)
	assert.InDelta(t, 10.0, info.DistanceTraveledKm, 1e-9)
	assert.InDelta(t, 10.0, restored.Distance(), 1e-9)
}

func TestRestoreClampsCorruptIndices(t *testing.T) {
	j, clock := newTestJourney(t)
	rec := j.Snapshot(nil)
	rec.CruiseModeIndex = 99
	rec.ThrottleIndex = -3
	rec.TravelMode = "teleport"

	cfg := config.DefaultConfig().Journey
	restored := New(&cfg)
	restored.now = clock.now
	restored.Restore(rec)

	assert.Equal(t, CruiseModes[0], restored.CurrentCruiseMode())
	assert.Equal(t, ThrottleLevels[0], restored.CurrentThrottle())
	assert.Equal(t, model.TravelCruiseControl, restored.TravelMode())
}

func velocityOf(j *Journey) float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.velocity
}

func TestFormatKm(t *testing.T) {
	assert.Equal(t, "0", formatKm(0))
	assert.Equal(t, "100", formatKm(100))
	assert.Equal(t, "1,000", formatKm(1000))
	assert.Equal(t, "20,020", formatKm(20020.72))
	assert.Equal(t, "1,234,567", formatKm(1234567))
}

func TestVisibleMarkersSpanWidth(t *testing.T) {
	j, _ := newTestJourney(t)
	j.mu.Lock()
	j.distanceKm = 55
	j.mu.Unlock()

	markers := j.VisibleMarkers(1000) // +-100 km
	first, last := markers[0].Km, markers[len(markers)-1].Km
	assert.LessOrEqual(t, first, 55.0-100)
	assert.GreaterOrEqual(t, last, 55.0+100)
	for i := 1; i < len(markers); i++ {
		assert.InDelta(t, 10, markers[i].Km-markers[i-1].Km, 1e-9)
	}
}
