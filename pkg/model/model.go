package model

import "time"

// TravelMode selects how the journey advances each tick.
type TravelMode string

const (
	// TravelFreeScroll drives distance from drag/scroll input with friction decay.
	TravelFreeScroll TravelMode = "freeScroll"
	// TravelCruiseControl holds a constant nominal speed from the cruise table.
	TravelCruiseControl TravelMode = "cruiseControl"
)

// Valid reports whether m is a known travel mode.
func (m TravelMode) Valid() bool {
	return m == TravelFreeScroll || m == TravelCruiseControl
}

// Location is a fixed equatorial reference point a journey can start from.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// CruiseMode is one entry of the cruise control speed table.
type CruiseMode struct {
	Name     string  `json:"name"`
	SpeedKmh float64 `json:"speed_kmh"`
	Decimals int     `json:"decimals"` // display precision for the speed value
	Icon     string  `json:"icon"`
}

// ThrottleLevel caps the implied free-scroll speed.
// MaxSpeedKmh nil means unlimited.
type ThrottleLevel struct {
	Level       int      `json:"level"`
	MaxSpeedKmh *float64 `json:"max_speed_kmh"`
	Label       string   `json:"label"`
}

// Terrain classification values.
const (
	TerrainLand    = "Land"
	TerrainOcean   = "Ocean"
	TerrainUnknown = "Unknown"
)

// Waypoint is one sampled point of the journey's route, every 100 km
// from the origin along the bearing. Immutable once generated.
type Waypoint struct {
	Km      float64 `json:"km"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	IsLand  bool    `json:"is_land"`
	Terrain string  `json:"terrain"` // "Land", "Ocean" or "Unknown"
}

// GeoInfo is the terrain service's classification of a coordinate.
type GeoInfo struct {
	IsLand  bool    `json:"is_land"`
	Terrain string  `json:"terrain"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// MarkerType classifies a distance marker on the strip.
type MarkerType string

const (
	MarkerOrigin    MarkerType = "origin"
	MarkerAntipodal MarkerType = "antipodal"
	MarkerMajor     MarkerType = "major"   // every 1000 km
	MarkerHundred   MarkerType = "hundred" // every 100 km
	MarkerMinor     MarkerType = "minor"   // every 10 km
)

// TickState is one tick's consistent view of the journey, produced by
// the scheduler after all per-tick updates and broadcast to stream
// consumers.
type TickState struct {
	Distance    float64    `json:"distance"`
	OffsetPx    float64    `json:"offset_px"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	SpeedKmh    float64    `json:"speed_kmh"`
	VirtualTime time.Time  `json:"virtual_time"`
	Phase       string     `json:"phase"`
	TravelMode  TravelMode `json:"travel_mode"`
	Paused      bool       `json:"paused"`
}

// SolarTransition describes the next upcoming light phase change along
// the route. KmAway is zero when standing still.
type SolarTransition struct {
	Phase         string        `json:"phase"`
	In            time.Duration `json:"in"`
	KmAway        float64       `json:"km_away,omitempty"`
	StandingStill bool          `json:"standing_still,omitempty"`
}

// Marker is one distance marker visible in the viewport.
// Label is empty except for origin, antipodal and major markers.
type Marker struct {
	Km     float64    `json:"km"`
	Offset float64    `json:"offset"` // pixels from origin
	Type   MarkerType `json:"type"`
	Label  string     `json:"label,omitempty"`
}
