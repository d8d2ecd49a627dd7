package geo

import (
	"math"
)

// EarthCircumferenceKm is the average of the polar and equatorial
// circumferences, the fixed length of one full trip.
const EarthCircumferenceKm = 40041.44

// earthRadiusKm is the mean Earth radius used for great-circle projection.
const earthRadiusKm = 6371.0

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance calculates the Haversine distance between two points in kilometers.
func Distance(p1, p2 Point) float64 {
	dLat := (p2.Lat - p1.Lat) * (math.Pi / 180.0)
	dLng := (p2.Lng - p1.Lng) * (math.Pi / 180.0)
	lat1 := p1.Lat * (math.Pi / 180.0)
	lat2 := p2.Lat * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DestinationPoint calculates the destination reached by travelling
// distanceKm along a great circle from start at the given bearing
// (degrees clockwise from north). The resulting longitude is
// normalized into (-180, 180].
func DestinationPoint(start Point, bearingDeg, distanceKm float64) Point {
	lat1 := start.Lat * (math.Pi / 180.0)
	lng1 := start.Lng * (math.Pi / 180.0)
	brng := bearingDeg * (math.Pi / 180.0)
	ad := distanceKm / earthRadiusKm // angular distance

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ad) +
		math.Cos(lat1)*math.Sin(ad)*math.Cos(brng))
	lng2 := lng1 + math.Atan2(math.Sin(brng)*math.Sin(ad)*math.Cos(lat1),
		math.Cos(ad)-math.Sin(lat1)*math.Sin(lat2))

	lngDeg := lng2 * (180.0 / math.Pi)
	// Normalize: shift into [0, 360), then back to (-180, 180].
	lngDeg = math.Mod(lngDeg+540.0, 360.0) - 180.0
	if lngDeg == -180 {
		lngDeg = 180
	}

	return Point{
		Lat: lat2 * (180.0 / math.Pi),
		Lng: lngDeg,
	}
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2 in degrees.
func Bearing(p1, p2 Point) float64 {
	lat1 := p1.Lat * (math.Pi / 180.0)
	lat2 := p2.Lat * (math.Pi / 180.0)
	dLng := (p2.Lng - p1.Lng) * (math.Pi / 180.0)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	brng := math.Atan2(y, x)

	return math.Mod(brng*(180.0/math.Pi)+360.0, 360.0)
}

// Antipode returns the point diametrically opposite p.
func Antipode(p Point) Point {
	lng := p.Lng + 180.0
	if lng > 180.0 {
		lng -= 360.0
	}
	return Point{Lat: -p.Lat, Lng: lng}
}
