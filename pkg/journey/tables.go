package journey

import "watego/pkg/model"

// EquatorialLocations are the starting points a new journey picks from.
// All sit within a fraction of a degree of the equator.
var EquatorialLocations = []model.Location{
	{Name: "Quito, Ecuador", Lat: -0.1807, Lng: -78.4678},
	{Name: "Macapá, Brazil", Lat: 0.0389, Lng: -51.0664},
	{Name: "Pontianak, Indonesia", Lat: -0.0263, Lng: 109.3425},
	{Name: "Nanyuki, Kenya", Lat: 0.0167, Lng: 37.0667},
}

// CruiseModes is the cruise control speed table, from walking all the way
// down to continental drift. Decimals is the display precision that keeps
// the slow entries from rendering as zero.
var CruiseModes = []model.CruiseMode{
	{Name: "Walking", SpeedKmh: 5, Decimals: 1, Icon: "walker"},
	{Name: "Running", SpeedKmh: 10, Decimals: 0, Icon: "runner"},
	{Name: "Scootering", SpeedKmh: 10, Decimals: 0, Icon: "scooter"},
	{Name: "Bicycle", SpeedKmh: 15, Decimals: 0, Icon: "cyclist"},
	{Name: "Car", SpeedKmh: 100, Decimals: 0, Icon: "car-side"},
	{Name: "Light Aircraft", SpeedKmh: 220, Decimals: 0, Icon: "airplane-propeller"},
	{Name: "Commercial Airliner", SpeedKmh: 900, Decimals: 0, Icon: "airplane-commercial"},
	{Name: "Speed of sound (avg)", SpeedKmh: 1225, Decimals: 0, Icon: "sound"},
	{Name: "Space Shuttle (LEO)", SpeedKmh: 28000, Decimals: 0, Icon: "shuttle"},
	{Name: "Voyager I", SpeedKmh: 61000, Decimals: 0, Icon: "satellite"},
	{Name: "Carpenter Ant", SpeedKmh: 0.8, Decimals: 1, Icon: "ant"},
	{Name: "Turtle", SpeedKmh: 0.4, Decimals: 1, Icon: "turtle"},
	{Name: "Sloth", SpeedKmh: 0.24, Decimals: 2, Icon: "sloth"},
	{Name: "Garden Snail", SpeedKmh: 0.048, Decimals: 3, Icon: "snail"},
	{Name: "Continental Drift", SpeedKmh: 0.000004, Decimals: 6, Icon: "mountain"},
}

func throttle(kmh float64) *float64 { return &kmh }

// ThrottleLevels caps the implied speed in free scroll mode. Level 0 is
// unlimited.
var ThrottleLevels = []model.ThrottleLevel{
	{Level: 0, MaxSpeedKmh: nil, Label: "No Limit"},
	{Level: 1, MaxSpeedKmh: throttle(25), Label: "25 km/h"},
	{Level: 2, MaxSpeedKmh: throttle(50), Label: "50 km/h"},
	{Level: 3, MaxSpeedKmh: throttle(100), Label: "100 km/h"},
	{Level: 4, MaxSpeedKmh: throttle(500), Label: "500 km/h"},
	{Level: 5, MaxSpeedKmh: throttle(1000), Label: "1,000 km/h"},
	{Level: 6, MaxSpeedKmh: throttle(5000), Label: "5,000 km/h"},
	{Level: 7, MaxSpeedKmh: throttle(10000), Label: "10,000 km/h"},
	{Level: 8, MaxSpeedKmh: throttle(50000), Label: "50,000 km/h"},
	{Level: 9, MaxSpeedKmh: throttle(100000), Label: "100,000 km/h"},
}
