// Package solar models the day/night cycle along the journey: solar
// declination, sunrise/sunset and civil twilight instants, polar day and
// polar night detection, and the light phase at a given position and time.
package solar

import (
	"fmt"
	"math"
	"time"
)

// Phase is the light phase at a position and instant.
type Phase string

const (
	PhaseNight   Phase = "night"
	PhaseDawn    Phase = "dawn"
	PhaseSunrise Phase = "sunrise"
	PhaseDay     Phase = "day"
	PhaseSunset  Phase = "sunset"
	PhaseDusk    Phase = "dusk"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi

	// Sun altitude angles measured from the zenith. Civil twilight ends
	// with the sun 6 degrees below the horizon; sunrise and sunset use
	// 0.833 degrees below to account for refraction and the solar disk.
	civilAngleDeg = 96.0
	sunAngleDeg   = 90.833

	// The sunrise and sunset phases each last this long, carved out of
	// the start and end of the day span.
	TransitionWindow = 20 * time.Minute
)

// SunTimes holds the twilight and horizon crossings for one UTC calendar
// day at a fixed position. When PolarDay or PolarNight is set the instants
// are zero and must not be used.
type SunTimes struct {
	DawnStart  time.Time
	Sunrise    time.Time
	Sunset     time.Time
	DuskEnd    time.Time
	PolarDay   bool
	PolarNight bool
}

// Declination returns the solar declination in degrees for a day of year.
func Declination(dayOfYear int) float64 {
	return -23.45 * math.Cos(degToRad*(360.0/365.0)*float64(dayOfYear+10))
}

// Times computes the sun times for the UTC calendar day containing at.
// Events whose solar-noon offset crosses midnight land on the adjacent
// calendar day rather than wrapping within the same one.
func Times(lat, lng float64, at time.Time) SunTimes {
	utc := at.UTC()
	dec := Declination(utc.YearDay())

	latRad := lat * degToRad
	decRad := dec * degToRad

	cosHourAngleSun := (math.Cos(sunAngleDeg*degToRad) - math.Sin(latRad)*math.Sin(decRad)) /
		(math.Cos(latRad) * math.Cos(decRad))
	if cosHourAngleSun > 1 {
		return SunTimes{PolarNight: true}
	}
	if cosHourAngleSun < -1 {
		return SunTimes{PolarDay: true}
	}

	cosHourAngleCivil := (math.Cos(civilAngleDeg*degToRad) - math.Sin(latRad)*math.Sin(decRad)) /
		(math.Cos(latRad) * math.Cos(decRad))
	cosHourAngleCivil = math.Max(-1, math.Min(1, cosHourAngleCivil))

	hourAngleSun := math.Acos(cosHourAngleSun) * radToDeg
	hourAngleCivil := math.Acos(cosHourAngleCivil) * radToDeg

	// Solar noon in minutes since midnight UTC. 4 minutes per degree.
	solarNoon := 720 - 4*lng

	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	anchor := func(minutes float64) time.Time {
		return midnight.Add(time.Duration(minutes * float64(time.Minute)))
	}

	return SunTimes{
		DawnStart: anchor(solarNoon - 4*hourAngleCivil),
		Sunrise:   anchor(solarNoon - 4*hourAngleSun),
		Sunset:    anchor(solarNoon + 4*hourAngleSun),
		DuskEnd:   anchor(solarNoon + 4*hourAngleCivil),
	}
}

// PhaseAt classifies the light phase at a position and instant. Polar
// conditions collapse to plain day or night with no finer phase.
func PhaseAt(lat, lng float64, at time.Time) Phase {
	times := Times(lat, lng, at)
	if times.PolarDay {
		return PhaseDay
	}
	if times.PolarNight {
		return PhaseNight
	}

	t := at.UTC()
	switch {
	case inWindow(t, times.DawnStart, times.Sunrise):
		return PhaseDawn
	case inWindow(t, times.Sunrise, times.Sunrise.Add(TransitionWindow)):
		return PhaseSunrise
	case inWindow(t, times.Sunrise.Add(TransitionWindow), times.Sunset.Add(-TransitionWindow)):
		return PhaseDay
	case inWindow(t, times.Sunset.Add(-TransitionWindow), times.Sunset):
		return PhaseSunset
	case inWindow(t, times.Sunset, times.DuskEnd):
		return PhaseDusk
	default:
		return PhaseNight
	}
}

// inWindow reports whether t lies in the half-open interval [from, to).
func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// NextEvent returns the phase the position transitions into next and the
// instant at which it does, assuming the position does not move. The
// second return is false under polar conditions, where no transition
// occurs within the model's horizon.
func NextEvent(lat, lng float64, at time.Time) (Phase, time.Time, bool) {
	times := Times(lat, lng, at)
	if times.PolarDay || times.PolarNight {
		return "", time.Time{}, false
	}

	phase := PhaseAt(lat, lng, at)
	next, when := eventAfter(phase, times)

	// Late at night today's anchors are already behind us; the next
	// event belongs to tomorrow's cycle.
	if !when.After(at.UTC()) {
		tomorrow := Times(lat, lng, at.Add(24*time.Hour))
		if tomorrow.PolarDay || tomorrow.PolarNight {
			return "", time.Time{}, false
		}
		next, when = eventAfter(phase, tomorrow)
	}
	return next, when, true
}

func eventAfter(phase Phase, times SunTimes) (Phase, time.Time) {
	switch phase {
	case PhaseNight:
		return PhaseDawn, times.DawnStart
	case PhaseDawn:
		return PhaseSunrise, times.Sunrise
	case PhaseSunrise:
		return PhaseDay, times.Sunrise.Add(TransitionWindow)
	case PhaseDay:
		return PhaseSunset, times.Sunset.Add(-TransitionWindow)
	case PhaseSunset:
		return PhaseDusk, times.Sunset
	default:
		return PhaseNight, times.DuskEnd
	}
}

// LocalTime is mean solar time at a longitude, 15 degrees per hour off UTC.
type LocalTime struct {
	Hours   int
	Minutes int
	Seconds int
	Period  string
	String  string
}

// LocalSolarTime converts an instant to mean solar time at a longitude,
// formatted in 12-hour notation.
func LocalSolarTime(lng float64, at time.Time) LocalTime {
	utc := at.UTC()
	daySeconds := utc.Hour()*3600 + utc.Minute()*60 + utc.Second()
	offset := int(math.Round(lng / 15 * 3600))

	total := (daySeconds + offset) % 86400
	if total < 0 {
		total += 86400
	}

	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	displayHours := h % 12
	if displayHours == 0 {
		displayHours = 12
	}

	return LocalTime{
		Hours:   h,
		Minutes: m,
		Seconds: s,
		Period:  period,
		String:  fmt.Sprintf("%d:%02d:%02d %s", displayHours, m, s, period),
	}
}
