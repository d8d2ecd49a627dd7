package geo

import (
	"fmt"
	"math"
	"time"
)

// Placeholder is shown when a value cannot be computed (zero speed etc).
const Placeholder = "—"

// FormatCoordinates renders a coordinate pair with hemisphere letters,
// e.g. "0.1807°S, 78.4678°W".
func FormatCoordinates(lat, lng float64) string {
	latDir := "N"
	if lat < 0 {
		latDir = "S"
	}
	lngDir := "E"
	if lng < 0 {
		lngDir = "W"
	}
	return fmt.Sprintf("%.4f°%s, %.4f°%s", math.Abs(lat), latDir, math.Abs(lng), lngDir)
}

// FormatTimeToCircumnavigate renders how long a full circumnavigation
// takes at a constant speed, as the two most significant units
// (e.g. "10 months 4 weeks"). Speeds below 0.1 km/h are treated as
// standing still and yield the placeholder.
func FormatTimeToCircumnavigate(speedKmh float64) string {
	return formatCircumnavigation(speedKmh, 0.1)
}

// FormatCruiseTimeToCircumnavigate is the cruise-display variant: it keeps
// estimates for arbitrarily slow modes (continental drift) and only guards
// against zero.
func FormatCruiseTimeToCircumnavigate(speedKmh float64) string {
	return formatCircumnavigation(speedKmh, 1e-6)
}

func formatCircumnavigation(speedKmh, epsilon float64) string {
	if speedKmh < epsilon {
		return Placeholder
	}

	const (
		minutesPerHour = 60
		hoursPerDay    = 24
		daysPerWeek    = 7
		daysPerMonth   = 30.44 // average
		daysPerYear    = 365.25
	)

	totalHours := EarthCircumferenceKm / speedKmh
	totalMinutes := totalHours * minutesPerHour
	totalDays := totalHours / hoursPerDay

	remaining := totalMinutes

	years := math.Floor(totalDays / daysPerYear)
	remaining -= years * daysPerYear * hoursPerDay * minutesPerHour

	months := math.Floor(remaining / minutesPerHour / hoursPerDay / daysPerMonth)
	remaining -= months * daysPerMonth * hoursPerDay * minutesPerHour

	weeks := math.Floor(remaining / minutesPerHour / hoursPerDay / daysPerWeek)
	remaining -= weeks * daysPerWeek * hoursPerDay * minutesPerHour

	days := math.Floor(remaining / minutesPerHour / hoursPerDay)
	remaining -= days * hoursPerDay * minutesPerHour

	hours := math.Floor(remaining / minutesPerHour)
	remaining -= hours * minutesPerHour

	minutes := math.Floor(remaining)

	// Once a larger unit is non-zero, smaller units below the next one
	// are suppressed entirely: weeks only appear when there are no years,
	// days only when there are no years and no months, and so on.
	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if weeks > 0 && years == 0 {
		parts = append(parts, plural(weeks, "week"))
	}
	if days > 0 && years == 0 && months == 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 && years == 0 && months == 0 && weeks == 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 && years == 0 && months == 0 && weeks == 0 && days == 0 {
		parts = append(parts, plural(minutes, "min"))
	}

	if len(parts) == 0 {
		return "< 1 min"
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	if len(parts) == 2 {
		return parts[0] + " " + parts[1] + " to circle Earth"
	}
	return parts[0] + " to circle Earth"
}

func plural(n float64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%.0f %ss", n, unit)
}

// FormatDuration renders an elapsed duration compactly with its two most
// significant units, e.g. "3h 25m" or "2y 140d".
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	years := int64(float64(days) / 365.25)

	switch {
	case years > 1:
		remainingDays := int64(math.Mod(float64(days), 365.25))
		return fmt.Sprintf("%dy %dd", years, remainingDays)
	case days > 1:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 1:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 1:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
