package utils

import (
	"fmt"
	"math"
)

// EstimateMinutes converts a straight-line distance into an ETA in whole
// minutes, assuming a fixed average urban speed.
func EstimateMinutes(distanceKm, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 || distanceKm <= 0 {
		return 0
	}
	return int(math.Ceil(distanceKm / avgSpeedKmh * 60))
}

// FormatETA renders an ETA in minutes for display:
// "<1 minute", "N minute(s)", or "H hour(s) M minute(s)".
func FormatETA(minutes int) string {
	if minutes < 1 {
		return "<1 minute"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d %s", minutes, pluralMinute(minutes))
	}
	hours := minutes / 60
	rem := minutes % 60
	out := fmt.Sprintf("%d %s", hours, pluralHour(hours))
	if rem > 0 {
		out += fmt.Sprintf(" %d %s", rem, pluralMinute(rem))
	}
	return out
}

func pluralMinute(n int) string {
	if n == 1 {
		return "minute"
	}
	return "minutes"
}

func pluralHour(n int) string {
	if n == 1 {
		return "hour"
	}
	return "hours"
}
