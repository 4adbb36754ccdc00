package domain

import (
	"math"
	"time"
)

// RoundMoney rounds to cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// DateOnly drops the time of day, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights counts whole days between two calendar dates.
func Nights(checkIn, checkOut time.Time) int {
	d := DateOnly(checkOut).Sub(DateOnly(checkIn))
	return int(math.Round(d.Hours() / 24))
}
