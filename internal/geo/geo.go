// Package geo holds the distance, opening-hours and countdown helpers used by
// shop listing, the discovery feed and booking views.
package geo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const earthRadiusKm = 6371.0

// Location is a resolved coordinate with a human label.
type Location struct {
	Lat   float64
	Lng   float64
	Label string
}

// Fallback is substituted whenever no locator can produce a position.
var Fallback = Location{Lat: 23.81, Lng: 90.41, Label: "Dhaka (Default)"}

// DistanceKm returns the haversine distance rounded to one decimal.
// Any zero coordinate yields 0.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == 0 || lng1 == 0 || lat2 == 0 || lng2 == 0 {
		return 0
	}
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return Round1(earthRadiusKm * c)
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// IsOpen checks at against the half-open window [opening, closing).
// Missing or malformed hours mean always open. A window that closes
// before it opens is never open.
func IsOpen(opening, closing string, at time.Time) bool {
	openMin, ok1 := parseClock(opening)
	closeMin, ok2 := parseClock(closing)
	if !ok1 || !ok2 {
		return true
	}
	now := at.Hour()*60 + at.Minute()
	return now >= openMin && now < closeMin
}

// IsOpenNow is IsOpen evaluated against the local wall clock.
func IsOpenNow(opening, closing string) bool {
	return IsOpen(opening, closing, time.Now())
}

// ValidClock reports whether s is an HH:MM time of day.
func ValidClock(s string) bool {
	_, ok := parseClock(s)
	return ok
}

func parseClock(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// FormatTimeLeft renders the countdown to date+clock as "05h 03m 09s".
// It returns false once the target has passed or when the input does not parse.
func FormatTimeLeft(date, clock string, now time.Time) (string, bool) {
	target, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, now.Location())
	if err != nil {
		return "", false
	}
	diff := target.Sub(now)
	if diff <= 0 {
		return "", false
	}
	secs := int(diff / time.Second)
	return fmt.Sprintf("%02dh %02dm %02ds", secs/3600, (secs%3600)/60, secs%60), true
}

// Locator is a geolocation source that may fail.
type Locator func(ctx context.Context) (Location, error)

// Fixed returns a locator that always yields loc.
func Fixed(loc Location) Locator {
	return func(context.Context) (Location, error) { return loc, nil }
}

// Resolve returns the first locator result that succeeds, or Fallback.
func Resolve(ctx context.Context, locators ...Locator) Location {
	for _, l := range locators {
		if l == nil {
			continue
		}
		if loc, err := l(ctx); err == nil {
			return loc
		}
	}
	return Fallback
}
