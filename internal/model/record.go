package model

import (
	"fmt"
	"time"
)

// DateLayout is the storage and wire format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day in the server time zone, formatted as YYYY-MM-DD.
type Date string

// DateOf returns the calendar day of t in t's own location.
// Callers convert t into the server location before calling.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s as a YYYY-MM-DD day.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// String implements fmt.Stringer.
func (d Date) String() string { return string(d) }

// Location is a shared geolocation. No range validation is applied beyond
// what the transport guarantees.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Record is one immutable attendance entry.
type Record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Date        Date      `json:"date"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Location returns the coordinates of the record.
func (r Record) Location() Location {
	return Location{Latitude: r.Latitude, Longitude: r.Longitude}
}
