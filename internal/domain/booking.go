package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// BookingRules holds the service schedule reservations are validated against.
type BookingRules struct {
	Slots          []string
	ClosedWeekdays []time.Weekday
	MinParty       int
	MaxParty       int
	Location       *time.Location
}

// DefaultBookingRules: lunch 13:00-15:30 and dinner 21:00-23:30 every 30
// minutes, closed on Mondays, parties of 2 to 8.
func DefaultBookingRules() BookingRules {
	return BookingRules{
		Slots: []string{
			"13:00", "13:30", "14:00", "14:30", "15:00", "15:30",
			"21:00", "21:30", "22:00", "22:30", "23:00", "23:30",
		},
		ClosedWeekdays: []time.Weekday{time.Monday},
		MinParty:       2,
		MaxParty:       8,
		Location:       time.Local,
	}
}

// PartyRange returns the accepted party sizes for a table of the given capacity.
func (b BookingRules) PartyRange(capacity int) (int, int) {
	return clamp(capacity-1, b.MinParty, b.MaxParty), clamp(capacity+1, b.MinParty, b.MaxParty)
}

func (b BookingRules) CheckParty(t *Table, people int) error {
	lo, hi := b.PartyRange(t.Capacity)
	if people < 1 || people < lo || people > hi {
		return PartySize(t.ID, people, lo, hi)
	}
	return nil
}

// NormalizeTime accepts "HH:MM" or "HH:MM:SS" and returns the slot in "HH:MM"
// form, failing when it is not a service slot.
func (b BookingRules) NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	var t time.Time
	var err error
	if strings.Count(s, ":") == 2 {
		t, err = time.Parse("15:04:05", s)
	} else {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return "", Validation(fmt.Sprintf("time %q must use the HH:MM format", s))
	}
	clock := t.Format("15:04")
	if !slices.Contains(b.Slots, clock) {
		return "", Validation(fmt.Sprintf("%s is not a reservation slot", clock))
	}
	return clock, nil
}

// ParseDate validates the calendar format only.
func (b BookingRules) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), b.loc())
	if err != nil {
		return time.Time{}, Validation(fmt.Sprintf("date %q must use the YYYY-MM-DD format", s))
	}
	return d, nil
}

// CheckBookable rejects past dates and days the restaurant is closed.
func (b BookingRules) CheckBookable(s string, now time.Time) (string, error) {
	d, err := b.ParseDate(s)
	if err != nil {
		return "", err
	}
	n := now.In(b.loc())
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, b.loc())
	if d.Before(today) {
		return "", Validation("reservations cannot be made for past dates")
	}
	if b.Closed(d) {
		return "", Validation(fmt.Sprintf("the restaurant is closed on %s", d.Weekday()))
	}
	return d.Format(DateLayout), nil
}

// Closed reports whether the restaurant takes no bookings on d's weekday.
func (b BookingRules) Closed(d time.Time) bool {
	return slices.Contains(b.ClosedWeekdays, d.Weekday())
}

func (b BookingRules) loc() *time.Location {
	if b.Location == nil {
		return time.Local
	}
	return b.Location
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
