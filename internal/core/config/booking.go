package config

import (
	"fmt"
	"strings"
	"time"

	"restaurant-booking/internal/domain"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// Rules turns the booking section into domain rules; unset fields keep the
// defaults.
func (b Booking) Rules() (domain.BookingRules, error) {
	r := domain.DefaultBookingRules()
	if len(b.Slots) > 0 {
		r.Slots = make([]string, 0, len(b.Slots))
		for _, s := range b.Slots {
			t, err := time.Parse("15:04", strings.TrimSpace(s))
			if err != nil {
				return r, fmt.Errorf("booking slot %q: %w", s, err)
			}
			r.Slots = append(r.Slots, t.Format("15:04"))
		}
	}
	if b.ClosedWeekdays != nil {
		r.ClosedWeekdays = r.ClosedWeekdays[:0:0]
		for _, d := range b.ClosedWeekdays {
			wd, ok := weekdays[strings.ToLower(strings.TrimSpace(d))]
			if !ok {
				return r, fmt.Errorf("booking closed weekday %q: unknown day", d)
			}
			r.ClosedWeekdays = append(r.ClosedWeekdays, wd)
		}
	}
	if b.MinParty > 0 {
		r.MinParty = b.MinParty
	}
	if b.MaxParty > 0 {
		r.MaxParty = b.MaxParty
	}
	if r.MinParty > r.MaxParty {
		return r, fmt.Errorf("booking party bounds: min %d > max %d", r.MinParty, r.MaxParty)
	}
	if b.Timezone != "" {
		loc, err := time.LoadLocation(b.Timezone)
		if err != nil {
			return r, fmt.Errorf("booking timezone: %w", err)
		}
		r.Location = loc
	}
	return r, nil
}
