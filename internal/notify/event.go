// Package notify delivers reservation confirmations: a publisher used by the
// API process and a mail worker that consumes the published events.
package notify

import (
	"time"

	"restaurant-booking/internal/domain"
)

const RoutingKeyReservationCreated = "reservation.created"

// ReservationCreated is the message body published for every new reservation.
type ReservationCreated struct {
	ReservationID uint      `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	TableID       uint      `json:"table_id"`
	Location      string    `json:"location,omitempty"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	People        int       `json:"people"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewReservationCreated(r *domain.Reservation) ReservationCreated {
	ev := ReservationCreated{
		ReservationID: r.ID,
		UserID:        r.UserID,
		TableID:       r.TableID,
		Date:          r.Date,
		Time:          r.Time,
		People:        r.People,
		CreatedAt:     r.CreatedAt.UTC(),
	}
	if r.User != nil {
		ev.Name, ev.Email = r.User.Name, r.User.Email
	}
	if r.Table != nil {
		ev.Location = r.Table.Location
	}
	return ev
}
