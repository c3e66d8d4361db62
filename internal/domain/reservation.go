package domain

import (
	"context"
	"fmt"
	"time"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

// ActiveStatuses occupy a slot.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

func (s ReservationStatus) Active() bool { return s == StatusPending || s == StatusConfirmed }

type Reservation struct {
	ID      uint              `gorm:"primaryKey" json:"id"`
	UserID  string            `gorm:"size:36;not null;index" json:"user_id"`
	User    *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TableID uint              `gorm:"not null;index:idx_reservation_slot" json:"table_id"`
	Table   *Table            `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Date    string            `gorm:"size:10;not null;index:idx_reservation_slot" json:"date"`
	Time    string            `gorm:"size:5;not null;index:idx_reservation_slot" json:"time"`
	People  int               `gorm:"not null" json:"people"`
	Status  ReservationStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	// SlotKey is set only while the reservation is active; the unique index
	// makes a second active row for the same table/date/time impossible.
	SlotKey   *string   `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Reservation) OwnerID() string { return r.UserID }

func SlotKey(tableID uint, date, clock string) string {
	return fmt.Sprintf("%d|%s|%s", tableID, date, clock)
}

// SyncSlotKey derives SlotKey from the current table, date, time and status.
func (r *Reservation) SyncSlotKey() {
	if !r.Status.Active() {
		r.SlotKey = nil
		return
	}
	k := SlotKey(r.TableID, r.Date, r.Time)
	r.SlotKey = &k
}

type ReservationRepository interface {
	// Create inserts r; an occupied slot yields a Conflict error.
	Create(ctx context.Context, r *Reservation) error
	FindByID(ctx context.Context, id uint) (*Reservation, error)
	ExistsActive(ctx context.Context, tableID uint, date, clock string) (bool, error)
	ListAll(ctx context.Context) ([]Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]Reservation, error)
	Update(ctx context.Context, r *Reservation) error
	// Transition moves id from one status to another and reports whether
	// the row was still in the expected status.
	Transition(ctx context.Context, id uint, from, to ReservationStatus) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	TakenTimes(ctx context.Context, tableID uint, date string) ([]string, error)
	CountActiveByTable(ctx context.Context, tableID uint) (int64, error)
}

// Notifier delivers the confirmation message for a freshly created reservation.
type Notifier interface {
	SendConfirmation(ctx context.Context, r *Reservation) error
}
