package domain

import (
	"context"
	"time"
)

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableUnavailable TableStatus = "unavailable"
)

func (s TableStatus) Valid() bool { return s == TableAvailable || s == TableUnavailable }

// Table is a physical seating unit. Capacity is always >= 1.
type Table struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Location  string      `gorm:"size:255;not null" json:"location"`
	Capacity  int         `gorm:"not null" json:"capacity"`
	Status    TableStatus `gorm:"size:16;not null;default:available" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type TableRepository interface {
	Create(ctx context.Context, t *Table) error
	FindByID(ctx context.Context, id uint) (*Table, error)
	List(ctx context.Context) ([]Table, error)
	Update(ctx context.Context, t *Table) error
	Delete(ctx context.Context, id uint) (bool, error)
}
