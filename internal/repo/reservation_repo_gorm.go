package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-booking/internal/domain"
)

var errSlotTaken = domain.Conflict("the table is already booked for that date and time")

type ReservationRepo struct{ db *gorm.DB }

func NewReservationRepo(db *gorm.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// date and time are keywords in some dialects, so they go through map
// conditions and clause columns, which gorm quotes.
func activeSlot(q *gorm.DB, tableID uint, date, clock string) *gorm.DB {
	return q.Model(&domain.Reservation{}).
		Where(map[string]any{"table_id": tableID, "date": date, "time": clock}).
		Where("status IN ?", domain.ActiveStatuses)
}

var newestFirst = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "date"}, Desc: true},
	{Column: clause.Column{Name: "time"}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}}

// Create re-checks the slot inside a transaction and inserts the row. A
// concurrent insert that slips past the check hits the slot_key unique index.
// The table row is share-locked so a concurrent table delete waits for it.
func (r *ReservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	res.SyncSlotKey()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Select("id").First(&domain.Table{}, res.TableID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound(fmt.Sprintf("table %d not found", res.TableID))
		}
		if err != nil {
			return err
		}
		var n int64
		if err := activeSlot(tx, res.TableID, res.Date, res.Time).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errSlotTaken
		}
		return tx.Omit(clause.Associations).Create(res).Error
	})
	switch {
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNotFound):
		return err
	case isDupKey(err):
		return errSlotTaken
	case err != nil:
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) FindByID(ctx context.Context, id uint) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).Preload("User").Preload("Table").First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepo) ExistsActive(ctx context.Context, tableID uint, date, clock string) (bool, error) {
	var n int64
	if err := activeSlot(r.db.WithContext(ctx), tableID, date, clock).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return n > 0, nil
}

func (r *ReservationRepo) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]domain.Reservation, error) {
	var out []domain.Reservation
	q := r.db.WithContext(ctx).Preload("User").Preload("Table")
	if scope != nil {
		q = scope(q)
	}
	if err := q.Order(newestFirst).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

func (r *ReservationRepo) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	return r.list(ctx, nil)
}

func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	return r.list(ctx, func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", userID) })
}

// Update writes the editable fields of res. Moving into an occupied slot
// collides on the unique index and yields a Conflict.
func (r *ReservationRepo) Update(ctx context.Context, res *domain.Reservation) error {
	res.SyncSlotKey()
	err := r.db.WithContext(ctx).Model(res).Omit(clause.Associations).
		Select("table_id", "date", "time", "people", "status", "slot_key").
		Updates(res).Error
	if isDupKey(err) {
		return errSlotTaken
	}
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) Transition(ctx context.Context, id uint, from, to domain.ReservationStatus) (bool, error) {
	updates := map[string]any{"status": to}
	if !to.Active() {
		updates["slot_key"] = nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("transition reservation: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Reservation{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete reservation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ReservationRepo) TakenTimes(ctx context.Context, tableID uint, date string) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where(map[string]any{"table_id": tableID, "date": date}).
		Where("status IN ?", domain.ActiveStatuses).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "time"}}).
		Pluck("time", &times).Error
	if err != nil {
		return nil, fmt.Errorf("taken times: %w", err)
	}
	return times, nil
}

func (r *ReservationRepo) CountActiveByTable(ctx context.Context, tableID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("table_id = ? AND status IN ?", tableID, domain.ActiveStatuses).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return n, nil
}
