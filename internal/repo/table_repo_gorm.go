package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-booking/internal/domain"
)

type TableRepo struct{ db *gorm.DB }

func NewTableRepo(db *gorm.DB) *TableRepo { return &TableRepo{db: db} }

func (r *TableRepo) Create(ctx context.Context, t *domain.Table) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (r *TableRepo) FindByID(ctx context.Context, id uint) (*domain.Table, error) {
	var t domain.Table
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find table: %w", err)
	}
	return &t, nil
}

func (r *TableRepo) List(ctx context.Context) ([]domain.Table, error) {
	var ts []domain.Table
	if err := r.db.WithContext(ctx).Order("id").Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return ts, nil
}

func (r *TableRepo) Update(ctx context.Context, t *domain.Table) error {
	err := r.db.WithContext(ctx).Model(t).
		Select("location", "capacity", "status").
		Updates(t).Error
	if err != nil {
		return fmt.Errorf("update table: %w", err)
	}
	return nil
}

// Delete removes the table together with its inactive reservation history.
// The table row is locked for the whole transaction, so a booking cannot be
// inserted between the active check and the delete. Returns a conflict error
// while active reservations remain.
func (r *TableRepo) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&domain.Table{}, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&domain.Reservation{}).
			Where("table_id = ? AND status IN ?", id, domain.ActiveStatuses).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.Conflict(fmt.Sprintf("table %d has %d active reservations", id, n))
		}
		if err := tx.Where("table_id = ? AND status NOT IN ?", id, domain.ActiveStatuses).
			Delete(&domain.Reservation{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Table{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if errors.Is(err, domain.ErrConflict) {
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("delete table: %w", err)
	}
	return deleted, nil
}
