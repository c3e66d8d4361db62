package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"restaurant-booking/internal/domain"
)

type TableService struct {
	tables domain.TableRepository
	log    *zap.Logger
}

func NewTableService(tables domain.TableRepository, log *zap.Logger) *TableService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TableService{tables: tables, log: log}
}

type TableInput struct {
	Location string
	Capacity int
	Status   domain.TableStatus // empty means available
}

func (in TableInput) normalize() (TableInput, error) {
	in.Location = strings.TrimSpace(in.Location)
	if in.Location == "" {
		return in, domain.Validation("location is required")
	}
	if utf8.RuneCountInString(in.Location) > 255 {
		return in, domain.Validation("location must be at most 255 characters")
	}
	if in.Capacity < 1 {
		return in, domain.Validation("capacity must be at least 1")
	}
	if in.Status == "" {
		in.Status = domain.TableAvailable
	}
	if !in.Status.Valid() {
		return in, domain.Validation(fmt.Sprintf("unknown table status %q", in.Status))
	}
	return in, nil
}

func (s *TableService) List(ctx context.Context, actor domain.Actor) ([]domain.Table, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.tables.List(ctx)
}

func (s *TableService) Get(ctx context.Context, actor domain.Actor, id uint) (*domain.Table, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	t, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound(fmt.Sprintf("table %d not found", id))
	}
	return t, nil
}

func (s *TableService) canWrite(actor domain.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !domain.Can(actor, domain.ActTableWrite, nil) {
		return domain.Forbidden("only administrators can manage tables")
	}
	return nil
}

func (s *TableService) Create(ctx context.Context, actor domain.Actor, in TableInput) (*domain.Table, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	t := &domain.Table{Location: in.Location, Capacity: in.Capacity, Status: in.Status}
	if err := s.tables.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("table created", zap.Uint("table_id", t.ID), zap.Int("capacity", t.Capacity))
	return t, nil
}

func (s *TableService) Update(ctx context.Context, actor domain.Actor, id uint, in TableInput) (*domain.Table, error) {
	if err := s.canWrite(actor); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	t.Location, t.Capacity, t.Status = in.Location, in.Capacity, in.Status
	if err := s.tables.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete refuses to remove a table that still holds active reservations.
func (s *TableService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if err := s.canWrite(actor); err != nil {
		return err
	}
	ok, err := s.tables.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(fmt.Sprintf("table %d not found", id))
	}
	s.log.Info("table deleted", zap.Uint("table_id", id))
	return nil
}
