package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"restaurant-booking/internal/domain"
)

type ReservationDeps struct {
	Reservations  domain.ReservationRepository
	Tables        domain.TableRepository
	Users         domain.UserRepository
	Notifier      domain.Notifier // optional
	Rules         domain.BookingRules
	Log           *zap.Logger
	Now           func() time.Time
	NotifyTimeout time.Duration
}

type ReservationService struct {
	reservations  domain.ReservationRepository
	tables        domain.TableRepository
	users         domain.UserRepository
	notifier      domain.Notifier
	rules         domain.BookingRules
	log           *zap.Logger
	now           func() time.Time
	notifyTimeout time.Duration
	inflight      sync.WaitGroup
}

func NewReservationService(d ReservationDeps) *ReservationService {
	s := &ReservationService{
		reservations:  d.Reservations,
		tables:        d.Tables,
		users:         d.Users,
		notifier:      d.Notifier,
		rules:         d.Rules,
		log:           d.Log,
		now:           d.Now,
		notifyTimeout: d.NotifyTimeout,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = 15 * time.Second
	}
	return s
}

func (s *ReservationService) Rules() domain.BookingRules { return s.rules }

type CreateReservationInput struct {
	UserID  string // staff only; empty books for the actor
	TableID uint
	Date    string
	Time    string
	People  int
}

// ReservationChanges carries the fields of an edit. Nil fields are left as
// they are.
type ReservationChanges struct {
	TableID *uint
	Date    *string
	Time    *string
	People  *int
	Status  *domain.ReservationStatus
}

func requireActor(actor domain.Actor) error {
	if !actor.Authenticated() {
		return domain.Unauthorized("authentication required")
	}
	return nil
}

func (s *ReservationService) table(ctx context.Context, id uint) (*domain.Table, error) {
	t, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound(fmt.Sprintf("table %d not found", id))
	}
	return t, nil
}

func (s *ReservationService) load(ctx context.Context, id uint) (*domain.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound(fmt.Sprintf("reservation %d not found", id))
	}
	return r, nil
}

// Create books a table for the actor, or for in.UserID when the actor is
// staff. The confirmation is sent in the background.
func (s *ReservationService) Create(ctx context.Context, actor domain.Actor, in CreateReservationInput) (res *domain.Reservation, err error) {
	defer func() { observe("create", err) }()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !domain.Can(actor, domain.ActReservationCreate, nil) {
		return nil, domain.Forbidden("you may not create reservations")
	}
	ownerID := actor.ID
	if in.UserID != "" && in.UserID != actor.ID {
		if !domain.Can(actor, domain.ActReservationBookForUser, nil) {
			return nil, domain.Forbidden("only staff can book on behalf of another user")
		}
		ownerID = in.UserID
	}
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.NotFound(fmt.Sprintf("user %s not found", ownerID))
	}

	t, err := s.table(ctx, in.TableID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TableAvailable {
		return nil, domain.Validation(fmt.Sprintf("table %d is not available for reservations", t.ID))
	}
	date, err := s.rules.CheckBookable(in.Date, s.now())
	if err != nil {
		return nil, err
	}
	clock, err := s.rules.NormalizeTime(in.Time)
	if err != nil {
		return nil, err
	}
	if err := s.rules.CheckParty(t, in.People); err != nil {
		return nil, err
	}

	res = &domain.Reservation{
		UserID:  owner.ID,
		TableID: t.ID,
		Date:    date,
		Time:    clock,
		People:  in.People,
		Status:  domain.StatusPending,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, err
	}
	res.User, res.Table = owner, t
	s.log.Info("reservation created",
		zap.Uint("reservation_id", res.ID),
		zap.String("user_id", res.UserID),
		zap.Uint("table_id", res.TableID),
		zap.String("date", res.Date),
		zap.String("time", res.Time),
	)
	s.dispatch(ctx, *res)
	return res, nil
}

// dispatch sends the confirmation without blocking the caller; failures are
// logged only.
func (s *ReservationService) dispatch(ctx context.Context, r domain.Reservation) {
	if s.notifier == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.SendConfirmation(ctx, &r); err != nil {
			notifyFailures.Inc()
			s.log.Warn("reservation confirmation not sent", zap.Uint("reservation_id", r.ID), zap.Error(err))
		}
	}()
}

// Wait blocks until background confirmations have finished.
func (s *ReservationService) Wait() { s.inflight.Wait() }

// CheckConflict reports whether an active reservation holds the slot.
func (s *ReservationService) CheckConflict(ctx context.Context, tableID uint, date, clock string) (bool, error) {
	if _, err := s.table(ctx, tableID); err != nil {
		return false, err
	}
	d, err := s.rules.ParseDate(date)
	if err != nil {
		return false, err
	}
	clock, err = s.rules.NormalizeTime(clock)
	if err != nil {
		return false, err
	}
	return s.reservations.ExistsActive(ctx, tableID, d.Format(domain.DateLayout), clock)
}

func (s *ReservationService) Confirm(ctx context.Context, actor domain.Actor, id uint) (*domain.Reservation, error) {
	return s.transition(ctx, actor, id, "confirm", domain.ActReservationConfirm, domain.StatusConfirmed)
}

func (s *ReservationService) Cancel(ctx context.Context, actor domain.Actor, id uint) (*domain.Reservation, error) {
	return s.transition(ctx, actor, id, "cancel", domain.ActReservationCancel, domain.StatusCancelled)
}

func (s *ReservationService) transition(ctx context.Context, actor domain.Actor, id uint, op string, act domain.Action, to domain.ReservationStatus) (res *domain.Reservation, err error) {
	defer func() { observe(op, err) }()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	res, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Can(actor, act, res) {
		return nil, domain.Forbidden(fmt.Sprintf("you may not %s this reservation", op))
	}
	if res.Status != domain.StatusPending {
		return nil, domain.InvalidTransition(fmt.Sprintf("cannot %s a %s reservation", op, res.Status))
	}
	moved, err := s.reservations.Transition(ctx, id, domain.StatusPending, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		// another request changed the status first
		cur, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, domain.InvalidTransition(fmt.Sprintf("cannot %s a %s reservation", op, cur.Status))
	}
	s.log.Info("reservation status changed",
		zap.Uint("reservation_id", id),
		zap.String("status", string(to)),
		zap.String("actor", actor.ID),
		zap.String("role", string(actor.Role)),
	)
	return s.load(ctx, id)
}

// Edit applies a staff correction. It may set any status; every provided
// field is validated first.
func (s *ReservationService) Edit(ctx context.Context, actor domain.Actor, id uint, ch ReservationChanges) (res *domain.Reservation, err error) {
	defer func() { observe("edit", err) }()
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	res, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Can(actor, domain.ActReservationEdit, res) {
		return nil, domain.Forbidden("only staff can edit reservations")
	}
	if err := s.apply(ctx, res, ch); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, res); err != nil {
		return nil, err
	}
	s.log.Info("reservation edited", zap.Uint("reservation_id", id), zap.String("actor", actor.ID))
	return s.load(ctx, id)
}

// Update replaces every editable field; it follows the Edit rules.
func (s *ReservationService) Update(ctx context.Context, actor domain.Actor, id uint, tableID uint, date, clock string, people int, status domain.ReservationStatus) (*domain.Reservation, error) {
	return s.Edit(ctx, actor, id, ReservationChanges{
		TableID: &tableID,
		Date:    &date,
		Time:    &clock,
		People:  &people,
		Status:  &status,
	})
}

func (s *ReservationService) apply(ctx context.Context, res *domain.Reservation, ch ReservationChanges) error {
	t := res.Table
	if ch.TableID != nil && *ch.TableID != res.TableID {
		nt, err := s.table(ctx, *ch.TableID)
		if err != nil {
			return err
		}
		t, res.TableID, res.Table = nt, nt.ID, nt
	}
	if t == nil {
		var err error
		if t, err = s.table(ctx, res.TableID); err != nil {
			return err
		}
	}
	if ch.Date != nil {
		d, err := s.rules.ParseDate(*ch.Date)
		if err != nil {
			return err
		}
		res.Date = d.Format(domain.DateLayout)
	}
	if ch.Time != nil {
		clock, err := s.rules.NormalizeTime(*ch.Time)
		if err != nil {
			return err
		}
		res.Time = clock
	}
	if ch.People != nil {
		res.People = *ch.People
	}
	if ch.People != nil || ch.TableID != nil {
		if err := s.rules.CheckParty(t, res.People); err != nil {
			return err
		}
	}
	if ch.Status != nil {
		st := domain.ReservationStatus(strings.ToLower(string(*ch.Status)))
		if !st.Valid() {
			return domain.Validation(fmt.Sprintf("unknown status %q", *ch.Status))
		}
		res.Status = st
	}
	return nil
}

func (s *ReservationService) Delete(ctx context.Context, actor domain.Actor, id uint) (err error) {
	defer func() { observe("delete", err) }()
	if err := requireActor(actor); err != nil {
		return err
	}
	if !domain.Can(actor, domain.ActReservationDelete, nil) {
		return domain.Forbidden("only administrators can delete reservations")
	}
	ok, err := s.reservations.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(fmt.Sprintf("reservation %d not found", id))
	}
	s.log.Info("reservation deleted", zap.Uint("reservation_id", id), zap.String("actor", actor.ID))
	return nil
}

func (s *ReservationService) Get(ctx context.Context, actor domain.Actor, id uint) (*domain.Reservation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Can(actor, domain.ActReservationRead, res) {
		return nil, domain.Forbidden("you may not view this reservation")
	}
	return res, nil
}

// List returns every reservation for staff and the actor's own otherwise.
func (s *ReservationService) List(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if domain.Can(actor, domain.ActReservationListAll, nil) {
		return s.reservations.ListAll(ctx)
	}
	return s.reservations.ListByUser(ctx, actor.ID)
}

type Availability struct {
	TableID  uint     `json:"table_id"`
	Date     string   `json:"date"`
	Bookable bool     `json:"bookable"`
	Free     []string `json:"free"`
	Taken    []string `json:"taken"`
}

// Availability lists the free slots of a table on a date. Closed or past
// days report no free slots.
func (s *ReservationService) Availability(ctx context.Context, tableID uint, date string) (*Availability, error) {
	t, err := s.table(ctx, tableID)
	if err != nil {
		return nil, err
	}
	d, err := s.rules.ParseDate(date)
	if err != nil {
		return nil, err
	}
	day := d.Format(domain.DateLayout)
	taken, err := s.reservations.TakenTimes(ctx, tableID, day)
	if err != nil {
		return nil, err
	}
	out := &Availability{TableID: tableID, Date: day, Free: []string{}, Taken: taken}
	if out.Taken == nil {
		out.Taken = []string{}
	}
	_, notBookable := s.rules.CheckBookable(day, s.now())
	out.Bookable = notBookable == nil && t.Status == domain.TableAvailable
	if !out.Bookable {
		return out, nil
	}
	for _, slot := range s.rules.Slots {
		if !slices.Contains(taken, slot) {
			out.Free = append(out.Free, slot)
		}
	}
	return out, nil
}
