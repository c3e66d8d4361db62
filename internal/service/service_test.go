package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"restaurant-booking/internal/core/database"
	"restaurant-booking/internal/domain"
	"restaurant-booking/internal/repo"
)

// 2025-05-28 is a Wednesday.
var fixedNow = time.Date(2025, 5, 28, 10, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	sent chan domain.Reservation
	err  error
}

func newRecordingNotifier(err error) *recordingNotifier {
	return &recordingNotifier{sent: make(chan domain.Reservation, 16), err: err}
}

func (n *recordingNotifier) SendConfirmation(_ context.Context, r *domain.Reservation) error {
	n.sent <- *r
	return n.err
}

type fakeTokens struct{}

func (fakeTokens) Issue(uid, role string) (string, error) { return "tok-" + uid + "-" + role, nil }

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *fakeRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[jti] = ttl
	return nil
}

type env struct {
	db       *gorm.DB
	users    *repo.UserRepo
	tables   *repo.TableRepo
	resRepo  *repo.ReservationRepo
	catalog  *repo.CatalogRepo
	notifier *recordingNotifier
	svc      *ReservationService

	customer, other, waiter, admin domain.Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	e := &env{
		db:       db,
		users:    repo.NewUserRepo(db),
		tables:   repo.NewTableRepo(db),
		resRepo:  repo.NewReservationRepo(db),
		catalog:  repo.NewCatalogRepo(db),
		notifier: newRecordingNotifier(nil),
	}
	ctx := context.Background()
	for _, u := range []domain.User{
		{ID: "cust-1", Email: "ana@example.com", Name: "Ana", Role: domain.RoleCustomer},
		{ID: "cust-2", Email: "luis@example.com", Name: "Luis", Role: domain.RoleCustomer},
		{ID: "wait-1", Email: "marta@example.com", Name: "Marta", Role: domain.RoleWaiter},
		{ID: "adm-1", Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin},
	} {
		u := u
		u.PasswordHash = "x"
		require.NoError(t, e.users.Create(ctx, &u))
	}
	e.customer = domain.Actor{ID: "cust-1", Role: domain.RoleCustomer}
	e.other = domain.Actor{ID: "cust-2", Role: domain.RoleCustomer}
	e.waiter = domain.Actor{ID: "wait-1", Role: domain.RoleWaiter}
	e.admin = domain.Actor{ID: "adm-1", Role: domain.RoleAdmin}

	// table 1 seats 2, table 2 seats 4, ... table 5 seats 4
	for _, c := range []int{2, 4, 6, 8, 4} {
		require.NoError(t, e.tables.Create(ctx, &domain.Table{Location: "Interior", Capacity: c, Status: domain.TableAvailable}))
	}

	rules := domain.DefaultBookingRules()
	rules.Location = time.UTC
	e.svc = NewReservationService(ReservationDeps{
		Reservations: e.resRepo,
		Tables:       e.tables,
		Users:        e.users,
		Notifier:     e.notifier,
		Rules:        rules,
		Now:          func() time.Time { return fixedNow },
	})
	t.Cleanup(e.svc.Wait)
	return e
}

func (e *env) book(t *testing.T, actor domain.Actor, tableID uint, date, clock string, people int) *domain.Reservation {
	t.Helper()
	r, err := e.svc.Create(context.Background(), actor, CreateReservationInput{TableID: tableID, Date: date, Time: clock, People: people})
	require.NoError(t, err)
	return r
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "want %v, got %v", kind, err)
}
