package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"restaurant-booking/internal/core/auth"
	"restaurant-booking/internal/core/database"
	"restaurant-booking/internal/domain"
	"restaurant-booking/internal/repo"
	"restaurant-booking/internal/service"
	"restaurant-booking/internal/transport/http/handler"
	"restaurant-booking/internal/transport/http/router"
	"restaurant-booking/pkg/utils"
)

var fixedNow = time.Date(2025, 5, 28, 10, 0, 0, 0, time.UTC)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type app struct {
	api, admin http.Handler
	jwt        *auth.JWTer
	resSvc     *service.ReservationService
	tokens     map[string]string
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:http_%s?mode=memory&cache=shared", name),
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

	users := repo.NewUserRepo(db)
	tables := repo.NewTableRepo(db)
	reservations := repo.NewReservationRepo(db)
	catalog := repo.NewCatalogRepo(db)

	ctx := context.Background()
	hash, err := utils.HashPassword("secret-pass")
	require.NoError(t, err)
	for _, u := range []domain.User{
		{ID: "cust-1", Email: "ana@example.com", Name: "Ana", Role: domain.RoleCustomer},
		{ID: "cust-2", Email: "luis@example.com", Name: "Luis", Role: domain.RoleCustomer},
		{ID: "wait-1", Email: "marta@example.com", Name: "Marta", Role: domain.RoleWaiter},
		{ID: "adm-1", Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin},
	} {
		u := u
		u.PasswordHash = hash
		require.NoError(t, users.Create(ctx, &u))
	}
	for _, c := range []int{2, 4} {
		require.NoError(t, tables.Create(ctx, &domain.Table{Location: "Terrace", Capacity: c, Status: domain.TableAvailable}))
	}

	jwter := auth.NewJWTer("test-secret", "restaurant-booking", time.Hour)
	rules := domain.DefaultBookingRules()
	rules.Location = time.UTC

	resSvc := service.NewReservationService(service.ReservationDeps{
		Reservations: reservations,
		Tables:       tables,
		Users:        users,
		Rules:        rules,
		Now:          func() time.Time { return fixedNow },
	})
	t.Cleanup(resSvc.Wait)
	userSvc := service.NewUserService(users, jwter, auth.NewRevoker(nil), nil)
	tableSvc := service.NewTableService(tables, nil)
	catalogSvc := service.NewCatalogService(catalog, nil, time.Minute, nil)

	reg := router.NewRegistry(
		handler.NewUserHandler(userSvc),
		handler.NewTableHandler(tableSvc, resSvc),
		handler.NewReservationHandler(resSvc),
		handler.NewCatalogHandler(catalogSvc),
	)
	limits := router.DefaultLimits()
	limits.PerIPRPS, limits.PerIPBurst = 10000, 10000
	limits.RPS, limits.Burst = 10000, 10000
	deps := router.Deps{JWT: jwter, Users: users, Limits: limits, Log: zap.NewNop()}

	a := &app{
		api:    router.NewAPIEngine(deps, reg),
		admin:  router.NewAdminEngine(deps, reg),
		jwt:    jwter,
		resSvc: resSvc,
		tokens: map[string]string{},
	}
	for id, role := range map[string]domain.Role{
		"cust-1": domain.RoleCustomer, "cust-2": domain.RoleCustomer,
		"wait-1": domain.RoleWaiter, "adm-1": domain.RoleAdmin,
	} {
		tok, err := jwter.Issue(id, string(role))
		require.NoError(t, err)
		a.tokens[id] = tok
	}
	return a
}

func serve(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		raw = b
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// call expects the envelope with HTTP 200.
func call(t *testing.T, h http.Handler, method, path, token string, body any) envelope {
	t.Helper()
	w := serve(t, h, method, path, token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func booking(table uint, date, clock string, people int) gin.H {
	return gin.H{"table_id": table, "date": date, "time": clock, "people": people}
}
