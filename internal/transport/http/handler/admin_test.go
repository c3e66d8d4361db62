package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-booking/internal/domain"
	"restaurant-booking/internal/service"
)

func TestAdminEngineRequiresAdmin(t *testing.T) {
	a := newApp(t)
	assert.Equal(t, 401, call(t, a.admin, http.MethodGet, "/admin/v1/users", "", nil).Code)
	assert.Equal(t, 403, call(t, a.admin, http.MethodGet, "/admin/v1/users", a.tokens["wait-1"], nil).Code)

	env := call(t, a.admin, http.MethodGet, "/admin/v1/users?limit=2", a.tokens["adm-1"], nil)
	require.Equal(t, 0, env.Code, env.Msg)
	page := decode[service.UserPage](t, env)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.Items, 2)
}

func TestAdminChangesRole(t *testing.T) {
	a := newApp(t)
	env := call(t, a.admin, http.MethodPut, "/admin/v1/users/cust-2", a.tokens["adm-1"], map[string]any{
		"name": "Luis", "email": "luis@example.com", "role": "waiter",
	})
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Equal(t, domain.RoleWaiter, decode[domain.User](t, env).Role)

	env = call(t, a.admin, http.MethodPut, "/admin/v1/users/cust-2", a.tokens["adm-1"], map[string]any{
		"name": "Luis", "email": "luis@example.com", "role": "owner",
	})
	assert.Equal(t, 400, env.Code)
}

func TestDemotedStaffLosesAccessWithOldToken(t *testing.T) {
	a := newApp(t)
	env := call(t, a.api, http.MethodPost, "/api/v1/reservations", a.tokens["cust-1"], booking(2, "2025-06-04", "21:00", 4))
	require.Equal(t, 0, env.Code, env.Msg)
	path := fmt.Sprintf("/api/v1/reservations/%d/confirm", decode[domain.Reservation](t, env).ID)

	env = call(t, a.admin, http.MethodPut, "/admin/v1/users/wait-1", a.tokens["adm-1"], map[string]any{
		"name": "Marta", "email": "marta@example.com", "role": "customer",
	})
	require.Equal(t, 0, env.Code, env.Msg)

	assert.Equal(t, 403, call(t, a.api, http.MethodPut, path, a.tokens["wait-1"], nil).Code)
}

func TestTableAdmin(t *testing.T) {
	a := newApp(t)
	tok := a.tokens["adm-1"]

	env := call(t, a.admin, http.MethodPost, "/admin/v1/tables", tok, map[string]any{"location": "Window", "capacity": 6})
	require.Equal(t, 0, env.Code, env.Msg)
	tbl := decode[domain.Table](t, env)
	assert.Equal(t, domain.TableAvailable, tbl.Status)

	assert.Equal(t, 400, call(t, a.admin, http.MethodPost, "/admin/v1/tables", tok, map[string]any{"location": "Window", "capacity": 0}).Code)

	path := fmt.Sprintf("/admin/v1/tables/%d", tbl.ID)
	env = call(t, a.admin, http.MethodPut, path, tok, map[string]any{"location": "Window", "capacity": 6, "status": "unavailable"})
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Equal(t, domain.TableUnavailable, decode[domain.Table](t, env).Status)

	env = call(t, a.api, http.MethodGet, fmt.Sprintf("/api/v1/tables/%d", tbl.ID), a.tokens["cust-1"], nil)
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Equal(t, "Window", decode[domain.Table](t, env).Location)

	// table 1 has an active booking
	env = call(t, a.api, http.MethodPost, "/api/v1/reservations", a.tokens["cust-1"], booking(1, "2025-06-04", "13:00", 2))
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Equal(t, 409, call(t, a.admin, http.MethodDelete, "/admin/v1/tables/1", tok, nil).Code)

	assert.Equal(t, 0, call(t, a.admin, http.MethodDelete, path, tok, nil).Code)
	assert.Equal(t, 404, call(t, a.api, http.MethodGet, fmt.Sprintf("/api/v1/tables/%d", tbl.ID), a.tokens["cust-1"], nil).Code)
}

func TestCatalogPublicReadAdminWrite(t *testing.T) {
	a := newApp(t)
	tok := a.tokens["adm-1"]

	env := call(t, a.api, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, 0, env.Code)
	assert.Empty(t, decode[[]domain.Category](t, env))

	env = call(t, a.admin, http.MethodPost, "/admin/v1/categories", tok, map[string]any{"name": "Desserts", "order": 2})
	require.Equal(t, 0, env.Code, env.Msg)
	cat := decode[domain.Category](t, env)

	env = call(t, a.admin, http.MethodPost, "/admin/v1/products", tok, map[string]any{
		"name": "Flan", "description": "Caramel custard", "price": 4.5, "category_id": cat.ID, "image": "flan.jpg",
	})
	require.Equal(t, 0, env.Code, env.Msg)
	prod := decode[domain.Product](t, env)

	env = call(t, a.admin, http.MethodPost, "/admin/v1/products", tok, map[string]any{
		"name": "Ghost", "description": "x", "price": 1, "category_id": 999, "image": "g.jpg",
	})
	assert.Equal(t, 404, env.Code)

	env = call(t, a.api, http.MethodGet, fmt.Sprintf("/api/v1/products?category_id=%d", cat.ID), "", nil)
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Len(t, decode[[]domain.Product](t, env), 1)

	env = call(t, a.api, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", prod.ID), "", nil)
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Equal(t, "Flan", decode[domain.Product](t, env).Name)

	assert.Equal(t, 409, call(t, a.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/categories/%d", cat.ID), tok, nil).Code)
	assert.Equal(t, 0, call(t, a.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/products/%d", prod.ID), tok, nil).Code)
	assert.Equal(t, 0, call(t, a.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/categories/%d", cat.ID), tok, nil).Code)

	// catalog writes are not reachable from the API engine
	w := serve(t, a.api, http.MethodPost, "/api/v1/categories", tok, map[string]any{"name": "Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
