package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-booking/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewUserService(e.users, fakeTokens{}, nil, nil)

	sess, err := svc.Register(ctx, "Carmen", " Carmen@Example.com ", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, sess.User.Role)
	assert.Equal(t, "carmen@example.com", sess.User.Email)
	assert.Equal(t, "tok-"+sess.User.ID+"-customer", sess.Token)

	_, err = svc.Register(ctx, "Other", "carmen@example.com", "supersecret")
	requireKind(t, err, domain.ErrConflict)
	_, err = svc.Register(ctx, "Short", "short@example.com", "123")
	requireKind(t, err, domain.ErrValidation)
	_, err = svc.Register(ctx, "Long", "long@example.com", strings.Repeat("p", 80))
	requireKind(t, err, domain.ErrValidation)
	_, err = svc.Register(ctx, "Bad", "not-an-email", "supersecret")
	requireKind(t, err, domain.ErrValidation)
	_, err = svc.Register(ctx, " ", "blank@example.com", "supersecret")
	requireKind(t, err, domain.ErrValidation)

	in, err := svc.Login(ctx, "CARMEN@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, in.User.ID)

	_, err = svc.Login(ctx, "carmen@example.com", "wrong-pass")
	requireKind(t, err, domain.ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody@example.com", "supersecret")
	requireKind(t, err, domain.ErrUnauthorized)
}

func TestLogoutRevokes(t *testing.T) {
	e := newEnv(t)
	rev := &fakeRevoker{}
	svc := NewUserService(e.users, fakeTokens{}, rev, nil)
	require.NoError(t, svc.Logout(context.Background(), "jti-1", time.Hour))
	assert.Equal(t, time.Hour, rev.revoked["jti-1"])

	noop := NewUserService(e.users, fakeTokens{}, nil, nil)
	require.NoError(t, noop.Logout(context.Background(), "jti-2", time.Hour))
}

func TestProfileAndAdminUpdates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewUserService(e.users, fakeTokens{}, nil, nil)

	me, err := svc.Me(ctx, e.customer)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Name)

	me, err = svc.UpdateMe(ctx, e.customer, ProfileInput{Name: "Ana María", Email: "ana@example.com", Password: "newpassword"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", me.Name)
	_, err = svc.Login(ctx, "ana@example.com", "newpassword")
	require.NoError(t, err)

	_, err = svc.UpdateMe(ctx, e.customer, ProfileInput{Name: "Ana", Email: "luis@example.com"})
	requireKind(t, err, domain.ErrConflict)
	_, err = svc.UpdateMe(ctx, e.customer, ProfileInput{Name: "Ana", Email: "ana@example.com", Password: strings.Repeat("p", 80)})
	requireKind(t, err, domain.ErrValidation)

	_, err = svc.Update(ctx, e.other, "cust-1", UserUpdateInput{Name: "x", Email: "x@example.com"})
	requireKind(t, err, domain.ErrForbidden)
	_, err = svc.Update(ctx, e.waiter, "cust-1", UserUpdateInput{Name: "Ana", Email: "ana@example.com", Role: domain.RoleAdmin})
	requireKind(t, err, domain.ErrForbidden)
	_, err = svc.Update(ctx, e.customer, "cust-1", UserUpdateInput{Name: "Ana", Email: "ana@example.com", Role: domain.RoleAdmin})
	requireKind(t, err, domain.ErrForbidden)

	promoted, err := svc.Update(ctx, e.admin, "cust-1", UserUpdateInput{Name: "Ana", Email: "ana@example.com", Role: domain.RoleWaiter})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWaiter, promoted.Role)
	_, err = svc.Update(ctx, e.admin, "cust-1", UserUpdateInput{Name: "Ana", Email: "ana@example.com", Role: "chef"})
	requireKind(t, err, domain.ErrValidation)
	_, err = svc.Update(ctx, e.admin, "ghost", UserUpdateInput{Name: "Ana", Email: "ana@example.com"})
	requireKind(t, err, domain.ErrNotFound)

	_, err = svc.List(ctx, e.waiter, 0, 10)
	requireKind(t, err, domain.ErrForbidden)
	page, err := svc.List(ctx, e.admin, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.Items, 4)
}

func TestEnsureAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewUserService(e.users, fakeTokens{}, nil, nil)

	created, err := svc.EnsureAdmin(ctx, "", "whatever", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin(ctx, "boss@example.com", "bosspassword", "")
	require.NoError(t, err)
	assert.True(t, created)
	sess, err := svc.Login(ctx, "boss@example.com", "bosspassword")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, sess.User.Role)

	created, err = svc.EnsureAdmin(ctx, "boss@example.com", "bosspassword", "")
	require.NoError(t, err)
	assert.False(t, created)
}
