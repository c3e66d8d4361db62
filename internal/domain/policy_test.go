package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanReservationTransitions(t *testing.T) {
	customer := Actor{ID: "u-1", Role: RoleCustomer}
	other := Actor{ID: "u-2", Role: RoleCustomer}
	waiter := Actor{ID: "w-1", Role: RoleWaiter}
	admin := Actor{ID: "a-1", Role: RoleAdmin}
	res := &Reservation{UserID: customer.ID}

	assert.False(t, Can(customer, ActReservationConfirm, res))
	assert.True(t, Can(waiter, ActReservationConfirm, res))
	assert.True(t, Can(admin, ActReservationConfirm, res))

	assert.True(t, Can(customer, ActReservationCancel, res))
	assert.False(t, Can(other, ActReservationCancel, res))
	assert.True(t, Can(waiter, ActReservationCancel, res))

	assert.False(t, Can(customer, ActReservationEdit, res))
	assert.True(t, Can(waiter, ActReservationEdit, res))

	assert.False(t, Can(waiter, ActReservationDelete, res))
	assert.True(t, Can(admin, ActReservationDelete, res))

	assert.True(t, Can(customer, ActReservationRead, res))
	assert.False(t, Can(other, ActReservationRead, res))
	assert.False(t, Can(customer, ActReservationListAll, nil))
	assert.True(t, Can(waiter, ActReservationListAll, nil))
}

func TestCanAnonymousIsDenied(t *testing.T) {
	for _, act := range []Action{ActReservationCreate, ActTableRead, ActReservationRead} {
		assert.False(t, Can(Actor{}, act, nil), string(act))
	}
	assert.False(t, Can(Actor{ID: "x", Role: "cliente"}, ActReservationCreate, nil))
}

func TestCanCatalogAndUsers(t *testing.T) {
	customer := Actor{ID: "u-1", Role: RoleCustomer}
	waiter := Actor{ID: "w-1", Role: RoleWaiter}
	admin := Actor{ID: "a-1", Role: RoleAdmin}

	assert.False(t, Can(waiter, ActCatalogWrite, nil))
	assert.True(t, Can(admin, ActCatalogWrite, nil))
	assert.False(t, Can(waiter, ActTableWrite, nil))
	assert.True(t, Can(customer, ActTableRead, nil))

	self := &User{ID: customer.ID}
	assert.True(t, Can(customer, ActUserUpdate, self))
	assert.False(t, Can(waiter, ActUserUpdate, self))
	assert.True(t, Can(admin, ActUserUpdate, self))
	assert.False(t, Can(customer, ActUserChangeRole, self))
	assert.True(t, Can(admin, ActUserChangeRole, self))
}
