package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-booking/internal/domain"
)

func TestCatalogService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(e.catalog, nil, 0, nil)

	_, err := svc.CreateCategory(ctx, e.waiter, CategoryInput{Name: "Postres"})
	requireKind(t, err, domain.ErrForbidden)
	_, err = svc.CreateCategory(ctx, e.admin, CategoryInput{Name: ""})
	requireKind(t, err, domain.ErrValidation)

	postres, err := svc.CreateCategory(ctx, e.admin, CategoryInput{Name: "Postres", Order: 2})
	require.NoError(t, err)
	entrantes, err := svc.CreateCategory(ctx, e.admin, CategoryInput{Name: "Entrantes", Order: 1})
	require.NoError(t, err)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, entrantes.ID, cats[0].ID)

	_, err = svc.CreateProduct(ctx, e.admin, ProductInput{Name: "Flan", Description: "Casero", Price: 4.5, CategoryID: 999, Image: "flan.jpg"})
	requireKind(t, err, domain.ErrNotFound)
	_, err = svc.CreateProduct(ctx, e.admin, ProductInput{Name: "Flan", Description: "Casero", Price: -1, CategoryID: postres.ID, Image: "flan.jpg"})
	requireKind(t, err, domain.ErrValidation)
	_, err = svc.CreateProduct(ctx, e.admin, ProductInput{Name: "Flan", Price: 4.5, CategoryID: postres.ID, Image: "flan.jpg"})
	requireKind(t, err, domain.ErrValidation)

	flan, err := svc.CreateProduct(ctx, e.admin, ProductInput{Name: "Flan", Description: "Casero", Price: 4.5, CategoryID: postres.ID, Image: "flan.jpg"})
	require.NoError(t, err)

	list, err := svc.ListProducts(ctx, postres.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Flan", list[0].Name)
	none, err := svc.ListProducts(ctx, entrantes.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	requireKind(t, svc.DeleteCategory(ctx, e.admin, postres.ID), domain.ErrConflict)

	moved, err := svc.UpdateProduct(ctx, e.admin, flan.ID, ProductInput{Name: "Flan de huevo", Description: "Casero", Price: 5, CategoryID: entrantes.ID, Image: "flan.jpg"})
	require.NoError(t, err)
	assert.Equal(t, entrantes.ID, moved.CategoryID)
	got, err := svc.GetProduct(ctx, flan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flan de huevo", got.Name)

	require.NoError(t, svc.DeleteCategory(ctx, e.admin, postres.ID))
	require.NoError(t, svc.DeleteProduct(ctx, e.admin, flan.ID))
	_, err = svc.GetProduct(ctx, flan.ID)
	requireKind(t, err, domain.ErrNotFound)
	requireKind(t, svc.DeleteProduct(ctx, e.admin, flan.ID), domain.ErrNotFound)

	upd, err := svc.UpdateCategory(ctx, e.admin, entrantes.ID, CategoryInput{Name: "Para picar", Photo: "tapas.jpg", Order: 0})
	require.NoError(t, err)
	assert.Equal(t, "Para picar", upd.Name)
	_, err = svc.UpdateCategory(ctx, e.admin, postres.ID, CategoryInput{Name: "x"})
	requireKind(t, err, domain.ErrNotFound)
}
