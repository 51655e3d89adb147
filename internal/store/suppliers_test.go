package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierCRUD(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{})

	in := NewSupplierInput()
	in.Code, in.Name, in.Category = "TED001", "ABC Kırtasiye", "Stationery"
	sp, err := s.CreateSupplier(ctx, in)
	require.NoError(t, err)
	assert.True(t, sp.Active)
	assert.Equal(t, 5.0, sp.Rating)

	_, err = s.CreateSupplier(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	var verr *ValidationError
	_, err = s.CreateSupplier(ctx, SupplierInput{Code: "TED002", Name: "X", Rating: 7})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rating", verr.Field)

	other := NewSupplierInput()
	other.Code, other.Name, other.Category = "TED002", "Temizlik Market", "Cleaning"
	_, err = s.CreateSupplier(ctx, other)
	require.NoError(t, err)

	_, err = s.CreateOrder(ctx, orderInput())
	require.NoError(t, err)

	inactive := false
	upd := SupplierInput{Name: "ABC Kırtasiye A.Ş.", Category: "Stationery", Rating: 4.5, Active: &inactive}
	sp, err = s.UpdateSupplier(ctx, "TED001", upd)
	require.NoError(t, err)
	assert.Equal(t, "TED001", sp.Code)
	assert.False(t, sp.Active)
	assert.Equal(t, 1, sp.OrderCount)
	assert.NotNil(t, sp.LastOrderAt)

	upd.Code = "TED002"
	_, err = s.UpdateSupplier(ctx, "TED001", upd)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	_, err = s.UpdateSupplier(ctx, "NOPE", NewSupplierInput())
	assert.Error(t, err)

	active := true
	list, err := s.ListSuppliers(ctx, SupplierFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "TED002", list[0].Code)

	list, err = s.ListSuppliers(ctx, SupplierFilter{Category: "Stationery"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "TED001", list[0].Code)

	ok, err := s.DeleteSupplier(ctx, "TED002")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeleteSupplier(ctx, "TED002")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = s.GetSupplier(ctx, "TED002")
	assert.ErrorIs(t, err, ErrNotFound)
}
