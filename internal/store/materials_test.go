package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/models"
)

func TestCreateMaterial(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{})

	in := material("MAT1", "A4 Paper", 3, 5, 100)
	in.Barcode = "ABC123"
	m, err := s.CreateMaterial(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.StockCritical, m.Status)
	assert.Equal(t, testNow, m.LastUpdated)
	assert.Equal(t, testNow, m.LastCounted)

	_, err = s.CreateMaterial(ctx, material("MAT1", "Other", 1, 1, 2))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	dup := material("MAT2", "Other", 1, 1, 2)
	dup.Barcode = "abc123"
	_, err = s.CreateMaterial(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	var verr *ValidationError
	_, err = s.CreateMaterial(ctx, material("", "No code", 1, 1, 2))
	assert.ErrorAs(t, err, &verr)
	_, err = s.CreateMaterial(ctx, material("TON:26A", "Toner", 1, 1, 2))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "code", verr.Field)
}

func TestMaterialLookups(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{})
	a := material("MAT1", "A4 Paper", 50, 10, 200)
	a.Barcode = "8690000000001"
	mustMaterial(t, s, a)
	mustMaterial(t, s, material("MAT2", "Blue Pen", 2, 5, 100))
	mustMaterial(t, s, material("MAT3", "Coffee", 300, 5, 100))

	got, err := s.GetMaterial(ctx, "MAT2")
	require.NoError(t, err)
	assert.Equal(t, models.StockCritical, got.Status)

	_, err = s.GetMaterial(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	byBarcode, err := s.GetMaterialByBarcode(ctx, "8690000000001")
	require.NoError(t, err)
	assert.Equal(t, "MAT1", byBarcode.Code)
	_, err = s.GetMaterialByBarcode(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListMaterials(ctx, MaterialFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"MAT1", "MAT2", "MAT3"}, []string{all[0].Code, all[1].Code, all[2].Code})

	excess, err := s.ListMaterials(ctx, MaterialFilter{Status: models.StockExcess})
	require.NoError(t, err)
	require.Len(t, excess, 1)
	assert.Equal(t, "MAT3", excess[0].Code)

	search, err := s.ListMaterials(ctx, MaterialFilter{Search: "pEn"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "MAT2", search[0].Code)

	critical, err := s.CriticalMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "MAT2", critical[0].Code)
}

func TestUpdateMaterialKeepsCountStamp(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, Options{})
	mustMaterial(t, s, material("MAT1", "A4 Paper", 50, 10, 200))
	mustMaterial(t, s, material("MAT2", "Pen", 50, 10, 200))

	clock.Advance(time.Hour)
	in := material("MAT9", "A4 Paper 80g", 60, 10, 200)
	m, err := s.UpdateMaterial(ctx, "MAT1", in)
	require.NoError(t, err)
	assert.Equal(t, "MAT9", m.Code)
	assert.True(t, m.LastUpdated.Equal(testNow.Add(time.Hour)))
	assert.True(t, m.LastCounted.Equal(testNow), "count stamp must survive an update")

	_, err = s.UpdateMaterial(ctx, "MAT9", material("MAT2", "Clash", 1, 1, 2))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = s.UpdateMaterial(ctx, "missing", material("missing", "x", 1, 1, 2))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMaterial(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{})
	mustMaterial(t, s, material("MAT1", "A4 Paper", 50, 10, 200))

	ok, err := s.DeleteMaterial(ctx, "MAT1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteMaterial(ctx, "MAT1")
	require.NoError(t, err)
	assert.False(t, ok)
}
