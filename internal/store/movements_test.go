package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/models"
)

func TestCreateMovementAdjustsStock(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{})
	mustMaterial(t, s, material("MAT1", "A4 Paper", 50, 10, 200))

	_, err := s.CreateMovement(ctx, MovementInput{MaterialCode: "MAT1", Type: models.MovementIn, Quantity: 25})
	require.NoError(t, err)
	m, err := s.GetMaterial(ctx, "MAT1")
	require.NoError(t, err)
	assert.Equal(t, 75.0, m.Stock)

	_, err = s.CreateMovement(ctx, MovementInput{MaterialCode: "MAT1", Type: "out", Quantity: 5})
	require.NoError(t, err)
	m, err = s.GetMaterial(ctx, "MAT1")
	require.NoError(t, err)
	assert.Equal(t, 70.0, m.Stock)

	notes, err := s.ListNotifications(ctx, "admin")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestCreateMovementFloorsAtZeroAndNotifies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{AdminRecipient: "boss"})
	mustMaterial(t, s, material("MAT1", "Toner", 3, 2, 10))

	_, err := s.CreateMovement(ctx, MovementInput{MaterialCode: "MAT1", Type: models.MovementOut, Quantity: 10})
	require.NoError(t, err)

	m, err := s.GetMaterial(ctx, "MAT1")
	require.NoError(t, err)
	assert.Zero(t, m.Stock)
	assert.Equal(t, models.StockCritical, m.Status)

	notes, err := s.ListNotifications(ctx, "boss")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotifyCriticalStock, notes[0].Type)
	assert.Contains(t, notes[0].Message, "Current: 0, Minimum: 2")
	assert.Equal(t, "/materials", notes[0].Link)
}

func TestCreateMovementAtMinimumNotifies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{})
	mustMaterial(t, s, material("MAT1", "Toner", 7, 5, 10))

	_, err := s.CreateMovement(ctx, MovementInput{MaterialCode: "MAT1", Type: models.MovementOut, Quantity: 2})
	require.NoError(t, err)
	n, err := s.UnreadCount(ctx, "admin")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCreateMovementRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{})
	mustMaterial(t, s, material("MAT1", "A4 Paper", 50, 10, 200))

	var verr *ValidationError
	_, err := s.CreateMovement(ctx, MovementInput{MaterialCode: "MAT1", Type: models.MovementIn, Quantity: 0})
	assert.ErrorAs(t, err, &verr)
	_, err = s.CreateMovement(ctx, MovementInput{MaterialCode: "MAT1", Type: "SIDEWAYS", Quantity: 1})
	assert.ErrorAs(t, err, &verr)

	_, err = s.CreateMovement(ctx, MovementInput{MaterialCode: "NOPE", Type: models.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListMovements(ctx, MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, all, "failed movements must not be persisted")
}

func TestListMovementsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Options{})
	mustMaterial(t, s, material("MAT1", "A4 Paper", 50, 10, 200))
	mustMaterial(t, s, material("MAT2", "Pen", 50, 10, 200))

	for _, in := range []MovementInput{
		{MaterialCode: "MAT1", Type: models.MovementIn, Quantity: 1},
		{MaterialCode: "MAT2", Type: models.MovementOut, Quantity: 2},
		{MaterialCode: "MAT1", Type: models.MovementOut, Quantity: 3},
	} {
		_, err := s.CreateMovement(ctx, in)
		require.NoError(t, err)
	}

	all, err := s.ListMovements(ctx, MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3.0, all[0].Quantity)
	assert.Equal(t, 1.0, all[2].Quantity)

	outs, err := s.ListMovements(ctx, MovementFilter{MaterialCode: "MAT1", Type: models.MovementOut})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, 3.0, outs[0].Quantity)
}
