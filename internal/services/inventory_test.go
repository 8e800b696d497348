package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhanmaulana/eventgate/internal/models"
)

func TestInventoryLedger_Reserve(t *testing.T) {
	db := newTestDB(t)
	ledger := NewInventoryLedger(db, newTestLogger())
	event := seedEvent(t, db)
	tt := seedTicketType(t, db, event.ID, "25.00", 10)

	require.NoError(t, ledger.Reserve(db, tt.ID, 4))

	available, err := ledger.Available(tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, available)
}

func TestInventoryLedger_ReserveExactCapacity(t *testing.T) {
	db := newTestDB(t)
	ledger := NewInventoryLedger(db, newTestLogger())
	event := seedEvent(t, db)
	tt := seedTicketType(t, db, event.ID, "25.00", 3)

	require.NoError(t, ledger.Reserve(db, tt.ID, 3))

	available, err := ledger.Available(tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestInventoryLedger_ReserveBeyondCapacity(t *testing.T) {
	db := newTestDB(t)
	ledger := NewInventoryLedger(db, newTestLogger())
	event := seedEvent(t, db)
	tt := seedTicketType(t, db, event.ID, "25.00", 3)

	require.NoError(t, ledger.Reserve(db, tt.ID, 2))

	err := ledger.Reserve(db, tt.ID, 2)
	assert.ErrorIs(t, err, ErrInsufficientAvailability)

	// Rejection must not have moved the counter.
	var fresh models.TicketType
	require.NoError(t, db.First(&fresh, "id = ?", tt.ID).Error)
	assert.Equal(t, 2, fresh.Sold)
}

func TestInventoryLedger_ReserveUnknownType(t *testing.T) {
	db := newTestDB(t)
	ledger := NewInventoryLedger(db, newTestLogger())

	err := ledger.Reserve(db, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)
}

func TestInventoryLedger_Release(t *testing.T) {
	db := newTestDB(t)
	ledger := NewInventoryLedger(db, newTestLogger())
	event := seedEvent(t, db)
	tt := seedTicketType(t, db, event.ID, "25.00", 10)

	require.NoError(t, ledger.Reserve(db, tt.ID, 5))
	require.NoError(t, ledger.Release(db, tt.ID, 3))

	var fresh models.TicketType
	require.NoError(t, db.First(&fresh, "id = ?", tt.ID).Error)
	assert.Equal(t, 2, fresh.Sold)
}

func TestInventoryLedger_ReleaseNeverBelowZero(t *testing.T) {
	db := newTestDB(t)
	ledger := NewInventoryLedger(db, newTestLogger())
	event := seedEvent(t, db)
	tt := seedTicketType(t, db, event.ID, "25.00", 10)

	require.NoError(t, ledger.Reserve(db, tt.ID, 2))
	require.NoError(t, ledger.Release(db, tt.ID, 5))

	var fresh models.TicketType
	require.NoError(t, db.First(&fresh, "id = ?", tt.ID).Error)
	assert.Equal(t, 0, fresh.Sold)
}

func TestInventoryLedger_AvailableUnknownType(t *testing.T) {
	db := newTestDB(t)
	ledger := NewInventoryLedger(db, newTestLogger())

	_, err := ledger.Available(uuid.New())
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)
}
