package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mise/internal/domain/catalog"
	"mise/internal/domain/location"
)

func sampleState() location.State {
	cost := 4.10
	return location.State{
		Suppliers: []catalog.Supplier{
			{SupplierID: "sup-dairy", Name: "Hilltop Dairy", PayoutAddress: "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"},
		},
		Skus: []catalog.Sku{
			{Sku: "milk", Name: "Whole milk", Unit: "gal", SupplierID: "sup-dairy", UnitCostUsd: &cost},
		},
		Inventory: map[string]float64{"milk": 12},
		UpdatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "loc-1", sampleState()))

	got, err := s.Get(ctx, "loc-1")
	require.NoError(t, err)
	assert.Equal(t, sampleState(), *got)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := sampleState()
	second := sampleState()
	second.Inventory["milk"] = 3

	require.NoError(t, s.Set(ctx, "loc-1", first))
	require.NoError(t, s.Set(ctx, "loc-2", second))

	got1, err := s.Get(ctx, "loc-1")
	require.NoError(t, err)
	got2, err := s.Get(ctx, "loc-2")
	require.NoError(t, err)
	assert.Equal(t, float64(12), got1.Inventory["milk"])
	assert.Equal(t, float64(3), got2.Inventory["milk"])
}

func TestMemoryStore_ReturnedStateIsACopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "loc-1", sampleState()))

	got, err := s.Get(ctx, "loc-1")
	require.NoError(t, err)
	got.Inventory["milk"] = 0

	again, err := s.Get(ctx, "loc-1")
	require.NoError(t, err)
	assert.Equal(t, float64(12), again.Inventory["milk"], "mutating a read result must not affect the store")
}
