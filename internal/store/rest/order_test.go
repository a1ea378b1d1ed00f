package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosewear/storefront/internal/domain/order"
)

func TestOrderRepository_List_LegacySingleProduct(t *testing.T) {
	fs := newFakeStore(t)
	fs.on(http.MethodGet, "/orders", http.StatusOK, `[
		{
			"id": 1,
			"product": {"id": 7, "name": "Saree", "price": 1500, "size": "M"},
			"address": {"name": "Asha", "phone": "9876543210", "street": "12 Rose Lane", "city": "Kochi", "pincode": "682001"},
			"orderDate": "2024-03-01T10:00:00Z",
			"status": "pending"
		}
	]`)

	repo := NewOrderRepository(fs.client(t))
	all, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 1)

	o := all[0]
	// A legacy single-product order reads back as a one-element sequence.
	require.Len(t, o.Products, 1)
	assert.Equal(t, "7", o.Products[0].ProductID)
	assert.Equal(t, "M", o.Products[0].Size)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), o.Date)
	assert.Equal(t, order.StatusPending, o.Status)
	// No stored total: display falls back to the recomputed line total.
	assert.True(t, decimal.NewFromInt(1500).Equal(o.EffectiveTotal()))
}

func TestOrderRepository_List_CanonicalShape(t *testing.T) {
	fs := newFakeStore(t)
	fs.on(http.MethodGet, "/orders", http.StatusOK, `[
		{
			"id": 2,
			"reference": "ref-1",
			"products": [
				{"id": 1, "name": "Kurti", "price": 500, "quantity": 2},
				{"id": 2, "name": "Dupatta", "price": 300, "quantity": 1}
			],
			"address": {"name": "Asha", "phone": "9876543210", "street": "12 Rose Lane", "city": "Kochi", "pincode": "682001"},
			"date": "2024-04-05T09:30:00Z",
			"total": 1300,
			"status": "delivered"
		}
	]`)

	repo := NewOrderRepository(fs.client(t))
	all, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 1)

	o := all[0]
	assert.Equal(t, "2", o.ID)
	assert.Equal(t, "ref-1", o.Reference)
	assert.Len(t, o.Products, 2)
	assert.True(t, decimal.NewFromInt(1300).Equal(o.Total))
	assert.Equal(t, order.StatusDelivered, o.Status)
	assert.Equal(t, "Kochi", o.Address.City)
}

func TestOrderRepository_Create(t *testing.T) {
	fs := newFakeStore(t)
	fs.on(http.MethodPost, "/orders", http.StatusCreated, `{"id":11,"products":[],"status":"pending"}`)

	repo := NewOrderRepository(fs.client(t))
	o := &order.Order{
		Reference: "ref-9",
		Products: []order.Line{
			{ProductID: "1", Name: "Kurti", Price: decimal.NewFromInt(500), Quantity: 2},
		},
		Address: order.Address{Name: "Asha", Phone: "9876543210", Street: "12 Rose Lane", City: "Kochi", Pincode: "682001"},
		Date:    time.Date(2024, 4, 5, 9, 30, 0, 0, time.UTC),
		Total:   decimal.NewFromInt(1000),
		Status:  order.StatusPending,
	}

	require.NoError(t, repo.Create(context.Background(), o))
	assert.Equal(t, "11", o.ID)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(fs.requests[0].Body, &sent))
	// The store assigns IDs, so create must not send one.
	_, hasID := sent["id"]
	assert.False(t, hasID)
	assert.Equal(t, "pending", sent["status"])
	assert.Equal(t, float64(1000), sent["total"])
	assert.Equal(t, "2024-04-05T09:30:00Z", sent["date"])
}

func TestOrderRepository_Update(t *testing.T) {
	fs := newFakeStore(t)
	fs.on(http.MethodPut, "/orders/11", http.StatusOK, `{}`)

	repo := NewOrderRepository(fs.client(t))
	o := &order.Order{ID: "11", Status: order.StatusDelivered}

	require.NoError(t, repo.Update(context.Background(), o))
	assert.Equal(t, http.MethodPut, fs.requests[0].Method)
	assert.Equal(t, "/orders/11", fs.requests[0].Path)
}

func TestOrderRepository_UpdateMissing(t *testing.T) {
	fs := newFakeStore(t)

	repo := NewOrderRepository(fs.client(t))
	err := repo.Update(context.Background(), &order.Order{ID: "404"})

	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderRepository_Remove(t *testing.T) {
	fs := newFakeStore(t)
	fs.on(http.MethodDelete, "/orders/11", http.StatusOK, `{}`)

	repo := NewOrderRepository(fs.client(t))
	require.NoError(t, repo.Remove(context.Background(), "11"))

	err := repo.Remove(context.Background(), "12")
	require.ErrorIs(t, err, order.ErrNotFound)
}
