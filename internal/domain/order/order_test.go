package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{name: "pending to delivered", from: StatusPending, to: StatusDelivered},
		{name: "pending to cancelled", from: StatusPending, to: StatusCancelled},
		{name: "delivered is terminal", from: StatusDelivered, to: StatusCancelled, wantErr: true},
		{name: "cancelled is terminal", from: StatusCancelled, to: StatusDelivered, wantErr: true},
		{name: "no way back to pending", from: StatusPending, to: StatusPending, wantErr: true},
		{name: "unknown status rejected", from: StatusPending, to: Status("shipped"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from}
			err := o.TransitionTo(tt.to)
			if tt.wantErr {
				var itErr *InvalidTransitionError
				require.ErrorAs(t, err, &itErr)
				assert.Equal(t, tt.from, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.Status)
		})
	}
}

func TestLineTotal(t *testing.T) {
	o := &Order{
		Products: []Line{
			{Name: "Kurti", Price: decimal.NewFromInt(500), Quantity: 2},
			{Name: "Dupatta", Price: decimal.NewFromInt(300)}, // missing quantity counts as one
		},
	}
	assert.True(t, decimal.NewFromInt(1300).Equal(o.LineTotal()))
}

func TestEffectiveTotal(t *testing.T) {
	o := &Order{
		Products: []Line{{Name: "Saree", Price: decimal.NewFromInt(1500), Quantity: 1}},
		Total:    decimal.NewFromInt(1500),
	}
	assert.True(t, decimal.NewFromInt(1500).Equal(o.EffectiveTotal()))

	// Legacy orders carry no stored total; it is recomputed from the lines.
	legacy := &Order{
		Products: []Line{{Name: "Saree", Price: decimal.NewFromInt(1500), Quantity: 2}},
	}
	assert.True(t, decimal.NewFromInt(3000).Equal(legacy.EffectiveTotal()))
}

func TestAddressComplete(t *testing.T) {
	addr := Address{Name: "Asha", Phone: "9876543210", Street: "12 Rose Lane", City: "Kochi", Pincode: "682001"}
	assert.True(t, addr.Complete())

	for _, clear := range []func(*Address){
		func(a *Address) { a.Name = "" },
		func(a *Address) { a.Phone = "" },
		func(a *Address) { a.Street = "" },
		func(a *Address) { a.City = "" },
		func(a *Address) { a.Pincode = "" },
	} {
		blank := addr
		clear(&blank)
		assert.False(t, blank.Complete())
	}
}
