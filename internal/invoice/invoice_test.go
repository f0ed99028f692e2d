package invoice

import (
	"testing"
	"time"

	"parfum/internal/domain/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	label := "100ml"
	o := &orders.Order{
		ID:            1,
		OrderNumber:   "PRF-9XK2M4QA",
		CustomerName:  "Lina Haddad",
		CustomerEmail: "lina@example.com",
		CustomerPhone: "+96170000000",
		AddressLine1:  "12 Rue des Fleurs",
		City:          "Beirut",
		Country:       "Lebanon",
		SubtotalCents: 13000,
		ShippingCents: 1000,
		TotalCents:    14000,
		Status:        orders.StatusPending,
		CreatedAt:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	items := []orders.OrderItem{
		{Name: "Oud Royal", VariantLabel: &label, Quantity: 2, UnitPriceCents: 5000, TotalCents: 10000},
		{Name: "Rose Mist", Quantity: 1, UnitPriceCents: 3000, TotalCents: 3000},
	}

	out, err := Render(o, items)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", money(0))
	assert.Equal(t, "$12.05", money(1205))
	assert.Equal(t, "$5.00", money(500))
}
