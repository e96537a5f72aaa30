package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-system/internal/domain"
)

func sampleAggregate() domain.OrderAggregate {
	menuID := "m1"
	drinkID := "d1"
	return domain.OrderAggregate{
		Order: domain.Order{
			ID:      "ord-1",
			Status:  domain.OrderServed,
			Cash:    10,
			Card:    2.5,
			Balance: 1.01,
			Total:   11.49,
		},
		TableNo:    "5",
		WaiterName: "ana",
		Items: []domain.OrderItem{
			{MenuItemID: &menuID, Name: "Margherita", Quantity: 1, UnitPrice: 8.99, Total: 8.99},
			{DrinkID: &drinkID, Name: "Cola", Quantity: 1, UnitPrice: 2.5, Total: 2.5},
		},
		Totals: domain.Totals{Quantity: 2, Price: 11.49},
	}
}

var printedAt = time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)

func TestRenderBill(t *testing.T) {
	out := RenderBill(sampleAggregate(), printedAt)

	assert.Contains(t, out, "*** BILL ***")
	assert.Contains(t, out, "Table: 5")
	assert.Contains(t, out, "Waiter: ana")
	assert.Contains(t, out, "2025-03-14 18:30")
	assert.Contains(t, out, "Margherita")
	assert.Contains(t, out, "Cola")
	assert.Contains(t, out, "8.99")
	assert.Contains(t, out, "11.49")
	assert.Contains(t, out, "2 item(s)")
	assert.NotContains(t, out, "CHANGE", "bills carry no payment breakdown")
}

func TestRenderReceipt(t *testing.T) {
	out := RenderReceipt(sampleAggregate(), printedAt)

	assert.Contains(t, out, "*** RECEIPT ***")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "CASH")
	assert.Contains(t, out, "CARD")
	assert.Contains(t, out, "CHANGE")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "1.01")
}

func TestRenderKitchenTicketFoodOnly(t *testing.T) {
	out := RenderKitchenTicket(sampleAggregate(), printedAt)

	assert.Contains(t, out, "*** KITCHEN ***")
	assert.Contains(t, out, "Margherita")
	assert.NotContains(t, out, "Cola", "drinks never reach the kitchen")
	assert.NotContains(t, out, "8.99", "kitchen tickets carry no prices")
}

func TestRenderKitchenTicketNoFood(t *testing.T) {
	agg := sampleAggregate()
	drinkID := "d1"
	agg.Items = []domain.OrderItem{
		{DrinkID: &drinkID, Name: "Cola", Quantity: 2, UnitPrice: 2.5, Total: 5},
	}
	out := RenderKitchenTicket(agg, printedAt)
	assert.Contains(t, out, "(no food items)")
}

func TestRenderedLinesFitPrinterWidth(t *testing.T) {
	for name, out := range map[string]string{
		"bill":    RenderBill(sampleAggregate(), printedAt),
		"receipt": RenderReceipt(sampleAggregate(), printedAt),
		"kitchen": RenderKitchenTicket(sampleAggregate(), printedAt),
	} {
		for _, line := range strings.Split(out, "\n") {
			require.LessOrEqual(t, len(line), 40, "%s line too wide: %q", name, line)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	agg := sampleAggregate()
	assert.Equal(t, RenderBill(agg, printedAt), RenderBill(agg, printedAt))
}
