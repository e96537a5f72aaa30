package printing

import (
	"fmt"
	"strings"
	"time"

	"pos-system/internal/domain"
)

const lineWidth = 40

// Render* produce the fixed-width text documents the POS hands to the
// platform print dialog. They are pure: same aggregate in, same bytes out.

// RenderBill is the pre-payment summary a guest asks for.
func RenderBill(agg domain.OrderAggregate, at time.Time) string {
	var b strings.Builder
	header(&b, "BILL", agg, at)
	itemLines(&b, agg.Items, true)
	rule(&b)
	totalLine(&b, "TOTAL", agg.Totals.Price)
	fmt.Fprintf(&b, "%*s\n", lineWidth, fmt.Sprintf("%d item(s)", agg.Totals.Quantity))
	b.WriteString(center("Thank you for your visit!"))
	return b.String()
}

// RenderReceipt is the post-payment document with the cash/card/change
// breakdown.
func RenderReceipt(agg domain.OrderAggregate, at time.Time) string {
	var b strings.Builder
	header(&b, "RECEIPT", agg, at)
	itemLines(&b, agg.Items, true)
	rule(&b)
	totalLine(&b, "TOTAL", agg.Order.Total)
	totalLine(&b, "CASH", agg.Order.Cash)
	totalLine(&b, "CARD", agg.Order.Card)
	totalLine(&b, "CHANGE", agg.Order.Balance)
	b.WriteString(center("Paid. Thank you!"))
	return b.String()
}

// RenderKitchenTicket lists food items and quantities only; drinks never
// reach the kitchen.
func RenderKitchenTicket(agg domain.OrderAggregate, at time.Time) string {
	var b strings.Builder
	header(&b, "KITCHEN", agg, at)
	n := 0
	for _, i := range agg.Items {
		if i.Kind() != domain.KindFood {
			continue
		}
		fmt.Fprintf(&b, "%2dx %s\n", i.Quantity, i.Name)
		n++
	}
	if n == 0 {
		b.WriteString(center("(no food items)"))
	}
	rule(&b)
	return b.String()
}

func header(b *strings.Builder, title string, agg domain.OrderAggregate, at time.Time) {
	b.WriteString(center("*** " + title + " ***"))
	fmt.Fprintf(b, "Table: %-10s Waiter: %s\n", agg.TableNo, agg.WaiterName)
	fmt.Fprintf(b, "Order: %s\n", agg.Order.ID)
	fmt.Fprintf(b, "Date:  %s\n", at.Format("2006-01-02 15:04"))
	rule(b)
}

func itemLines(b *strings.Builder, items []domain.OrderItem, withPrices bool) {
	for _, i := range items {
		name := i.Name
		if len(name) > 22 {
			name = name[:22]
		}
		if withPrices {
			fmt.Fprintf(b, "%2dx %-22s %9s\n", i.Quantity, name, domain.FormatAmount(i.Total))
		} else {
			fmt.Fprintf(b, "%2dx %s\n", i.Quantity, name)
		}
	}
}

func totalLine(b *strings.Builder, label string, amount float64) {
	fmt.Fprintf(b, "%-*s%s\n", lineWidth-9, label, fmt.Sprintf("%9s", domain.FormatAmount(amount)))
}

func rule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
}

func center(s string) string {
	if len(s) >= lineWidth {
		return s + "\n"
	}
	pad := (lineWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s + "\n"
}
