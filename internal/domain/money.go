package domain

import (
	"fmt"
	"math"
)

// RoundCents rounds a currency amount half-up at the cent. Every computed
// total goes through this before it is stored or compared.
func RoundCents(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}

// LineTotal is the only way an item total is computed.
func LineTotal(unitPrice float64, quantity int) float64 {
	return RoundCents(unitPrice * float64(quantity))
}

// FormatAmount renders an amount as a fixed 2-decimal string for display
// and printing.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", RoundCents(amount))
}
