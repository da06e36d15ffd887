// Package calc holds the monetary arithmetic for invoices. Every function is
// pure; invalid numeric input (negative or NaN quantities and prices) is
// reported as an error wrapping ErrInvalidAmount rather than silently
// producing garbage totals.
package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/models"
)

// ErrInvalidAmount is the category for malformed numeric input. Callers are
// expected to have validated shapes already, so hitting it indicates a
// programming error upstream.
var ErrInvalidAmount = errors.New("invalid amount")

// RoundMoney rounds to 2 decimal places, half away from zero on cents.
// Each monetary boundary (line total, subtotal, tax, total) rounds
// independently; totals are sums of already-rounded line totals.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// ResolveQuantity returns the multiplicand for a line item's total:
// TotalQuantity when present, Quantity otherwise. The override rule lives
// here and nowhere else.
func ResolveQuantity(li models.LineItem) float64 {
	if li.TotalQuantity != nil {
		return *li.TotalQuantity
	}
	return li.Quantity
}

// LineItemTotal computes a line total from its authoritative inputs.
// totalQuantity may be nil; when set it replaces quantity in the product.
func LineItemTotal(quantity, unitPrice float64, totalQuantity *float64) (float64, error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return 0, fmt.Errorf("%w: quantity is not a number", ErrInvalidAmount)
	}
	if math.IsNaN(unitPrice) || math.IsInf(unitPrice, 0) {
		return 0, fmt.Errorf("%w: unit price is not a number", ErrInvalidAmount)
	}
	if quantity < 0 {
		return 0, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidAmount)
	}
	if unitPrice < 0 {
		return 0, fmt.Errorf("%w: unit price cannot be negative", ErrInvalidAmount)
	}
	qty := quantity
	if totalQuantity != nil {
		tq := *totalQuantity
		if math.IsNaN(tq) || math.IsInf(tq, 0) {
			return 0, fmt.Errorf("%w: total quantity is not a number", ErrInvalidAmount)
		}
		if tq < 0 {
			return 0, fmt.Errorf("%w: total quantity cannot be negative", ErrInvalidAmount)
		}
		qty = tq
	}
	return RoundMoney(qty * unitPrice), nil
}

// Subtotal sums freshly computed line totals, ignoring any stale Total
// already stored on the items.
func Subtotal(items []models.LineItem) (float64, error) {
	var sum float64
	for i, li := range items {
		total, err := LineItemTotal(li.Quantity, li.UnitPrice, li.TotalQuantity)
		if err != nil {
			return 0, fmt.Errorf("line item %d: %w", i+1, err)
		}
		sum += total
	}
	return RoundMoney(sum), nil
}

// Tax computes the tax amount for a subtotal at the given rate.
func Tax(subtotal, rate float64) (float64, error) {
	if math.IsNaN(subtotal) || math.IsInf(subtotal, 0) || subtotal < 0 {
		return 0, fmt.Errorf("%w: subtotal must be a non-negative number", ErrInvalidAmount)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0, fmt.Errorf("%w: tax rate must be a non-negative number", ErrInvalidAmount)
	}
	return RoundMoney(subtotal * rate), nil
}

// Total computes the grand total from an already-rounded subtotal and tax.
func Total(subtotal, tax float64) (float64, error) {
	if math.IsNaN(subtotal) || math.IsInf(subtotal, 0) || subtotal < 0 {
		return 0, fmt.Errorf("%w: subtotal must be a non-negative number", ErrInvalidAmount)
	}
	if math.IsNaN(tax) || math.IsInf(tax, 0) || tax < 0 {
		return 0, fmt.Errorf("%w: tax must be a non-negative number", ErrInvalidAmount)
	}
	return RoundMoney(subtotal + tax), nil
}

// Totals is the result of InvoiceTotals: the stamped line items plus the
// derived invoice amounts.
type Totals struct {
	LineItems []models.LineItem
	Subtotal  float64
	Tax       float64
	Total     float64
}

// InvoiceTotals recomputes everything derived from a set of line items. It is
// the single source of truth for what an invoice costs: every item comes back
// stamped with a fresh Total, and subtotal, tax and total are each rounded at
// their own boundary. The input slice is not modified.
func InvoiceTotals(items []models.LineItem, taxRate float64) (Totals, error) {
	stamped := models.CloneLineItems(items)
	var subtotal float64
	for i := range stamped {
		total, err := LineItemTotal(stamped[i].Quantity, stamped[i].UnitPrice, stamped[i].TotalQuantity)
		if err != nil {
			return Totals{}, fmt.Errorf("line item %d: %w", i+1, err)
		}
		stamped[i].Total = total
		subtotal += total
	}
	subtotal = RoundMoney(subtotal)
	tax, err := Tax(subtotal, taxRate)
	if err != nil {
		return Totals{}, err
	}
	grand, err := Total(subtotal, tax)
	if err != nil {
		return Totals{}, err
	}
	return Totals{LineItems: stamped, Subtotal: subtotal, Tax: tax, Total: grand}, nil
}
