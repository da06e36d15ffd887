// Package validation provides the shape checks for clients, line items and
// invoices. Validators are pure and never panic: every violation is appended
// to the result so callers see the full list at once.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/calc"
	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/models"
)

const (
	maxNameLen        = 200
	maxAddressLen     = 500
	maxDescriptionLen = 500
	maxUnitLen        = 20

	// Tolerance when cross-checking a stored line total against the value
	// recomputed from quantity and price, to absorb floating-point drift.
	totalTolerance = 0.01
)

var (
	phoneRe = regexp.MustCompile(`^[0-9\s().+-]+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Result reports the outcome of a validation. Errors holds every violation
// found; Valid is true only when Errors is empty.
type Result struct {
	Valid  bool
	Errors []string
}

func result(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Client validates a client record. Name is required (non-empty after trim,
// at most 200 characters); address, phone and email are optional but checked
// for length and format when present.
func Client(c models.Client) Result {
	var errs []string
	name := strings.TrimSpace(c.Name)
	if name == "" {
		errs = append(errs, "client name is required")
	} else if len(name) > maxNameLen {
		errs = append(errs, fmt.Sprintf("client name must be at most %d characters", maxNameLen))
	}
	if len(c.Address) > maxAddressLen {
		errs = append(errs, fmt.Sprintf("address must be at most %d characters", maxAddressLen))
	}
	if c.Phone != "" && !phoneRe.MatchString(c.Phone) {
		errs = append(errs, "phone may only contain digits, spaces, parentheses, dashes, plus signs and dots")
	}
	if c.Email != "" && !emailRe.MatchString(c.Email) {
		errs = append(errs, "email must be a valid address")
	}
	return result(errs)
}

// LineItem validates a line item. Description is required; quantity must be
// positive and unit price non-negative. When the item already carries a
// non-zero Total it is cross-checked against the value recomputed from the
// quantity basis, within a small tolerance.
func LineItem(li models.LineItem) Result {
	return result(lineItemErrors(li))
}

func lineItemErrors(li models.LineItem) []string {
	var errs []string
	desc := strings.TrimSpace(li.Description)
	if desc == "" {
		errs = append(errs, "description is required")
	} else if len(desc) > maxDescriptionLen {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	qtyOK := isFinite(li.Quantity) && li.Quantity > 0
	if !qtyOK {
		errs = append(errs, "quantity must be a number greater than zero")
	}
	priceOK := isFinite(li.UnitPrice) && li.UnitPrice >= 0
	if !priceOK {
		errs = append(errs, "unit price must be a number of at least zero")
	}
	if len(li.Unit) > maxUnitLen {
		errs = append(errs, fmt.Sprintf("unit must be at most %d characters", maxUnitLen))
	}
	tqOK := true
	if li.TotalQuantity != nil {
		tqOK = isFinite(*li.TotalQuantity) && *li.TotalQuantity > 0
		if !tqOK {
			errs = append(errs, "total quantity must be a number greater than zero")
		}
	}
	if li.Total != 0 && qtyOK && priceOK && tqOK {
		expected, err := calc.LineItemTotal(li.Quantity, li.UnitPrice, li.TotalQuantity)
		if err == nil && math.Abs(li.Total-expected) > totalTolerance {
			basis := "quantity"
			if li.TotalQuantity != nil {
				basis = "total quantity"
			}
			errs = append(errs, fmt.Sprintf("total %.2f does not match %s x unit price (expected %.2f)", li.Total, basis, expected))
		}
	}
	return errs
}

// Invoice validates an invoice: it must reference a client, carry at least
// one valid line item, have a usable issue date, a due date not before the
// issue date when set, and a status from the known enumeration. Line-item
// violations are prefixed with the 1-based item index.
func Invoice(inv models.Invoice) Result {
	var errs []string
	if strings.TrimSpace(inv.ClientID) == "" {
		errs = append(errs, "client is required")
	}
	if len(inv.LineItems) == 0 {
		errs = append(errs, "invoice must have at least one line item")
	}
	for i, li := range inv.LineItems {
		for _, msg := range lineItemErrors(li) {
			errs = append(errs, fmt.Sprintf("line item %d: %s", i+1, msg))
		}
	}
	if inv.IssueDate <= 0 {
		errs = append(errs, "issue date is required")
	}
	if inv.DueDate != 0 && inv.IssueDate > 0 && inv.DueDate < inv.IssueDate {
		errs = append(errs, "due date cannot be before the issue date")
	}
	if inv.Status != "" && !inv.Status.Valid() {
		errs = append(errs, fmt.Sprintf("status %q is not one of draft, issued, paid", inv.Status))
	}
	return result(errs)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
