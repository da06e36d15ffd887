package validation

import (
	"strings"
	"testing"

	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/models"
)

func fptr(v float64) *float64 { return &v }

func hasError(res Result, sub string) bool {
	for _, e := range res.Errors {
		if strings.Contains(e, sub) {
			return true
		}
	}
	return false
}

func TestClient(t *testing.T) {
	tests := []struct {
		name    string
		client  models.Client
		valid   bool
		errLike string
	}{
		{"valid minimal", models.Client{Name: "Ram"}, true, ""},
		{"valid full", models.Client{Name: "Ram", Address: "12 Teak Lane", Phone: "+91 (11) 2345-6789", Email: "ram@example.com"}, true, ""},
		{"empty name", models.Client{Name: ""}, false, "name"},
		{"whitespace name", models.Client{Name: "   "}, false, "name"},
		{"name too long", models.Client{Name: strings.Repeat("a", 201)}, false, "200"},
		{"address too long", models.Client{Name: "Ram", Address: strings.Repeat("a", 501)}, false, "500"},
		{"phone with letters", models.Client{Name: "Ram", Phone: "call me"}, false, "phone"},
		{"phone with allowed punctuation", models.Client{Name: "Ram", Phone: "+1 (555) 123.4567"}, true, ""},
		{"bad email", models.Client{Name: "Ram", Email: "not-an-email"}, false, "email"},
		{"email missing tld", models.Client{Name: "Ram", Email: "ram@host"}, false, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Client(tt.client)
			if res.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", res.Valid, tt.valid, res.Errors)
			}
			if tt.errLike != "" && !hasError(res, tt.errLike) {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.errLike)
			}
		})
	}
}

func TestClient_AccumulatesAllViolations(t *testing.T) {
	res := Client(models.Client{Name: "", Phone: "abc", Email: "nope"})
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(res.Errors), res.Errors)
	}
}

func TestLineItem(t *testing.T) {
	tests := []struct {
		name    string
		item    models.LineItem
		valid   bool
		errLike string
	}{
		{"valid", models.LineItem{Description: "Doors", Quantity: 2, UnitPrice: 500}, true, ""},
		{"zero price is fine", models.LineItem{Description: "Freebie", Quantity: 1, UnitPrice: 0}, true, ""},
		{"missing description", models.LineItem{Quantity: 1, UnitPrice: 10}, false, "description"},
		{"description too long", models.LineItem{Description: strings.Repeat("d", 501), Quantity: 1, UnitPrice: 10}, false, "500"},
		{"zero quantity", models.LineItem{Description: "x", Quantity: 0, UnitPrice: 10}, false, "quantity"},
		{"negative quantity", models.LineItem{Description: "x", Quantity: -1, UnitPrice: 10}, false, "quantity"},
		{"negative price", models.LineItem{Description: "x", Quantity: 1, UnitPrice: -10}, false, "unit price"},
		{"unit too long", models.LineItem{Description: "x", Quantity: 1, UnitPrice: 10, Unit: strings.Repeat("u", 21)}, false, "unit"},
		{"zero total quantity", models.LineItem{Description: "x", Quantity: 1, UnitPrice: 10, TotalQuantity: fptr(0)}, false, "total quantity"},
		{"valid total quantity", models.LineItem{Description: "x", Quantity: 12, UnitPrice: 150, TotalQuantity: fptr(144)}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := LineItem(tt.item)
			if res.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", res.Valid, tt.valid, res.Errors)
			}
			if tt.errLike != "" && !hasError(res, tt.errLike) {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.errLike)
			}
		})
	}
}

func TestLineItem_TotalCrossCheck(t *testing.T) {
	// Matching total passes, with tolerance for float drift.
	ok := models.LineItem{Description: "x", Quantity: 2, UnitPrice: 500, Total: 1000}
	if res := LineItem(ok); !res.Valid {
		t.Errorf("matching total rejected: %v", res.Errors)
	}
	drift := models.LineItem{Description: "x", Quantity: 2, UnitPrice: 500, Total: 1000.005}
	if res := LineItem(drift); !res.Valid {
		t.Errorf("total within tolerance rejected: %v", res.Errors)
	}

	// Mismatch names the quantity basis that was expected.
	bad := models.LineItem{Description: "x", Quantity: 2, UnitPrice: 500, Total: 900}
	res := LineItem(bad)
	if res.Valid {
		t.Fatal("mismatched total accepted")
	}
	if !hasError(res, "quantity") {
		t.Errorf("errors %v do not name the quantity basis", res.Errors)
	}

	// With an override, the expected value follows totalQuantity.
	override := models.LineItem{Description: "x", Quantity: 12, UnitPrice: 150, TotalQuantity: fptr(144), Total: 21600}
	if res := LineItem(override); !res.Valid {
		t.Errorf("override total rejected: %v", res.Errors)
	}
	overrideBad := models.LineItem{Description: "x", Quantity: 12, UnitPrice: 150, TotalQuantity: fptr(144), Total: 1800}
	res = LineItem(overrideBad)
	if res.Valid {
		t.Fatal("naive quantity x price total accepted despite override")
	}
	if !hasError(res, "total quantity") {
		t.Errorf("errors %v do not name total quantity as the basis", res.Errors)
	}
}

func TestInvoice(t *testing.T) {
	valid := models.Invoice{
		ClientID:  "c1",
		LineItems: []models.LineItem{{Description: "Doors", Quantity: 2, UnitPrice: 500}},
		IssueDate: 1700000000000,
		DueDate:   1700000000000 + 86400000,
		Status:    models.StatusDraft,
	}
	if res := Invoice(valid); !res.Valid {
		t.Fatalf("valid invoice rejected: %v", res.Errors)
	}

	tests := []struct {
		name    string
		mutate  func(models.Invoice) models.Invoice
		errLike string
	}{
		{"missing client", func(i models.Invoice) models.Invoice { i.ClientID = ""; return i }, "client"},
		{"no line items", func(i models.Invoice) models.Invoice { i.LineItems = nil; return i }, "at least one line item"},
		{"missing issue date", func(i models.Invoice) models.Invoice { i.IssueDate = 0; return i }, "issue date"},
		{"due before issue", func(i models.Invoice) models.Invoice { i.DueDate = i.IssueDate - 1; return i }, "due date"},
		{"unknown status", func(i models.Invoice) models.Invoice { i.Status = "void"; return i }, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Invoice(tt.mutate(valid))
			if res.Valid {
				t.Fatal("expected invalid")
			}
			if !hasError(res, tt.errLike) {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.errLike)
			}
		})
	}
}

func TestInvoice_LineItemErrorsCarryIndex(t *testing.T) {
	inv := models.Invoice{
		ClientID: "c1",
		LineItems: []models.LineItem{
			{Description: "ok", Quantity: 1, UnitPrice: 10},
			{Description: "", Quantity: -1, UnitPrice: 10},
		},
		IssueDate: 1700000000000,
	}
	res := Invoice(inv)
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if !hasError(res, "line item 2:") {
		t.Errorf("errors %v do not carry the 1-based item index", res.Errors)
	}
	if hasError(res, "line item 1:") {
		t.Errorf("errors %v flag the valid first item", res.Errors)
	}
}

func TestInvoice_EmptyStatusIsAbsent(t *testing.T) {
	inv := models.Invoice{
		ClientID:  "c1",
		LineItems: []models.LineItem{{Description: "x", Quantity: 1, UnitPrice: 10}},
		IssueDate: 1700000000000,
	}
	if res := Invoice(inv); !res.Valid {
		t.Errorf("invoice with absent status rejected: %v", res.Errors)
	}
}
