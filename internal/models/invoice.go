package models

import "time"

// Status represents the lifecycle state of an invoice. The set is a fixed
// enumeration; any status may follow any other (there is no state machine).
type Status string

const (
	StatusDraft  Status = "draft"
	StatusIssued Status = "issued"
	StatusPaid   Status = "paid"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPaid:
		return true
	}
	return false
}

// LineItem is one billable row on an invoice. Quantity and UnitPrice are the
// authoritative inputs; Total is derived and recomputed on every calculation.
// TotalQuantity, when set, overrides Quantity as the multiplicand for the
// line total (Quantity stays on display duty).
type LineItem struct {
	ID            string   `json:"id"`
	Description   string   `json:"description"`
	Quantity      float64  `json:"quantity"`
	UnitPrice     float64  `json:"unitPrice"`
	Total         float64  `json:"total"`
	Unit          string   `json:"unit,omitempty"`
	TotalQuantity *float64 `json:"totalQuantity,omitempty"`
}

// Clone returns a value copy of the line item, including its own copy of
// TotalQuantity so the clone shares no pointers with the source.
func (li LineItem) Clone() LineItem {
	out := li
	if li.TotalQuantity != nil {
		tq := *li.TotalQuantity
		out.TotalQuantity = &tq
	}
	return out
}

// Invoice is a billing document tied to a client. Client is a point-in-time
// snapshot copied at creation; later edits to the source client do not touch
// it. Subtotal, Tax and Total are derived values.
type Invoice struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	ClientID      string     `json:"clientId"`
	Client        Client     `json:"client"`
	LineItems     []LineItem `json:"lineItems"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	IssueDate     int64      `json:"issueDate"`
	DueDate       int64      `json:"dueDate,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Status        Status     `json:"status"`
	CreatedAt     int64      `json:"createdAt"`
	UpdatedAt     int64      `json:"updatedAt"`
}

// Clone returns a deep copy of the invoice: the line-items slice and every
// item in it are fresh values.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.LineItems = CloneLineItems(inv.LineItems)
	return out
}

// CloneLineItems deep-copies a line-item slice. A nil input yields an empty,
// non-nil slice so callers can append without nil checks.
func CloneLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, li := range items {
		out = append(out, li.Clone())
	}
	return out
}

// Dataset is the export/import document: the whole repository state as a
// single JSON value. Counter is kept as a decimal string, matching how it is
// persisted.
type Dataset struct {
	Clients  []Client  `json:"clients"`
	Invoices []Invoice `json:"invoices"`
	Counter  string    `json:"counter"`
}

// NowMillis returns the current time as Unix milliseconds, the timestamp
// representation used across all entities.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
