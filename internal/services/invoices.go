package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/calc"
	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/models"
	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/storage"
	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/validation"
)

// defaultTaxRate is the rate every total recomputation uses. The calculator
// supports nonzero rates; this product bills without tax.
const defaultTaxRate = 0

// defaultPaymentTerm is how far the due date sits past the issue date on new
// and duplicated invoices.
const defaultPaymentTerm = 30 * 24 * time.Hour

// InvoiceService enforces invoice lifecycle rules over the repository and
// the calculation utilities. Mutators never modify the invoice passed in;
// they return a new value with totals freshly recomputed.
type InvoiceService struct {
	repo *storage.Repository
}

// NewInvoiceService builds an invoice service over the given repository.
func NewInvoiceService(repo *storage.Repository) *InvoiceService {
	return &InvoiceService{repo: repo}
}

// LineItemInput is the caller-supplied portion of a line item: everything
// except the id and the derived total.
type LineItemInput struct {
	Description   string
	Quantity      float64
	UnitPrice     float64
	Unit          string
	TotalQuantity *float64
}

// Create builds a new draft invoice for an existing client: fresh id, next
// sequential invoice number, a snapshot copy of the client as it is right
// now, empty line items, zeroed totals, issue date now and due date 30 days
// out. The invoice is returned in memory only; nothing is persisted except
// the consumed invoice number.
func (s *InvoiceService) Create(clientID string) (models.Invoice, error) {
	client, ok, err := s.repo.ClientByID(clientID)
	if err != nil {
		return models.Invoice{}, err
	}
	if !ok {
		return models.Invoice{}, fmt.Errorf("client %s: %w", clientID, storage.ErrNotFound)
	}
	number, err := s.repo.NextInvoiceNumber()
	if err != nil {
		return models.Invoice{}, err
	}
	now := models.NowMillis()
	return models.Invoice{
		ID:            uuid.NewString(),
		InvoiceNumber: number,
		ClientID:      client.ID,
		Client:        client,
		LineItems:     []models.LineItem{},
		IssueDate:     now,
		DueDate:       now + defaultPaymentTerm.Milliseconds(),
		Status:        models.StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// AddLineItem validates the input, stamps it with a fresh id, and returns a
// new invoice with the item appended and totals recomputed.
func (s *InvoiceService) AddLineItem(inv models.Invoice, in LineItemInput) (models.Invoice, error) {
	li := models.LineItem{
		ID:            uuid.NewString(),
		Description:   in.Description,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		Unit:          in.Unit,
		TotalQuantity: in.TotalQuantity,
	}
	if res := validation.LineItem(li); !res.Valid {
		return models.Invoice{}, &ValidationError{Errors: res.Errors}
	}
	out := inv.Clone()
	out.LineItems = append(out.LineItems, li.Clone())
	return s.recalculate(out)
}

// UpdateLineItem replaces the line item with the same id and returns a new
// invoice with totals recomputed. Unknown item ids fail with the not-found
// category.
func (s *InvoiceService) UpdateLineItem(inv models.Invoice, item models.LineItem) (models.Invoice, error) {
	// The total is derived; drop whatever the caller sent before validating
	// and let the recomputation stamp the real one.
	item = item.Clone()
	item.Total = 0
	if res := validation.LineItem(item); !res.Valid {
		return models.Invoice{}, &ValidationError{Errors: res.Errors}
	}
	out := inv.Clone()
	found := false
	for i := range out.LineItems {
		if out.LineItems[i].ID == item.ID {
			out.LineItems[i] = item
			found = true
			break
		}
	}
	if !found {
		return models.Invoice{}, fmt.Errorf("line item %s: %w", item.ID, storage.ErrNotFound)
	}
	return s.recalculate(out)
}

// RemoveLineItem returns a new invoice without the named item, totals
// recomputed. Removing an absent item is a no-op apart from the recount.
func (s *InvoiceService) RemoveLineItem(inv models.Invoice, itemID string) (models.Invoice, error) {
	out := inv.Clone()
	items := out.LineItems[:0]
	for _, li := range out.LineItems {
		if li.ID != itemID {
			items = append(items, li)
		}
	}
	out.LineItems = items
	return s.recalculate(out)
}

// CalculateTotals strips every stored line total and reruns the full
// calculation, so totals can never drift from the authoritative quantity,
// price and total-quantity fields no matter what the stored values say.
func (s *InvoiceService) CalculateTotals(inv models.Invoice) (models.Invoice, error) {
	out := inv.Clone()
	for i := range out.LineItems {
		out.LineItems[i].Total = 0
	}
	return s.recalculate(out)
}

// Save validates the invoice, recomputes totals and persists it as a new or
// replaced record.
func (s *InvoiceService) Save(inv models.Invoice) (models.Invoice, error) {
	out, err := s.prepareForPersist(inv)
	if err != nil {
		return models.Invoice{}, err
	}
	if err := s.repo.SaveInvoice(out); err != nil {
		return models.Invoice{}, err
	}
	return out, nil
}

// Update validates the invoice, recomputes totals, stamps UpdatedAt and
// persists over the existing record. Unknown ids fail with the not-found
// category, unchanged from the repository.
func (s *InvoiceService) Update(inv models.Invoice) (models.Invoice, error) {
	out, err := s.prepareForPersist(inv)
	if err != nil {
		return models.Invoice{}, err
	}
	out.UpdatedAt = models.NowMillis()
	if err := s.repo.UpdateInvoice(out); err != nil {
		return models.Invoice{}, err
	}
	return out, nil
}

// Delete removes an invoice by id.
func (s *InvoiceService) Delete(id string) error {
	return s.repo.DeleteInvoice(id)
}

// Get returns an invoice by id.
func (s *InvoiceService) Get(id string) (models.Invoice, bool, error) {
	return s.repo.InvoiceByID(id)
}

// All returns every invoice.
func (s *InvoiceService) All() ([]models.Invoice, error) {
	return s.repo.Invoices()
}

// Search passes the query through to the repository's invoice search.
func (s *InvoiceService) Search(query string) ([]models.Invoice, error) {
	return s.repo.SearchInvoices(query)
}

// FilterByStatus returns the invoices currently in the given status.
func (s *InvoiceService) FilterByStatus(status models.Status) ([]models.Invoice, error) {
	invoices, err := s.repo.Invoices()
	if err != nil {
		return nil, err
	}
	out := make([]models.Invoice, 0)
	for _, inv := range invoices {
		if inv.Status == status {
			out = append(out, inv)
		}
	}
	return out, nil
}

// FilterByDateRange returns invoices whose issue date falls within
// [from, to]. A zero bound leaves that side open.
func (s *InvoiceService) FilterByDateRange(from, to int64) ([]models.Invoice, error) {
	invoices, err := s.repo.Invoices()
	if err != nil {
		return nil, err
	}
	out := make([]models.Invoice, 0)
	for _, inv := range invoices {
		if from != 0 && inv.IssueDate < from {
			continue
		}
		if to != 0 && inv.IssueDate > to {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

// ForClient returns the invoices referencing the given client id.
func (s *InvoiceService) ForClient(clientID string) ([]models.Invoice, error) {
	invoices, err := s.repo.Invoices()
	if err != nil {
		return nil, err
	}
	out := make([]models.Invoice, 0)
	for _, inv := range invoices {
		if inv.ClientID == clientID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// UpdateStatus sets the status of a stored invoice and persists it. Any
// status may follow any other.
func (s *InvoiceService) UpdateStatus(id string, status models.Status) (models.Invoice, error) {
	if !status.Valid() {
		return models.Invoice{}, &ValidationError{Errors: []string{
			fmt.Sprintf("status %q is not one of draft, issued, paid", status),
		}}
	}
	inv, ok, err := s.repo.InvoiceByID(id)
	if err != nil {
		return models.Invoice{}, err
	}
	if !ok {
		return models.Invoice{}, fmt.Errorf("invoice %s: %w", id, storage.ErrNotFound)
	}
	inv.Status = status
	inv.UpdatedAt = models.NowMillis()
	if err := s.repo.UpdateInvoice(inv); err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

// Duplicate deep-copies a stored invoice into a fresh draft: new id, newly
// allocated invoice number, dates reset to now and now+30 days, and every
// line item re-ided. The copy is returned in memory, ready to be saved.
func (s *InvoiceService) Duplicate(id string) (models.Invoice, error) {
	src, ok, err := s.repo.InvoiceByID(id)
	if err != nil {
		return models.Invoice{}, err
	}
	if !ok {
		return models.Invoice{}, fmt.Errorf("invoice %s: %w", id, storage.ErrNotFound)
	}
	number, err := s.repo.NextInvoiceNumber()
	if err != nil {
		return models.Invoice{}, err
	}
	now := models.NowMillis()
	out := src.Clone()
	out.ID = uuid.NewString()
	out.InvoiceNumber = number
	out.Status = models.StatusDraft
	out.IssueDate = now
	out.DueDate = now + defaultPaymentTerm.Milliseconds()
	out.CreatedAt = now
	out.UpdatedAt = now
	for i := range out.LineItems {
		out.LineItems[i].ID = uuid.NewString()
	}
	return out, nil
}

// InvoiceStats aggregates the invoice collection: counts per status and the
// summed amounts, each rounded at its own boundary.
type InvoiceStats struct {
	Total       int
	Draft       int
	Issued      int
	Paid        int
	TotalAmount float64
	PaidAmount  float64
	Outstanding float64
}

// Stats summarizes the invoice collection.
func (s *InvoiceService) Stats() (InvoiceStats, error) {
	invoices, err := s.repo.Invoices()
	if err != nil {
		return InvoiceStats{}, err
	}
	stats := InvoiceStats{Total: len(invoices)}
	var total, paid float64
	for _, inv := range invoices {
		switch inv.Status {
		case models.StatusDraft:
			stats.Draft++
		case models.StatusIssued:
			stats.Issued++
		case models.StatusPaid:
			stats.Paid++
		}
		total += inv.Total
		if inv.Status == models.StatusPaid {
			paid += inv.Total
		}
	}
	stats.TotalAmount = calc.RoundMoney(total)
	stats.PaidAmount = calc.RoundMoney(paid)
	stats.Outstanding = calc.RoundMoney(total - paid)
	return stats, nil
}

// recalculate stamps UpdatedAt and reruns the total calculation over the
// invoice's items. Every mutation funnels through here.
func (s *InvoiceService) recalculate(inv models.Invoice) (models.Invoice, error) {
	totals, err := calc.InvoiceTotals(inv.LineItems, defaultTaxRate)
	if err != nil {
		return models.Invoice{}, err
	}
	inv.LineItems = totals.LineItems
	inv.Subtotal = totals.Subtotal
	inv.Tax = totals.Tax
	inv.Total = totals.Total
	inv.UpdatedAt = models.NowMillis()
	return inv, nil
}

func (s *InvoiceService) prepareForPersist(inv models.Invoice) (models.Invoice, error) {
	if res := validation.Invoice(inv); !res.Valid {
		return models.Invoice{}, &ValidationError{Errors: res.Errors}
	}
	return s.recalculate(inv.Clone())
}
