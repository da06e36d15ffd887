// Package storage persists the invoice-builder dataset through a small
// key-value port. Collections are stored whole, as JSON documents under fixed
// keys, which keeps the adapter trivial and makes export/import an exact
// round trip of repository state.
package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/models"
)

// Logical keys in the underlying KV.
const (
	clientsKey  = "invoice-app-clients"
	invoicesKey = "invoice-app-invoices"
	counterKey  = "invoice-app-counter"
	probeKey    = "invoice-app-probe"
)

// invoiceNumberWidth is the minimum digit count of formatted invoice
// numbers; larger counters simply grow wider.
const invoiceNumberWidth = 3

// Repository is the persistence layer for clients and invoices plus the
// invoice-number counter. It owns the persisted collections outright: the
// services above it never cache records across calls.
type Repository struct {
	kv KV
}

// NewRepository builds a repository over the given KV medium.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// --- clients ---

// SaveClient upserts a client: an existing record with the same id is
// replaced in place, otherwise the client is appended.
func (r *Repository) SaveClient(c models.Client) error {
	clients, err := r.loadClients()
	if err != nil {
		return err
	}
	return r.storeClients(upsertClient(clients, c))
}

// ClientByID returns the client with the given id, or false if absent.
func (r *Repository) ClientByID(id string) (models.Client, bool, error) {
	clients, err := r.loadClients()
	if err != nil {
		return models.Client{}, false, err
	}
	for _, c := range clients {
		if c.ID == id {
			return c, true, nil
		}
	}
	return models.Client{}, false, nil
}

// Clients returns every stored client in insertion order.
func (r *Repository) Clients() ([]models.Client, error) {
	return r.loadClients()
}

// UpdateClient replaces an existing client. Unknown ids fail with the
// not-found category, naming the id.
func (r *Repository) UpdateClient(c models.Client) error {
	clients, err := r.loadClients()
	if err != nil {
		return err
	}
	for i := range clients {
		if clients[i].ID == c.ID {
			clients[i] = c
			return r.storeClients(clients)
		}
	}
	return fmt.Errorf("client %s: %w", c.ID, ErrNotFound)
}

// DeleteClient removes the client with the given id, failing with the
// not-found category when it does not exist.
func (r *Repository) DeleteClient(id string) error {
	clients, err := r.loadClients()
	if err != nil {
		return err
	}
	for i := range clients {
		if clients[i].ID == id {
			return r.storeClients(append(clients[:i], clients[i+1:]...))
		}
	}
	return fmt.Errorf("client %s: %w", id, ErrNotFound)
}

// SearchClients returns clients whose name, phone or email contains the
// query, case-insensitively. An empty query returns the full collection.
func (r *Repository) SearchClients(query string) ([]models.Client, error) {
	clients, err := r.loadClients()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return clients, nil
	}
	out := make([]models.Client, 0, len(clients))
	for _, c := range clients {
		if containsFold(c.Name, q) || containsFold(c.Phone, q) || containsFold(c.Email, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- invoices ---

// SaveInvoice upserts an invoice, preserving position on replacement.
func (r *Repository) SaveInvoice(inv models.Invoice) error {
	invoices, err := r.loadInvoices()
	if err != nil {
		return err
	}
	return r.storeInvoices(upsertInvoice(invoices, inv))
}

// InvoiceByID returns the invoice with the given id, or false if absent.
func (r *Repository) InvoiceByID(id string) (models.Invoice, bool, error) {
	invoices, err := r.loadInvoices()
	if err != nil {
		return models.Invoice{}, false, err
	}
	for _, inv := range invoices {
		if inv.ID == id {
			return inv, true, nil
		}
	}
	return models.Invoice{}, false, nil
}

// Invoices returns every stored invoice in insertion order.
func (r *Repository) Invoices() ([]models.Invoice, error) {
	return r.loadInvoices()
}

// UpdateInvoice replaces an existing invoice. Unknown ids fail with the
// not-found category, naming the id.
func (r *Repository) UpdateInvoice(inv models.Invoice) error {
	invoices, err := r.loadInvoices()
	if err != nil {
		return err
	}
	for i := range invoices {
		if invoices[i].ID == inv.ID {
			invoices[i] = inv
			return r.storeInvoices(invoices)
		}
	}
	return fmt.Errorf("invoice %s: %w", inv.ID, ErrNotFound)
}

// DeleteInvoice removes the invoice with the given id, failing with the
// not-found category when it does not exist.
func (r *Repository) DeleteInvoice(id string) error {
	invoices, err := r.loadInvoices()
	if err != nil {
		return err
	}
	for i := range invoices {
		if invoices[i].ID == id {
			return r.storeInvoices(append(invoices[:i], invoices[i+1:]...))
		}
	}
	return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
}

// SearchInvoices returns invoices whose client name, invoice number, or
// issue/due date (rendered M/D/YYYY) contains the query,
// case-insensitively. An empty query returns the full collection.
func (r *Repository) SearchInvoices(query string) ([]models.Invoice, error) {
	invoices, err := r.loadInvoices()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return invoices, nil
	}
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if containsFold(inv.Client.Name, q) ||
			containsFold(inv.InvoiceNumber, q) ||
			containsFold(formatDate(inv.IssueDate), q) ||
			containsFold(formatDate(inv.DueDate), q) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// --- counter ---

// NextInvoiceNumber increments the persisted invoice counter and returns the
// new value formatted as INV-### (zero-padded to three digits, growing past
// 999). Each call allocates a number whether or not an invoice is ever saved
// with it; an absent or corrupt counter restarts from zero.
func (r *Repository) NextInvoiceNumber() (string, error) {
	raw, ok, err := r.kv.Get(counterKey)
	if err != nil {
		return "", fmt.Errorf("read invoice counter: %w", err)
	}
	n := 0
	if ok {
		if parsed, perr := strconv.Atoi(strings.TrimSpace(raw)); perr == nil && parsed >= 0 {
			n = parsed
		}
	}
	n++
	if err := r.kv.Set(counterKey, strconv.Itoa(n)); err != nil {
		return "", fmt.Errorf("persist invoice counter: %w", err)
	}
	return FormatInvoiceNumber(n), nil
}

// FormatInvoiceNumber renders a counter value as a human-readable invoice
// number.
func FormatInvoiceNumber(n int) string {
	return fmt.Sprintf("INV-%0*d", invoiceNumberWidth, n)
}

// --- dataset ---

// ClearAll wipes clients, invoices and the counter.
func (r *Repository) ClearAll() error {
	for _, key := range []string{clientsKey, invoicesKey, counterKey} {
		if err := r.kv.Remove(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// Export serializes the whole dataset as one JSON document. Re-importing the
// result reproduces an equivalent repository state.
func (r *Repository) Export() (string, error) {
	clients, err := r.loadClients()
	if err != nil {
		return "", err
	}
	invoices, err := r.loadInvoices()
	if err != nil {
		return "", err
	}
	counter := "0"
	if raw, ok, err := r.kv.Get(counterKey); err != nil {
		return "", fmt.Errorf("read invoice counter: %w", err)
	} else if ok {
		counter = raw
	}
	doc, err := json.Marshal(models.Dataset{Clients: clients, Invoices: invoices, Counter: counter})
	if err != nil {
		return "", fmt.Errorf("%w: encode dataset: %v", ErrInvalidFormat, err)
	}
	return string(doc), nil
}

// Import replaces the repository state with the given dataset document.
// Documents that do not parse as a dataset fail with the invalid-format
// category before anything is written.
func (r *Repository) Import(doc string) error {
	var ds models.Dataset
	if err := json.Unmarshal([]byte(doc), &ds); err != nil {
		return fmt.Errorf("%w: decode dataset: %v", ErrInvalidFormat, err)
	}
	if ds.Counter == "" {
		ds.Counter = "0"
	} else if _, err := strconv.Atoi(strings.TrimSpace(ds.Counter)); err != nil {
		return fmt.Errorf("%w: counter %q is not a number", ErrInvalidFormat, ds.Counter)
	}
	if ds.Clients == nil {
		ds.Clients = []models.Client{}
	}
	if ds.Invoices == nil {
		ds.Invoices = []models.Invoice{}
	}
	if err := r.storeClients(ds.Clients); err != nil {
		return err
	}
	if err := r.storeInvoices(ds.Invoices); err != nil {
		return err
	}
	if err := r.kv.Set(counterKey, strings.TrimSpace(ds.Counter)); err != nil {
		return fmt.Errorf("persist invoice counter: %w", err)
	}
	return nil
}

// Available probes the medium with a throwaway write and reports whether it
// can be used.
func (r *Repository) Available() bool {
	if err := r.kv.Set(probeKey, "ok"); err != nil {
		return false
	}
	_ = r.kv.Remove(probeKey)
	return true
}

// Info summarizes the repository state.
type Info struct {
	Available bool
	Clients   int
	Invoices  int
	BytesUsed int
}

// Info reports record counts and the approximate bytes held by the stored
// collections. Unreadable collections count as zero rather than failing,
// since Info is a diagnostic view.
func (r *Repository) Info() Info {
	info := Info{Available: r.Available()}
	for _, key := range []string{clientsKey, invoicesKey, counterKey} {
		if raw, ok, err := r.kv.Get(key); err == nil && ok {
			info.BytesUsed += len(key) + len(raw)
		}
	}
	if clients, err := r.loadClients(); err == nil {
		info.Clients = len(clients)
	}
	if invoices, err := r.loadInvoices(); err == nil {
		info.Invoices = len(invoices)
	}
	return info
}

// --- collection plumbing ---

func (r *Repository) loadClients() ([]models.Client, error) {
	raw, ok, err := r.kv.Get(clientsKey)
	if err != nil {
		return nil, fmt.Errorf("read clients: %w", err)
	}
	if !ok {
		return []models.Client{}, nil
	}
	var clients []models.Client
	if err := json.Unmarshal([]byte(raw), &clients); err != nil {
		return nil, fmt.Errorf("%w: clients collection: %v", ErrCorruptedData, err)
	}
	if clients == nil {
		clients = []models.Client{}
	}
	return clients, nil
}

func (r *Repository) storeClients(clients []models.Client) error {
	raw, err := json.Marshal(clients)
	if err != nil {
		return fmt.Errorf("%w: encode clients: %v", ErrInvalidFormat, err)
	}
	if err := r.kv.Set(clientsKey, string(raw)); err != nil {
		return fmt.Errorf("write clients: %w", err)
	}
	return nil
}

func (r *Repository) loadInvoices() ([]models.Invoice, error) {
	raw, ok, err := r.kv.Get(invoicesKey)
	if err != nil {
		return nil, fmt.Errorf("read invoices: %w", err)
	}
	if !ok {
		return []models.Invoice{}, nil
	}
	var invoices []models.Invoice
	if err := json.Unmarshal([]byte(raw), &invoices); err != nil {
		return nil, fmt.Errorf("%w: invoices collection: %v", ErrCorruptedData, err)
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return invoices, nil
}

func (r *Repository) storeInvoices(invoices []models.Invoice) error {
	raw, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("%w: encode invoices: %v", ErrInvalidFormat, err)
	}
	if err := r.kv.Set(invoicesKey, string(raw)); err != nil {
		return fmt.Errorf("write invoices: %w", err)
	}
	return nil
}

func upsertClient(clients []models.Client, c models.Client) []models.Client {
	for i := range clients {
		if clients[i].ID == c.ID {
			clients[i] = c
			return clients
		}
	}
	return append(clients, c)
}

func upsertInvoice(invoices []models.Invoice, inv models.Invoice) []models.Invoice {
	for i := range invoices {
		if invoices[i].ID == inv.ID {
			invoices[i] = inv
			return invoices
		}
	}
	return append(invoices, inv)
}

func containsFold(haystack, lowercaseNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowercaseNeedle)
}

// formatDate renders a millisecond timestamp as M/D/YYYY, the date form
// invoice search matches against. The zero value renders as empty.
func formatDate(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).Format("1/2/2006")
}
