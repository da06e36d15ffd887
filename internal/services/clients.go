// Package services layers the business rules over the storage repository:
// duplicate detection, referential-integrity guards, invoice lifecycle and
// total recomputation. Services hold no state of their own beyond the
// injected repository and re-read records on every call.
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/models"
	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/storage"
	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/validation"
)

// Business-rule error categories.
var (
	// ErrDuplicateClient signals the name+email collision rule.
	ErrDuplicateClient = errors.New("a client with this name and email already exists")
	// ErrClientHasInvoices signals the deletion guard for clients with
	// invoice history.
	ErrClientHasInvoices = errors.New("client has invoices and cannot be deleted")
)

// ValidationError carries every violation a validator reported for a
// rejected record.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// ClientService enforces client business rules over the repository.
type ClientService struct {
	repo *storage.Repository
}

// NewClientService builds a client service over the given repository.
func NewClientService(repo *storage.Repository) *ClientService {
	return &ClientService{repo: repo}
}

// ClientInput is the caller-supplied portion of a client record.
type ClientInput struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// Create validates and persists a new client. String fields are trimmed, the
// duplicate rule (same case-insensitive name and same non-empty
// case-insensitive email) is enforced, and a fresh id and creation timestamp
// are assigned.
func (s *ClientService) Create(in ClientInput) (models.Client, error) {
	c := models.Client{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Address:   strings.TrimSpace(in.Address),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: models.NowMillis(),
	}
	if res := validation.Client(c); !res.Valid {
		return models.Client{}, &ValidationError{Errors: res.Errors}
	}
	if err := s.checkDuplicate(c, ""); err != nil {
		return models.Client{}, err
	}
	if err := s.repo.SaveClient(c); err != nil {
		return models.Client{}, err
	}
	return c, nil
}

// Update validates and persists an edit to an existing client. The original
// CreatedAt is preserved and the duplicate rule is re-checked excluding the
// record's own id; unknown ids fail with the not-found category.
func (s *ClientService) Update(c models.Client) (models.Client, error) {
	existing, ok, err := s.repo.ClientByID(c.ID)
	if err != nil {
		return models.Client{}, err
	}
	if !ok {
		return models.Client{}, fmt.Errorf("client %s: %w", c.ID, storage.ErrNotFound)
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.CreatedAt = existing.CreatedAt
	if res := validation.Client(c); !res.Valid {
		return models.Client{}, &ValidationError{Errors: res.Errors}
	}
	if err := s.checkDuplicate(c, c.ID); err != nil {
		return models.Client{}, err
	}
	if err := s.repo.UpdateClient(c); err != nil {
		return models.Client{}, err
	}
	return c, nil
}

// Delete removes a client, refusing while any invoice still references it.
func (s *ClientService) Delete(id string) error {
	count, err := s.invoiceCount(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d invoice(s) reference client %s", ErrClientHasInvoices, count, id)
	}
	return s.repo.DeleteClient(id)
}

// CanDelete is the non-throwing advisory form of Delete: it reports whether
// deletion would succeed and, if not, a displayable reason.
func (s *ClientService) CanDelete(id string) (bool, string, error) {
	count, err := s.invoiceCount(id)
	if err != nil {
		return false, "", err
	}
	if count > 0 {
		return false, fmt.Sprintf("client has %d invoice(s) and cannot be deleted", count), nil
	}
	return true, "", nil
}

// Get returns a client by id.
func (s *ClientService) Get(id string) (models.Client, bool, error) {
	return s.repo.ClientByID(id)
}

// All returns every client.
func (s *ClientService) All() ([]models.Client, error) {
	return s.repo.Clients()
}

// Search passes the query through to the repository's client search.
func (s *ClientService) Search(query string) ([]models.Client, error) {
	return s.repo.SearchClients(query)
}

// SortedByName returns all clients ordered by name, case-insensitively.
func (s *ClientService) SortedByName() ([]models.Client, error) {
	clients, err := s.repo.Clients()
	if err != nil {
		return nil, err
	}
	out := append([]models.Client(nil), clients...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// SortedByRecency returns all clients ordered newest first.
func (s *ClientService) SortedByRecency() ([]models.Client, error) {
	clients, err := s.repo.Clients()
	if err != nil {
		return nil, err
	}
	out := append([]models.Client(nil), clients...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

// Incomplete returns clients missing email, phone or address.
func (s *ClientService) Incomplete() ([]models.Client, error) {
	clients, err := s.repo.Clients()
	if err != nil {
		return nil, err
	}
	out := make([]models.Client, 0)
	for _, c := range clients {
		if !c.IsComplete() {
			out = append(out, c)
		}
	}
	return out, nil
}

// WithInvoices returns clients referenced by at least one invoice.
func (s *ClientService) WithInvoices() ([]models.Client, error) {
	return s.byInvoicePresence(true)
}

// WithoutInvoices returns clients referenced by no invoice.
func (s *ClientService) WithoutInvoices() ([]models.Client, error) {
	return s.byInvoicePresence(false)
}

// ClientStats aggregates the derived client views.
type ClientStats struct {
	Total           int
	WithInvoices    int
	WithoutInvoices int
	Incomplete      int
}

// Stats summarizes the client collection.
func (s *ClientService) Stats() (ClientStats, error) {
	clients, err := s.repo.Clients()
	if err != nil {
		return ClientStats{}, err
	}
	referenced, err := s.referencedClientIDs()
	if err != nil {
		return ClientStats{}, err
	}
	stats := ClientStats{Total: len(clients)}
	for _, c := range clients {
		if referenced[c.ID] {
			stats.WithInvoices++
		} else {
			stats.WithoutInvoices++
		}
		if !c.IsComplete() {
			stats.Incomplete++
		}
	}
	return stats, nil
}

func (s *ClientService) checkDuplicate(c models.Client, excludeID string) error {
	if c.Email == "" {
		return nil
	}
	clients, err := s.repo.Clients()
	if err != nil {
		return err
	}
	name := strings.ToLower(c.Name)
	email := strings.ToLower(c.Email)
	for _, other := range clients {
		if other.ID == excludeID {
			continue
		}
		if other.Email == "" {
			continue
		}
		if strings.ToLower(other.Name) == name && strings.ToLower(other.Email) == email {
			return fmt.Errorf("%w: %s <%s>", ErrDuplicateClient, c.Name, c.Email)
		}
	}
	return nil
}

func (s *ClientService) invoiceCount(clientID string) (int, error) {
	invoices, err := s.repo.Invoices()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, inv := range invoices {
		if inv.ClientID == clientID {
			count++
		}
	}
	return count, nil
}

func (s *ClientService) referencedClientIDs() (map[string]bool, error) {
	invoices, err := s.repo.Invoices()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(invoices))
	for _, inv := range invoices {
		out[inv.ClientID] = true
	}
	return out, nil
}

func (s *ClientService) byInvoicePresence(wantInvoices bool) ([]models.Client, error) {
	clients, err := s.repo.Clients()
	if err != nil {
		return nil, err
	}
	referenced, err := s.referencedClientIDs()
	if err != nil {
		return nil, err
	}
	out := make([]models.Client, 0)
	for _, c := range clients {
		if referenced[c.ID] == wantInvoices {
			out = append(out, c)
		}
	}
	return out, nil
}
