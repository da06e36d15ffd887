package models

// Client represents a customer the invoices are billed to.
// ID and CreatedAt are assigned at creation and never change; the
// remaining fields may be edited in place via ClientService.Update.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// IsComplete reports whether every contact field is filled in.
func (c *Client) IsComplete() bool {
	return c.Email != "" && c.Phone != "" && c.Address != ""
}
