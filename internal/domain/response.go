package domain

import "time"

// AdminResponse is a reply appended to a ticket by an administrator.
// Responses are append-only and keep insertion order.
type AdminResponse struct {
	ID        int64
	TicketID  int64
	Text      string
	AdminID   string
	CreatedAt time.Time
}
