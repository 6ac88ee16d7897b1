// Package ticket defines the canonical order record and the ticket-number
// allocation policy. It has no database or UI dependencies.
package ticket

import "time"

// DateLayout is the fixed-precision timestamp format stored for order dates.
const DateLayout = "2006-01-02 15:04:05"

// Order is one customer purchase destined to become a contiguous block of
// ticket numbers. Optional string fields use "" for absent; AssignedID is nil
// until the order has been allocated and notified.
type Order struct {
	AssignedID *int   `json:"assigned_id"`
	Date       string `json:"order_date"` // DateLayout
	Firm       string `json:"firm,omitempty"`
	Name       string `json:"customer_name"`
	Email      string `json:"customer_email"`
	NumTickets int    `json:"ticket_count"`
	Note       string `json:"purchase_note,omitempty"` // "achat" column
}

// Assigned reports whether the order already holds a ticket range.
func (o Order) Assigned() bool {
	return o.AssignedID != nil
}

// RangeEnd returns the last ticket number of the order's range.
// Only meaningful when the order is assigned.
func (o Order) RangeEnd() int {
	if o.AssignedID == nil {
		return 0
	}
	return *o.AssignedID + o.NumTickets - 1
}

// OrderTime parses the order's stored date. The zero time is returned for
// dates that do not match DateLayout.
func (o Order) OrderTime() time.Time {
	t, err := time.Parse(DateLayout, o.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
