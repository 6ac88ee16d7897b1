package ticket

import "fmt"

// TicketRow is one physical ticket in the flattened export: an assigned order
// with NumTickets n expands into n consecutive rows.
type TicketRow struct {
	Date   string
	Note   string
	Label  string // "TICKET_0042"
	Name   string
	Email  string
	Firm   string
}

// ExpandTickets flattens assigned orders into one row per ticket number.
// Unassigned orders are skipped; they have no numbers to print yet.
func ExpandTickets(orders []Order) []TicketRow {
	var rows []TicketRow
	for _, o := range orders {
		if o.AssignedID == nil {
			continue
		}
		for offset := 0; offset < o.NumTickets; offset++ {
			rows = append(rows, TicketRow{
				Date:  o.Date,
				Note:  o.Note,
				Label: fmt.Sprintf("TICKET_%04d", *o.AssignedID+offset),
				Name:  o.Name,
				Email: o.Email,
				Firm:  o.Firm,
			})
		}
	}
	return rows
}
