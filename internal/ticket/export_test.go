package ticket

import "testing"

func TestExpandTickets_OneRowPerTicket(t *testing.T) {
	orders := []Order{
		{
			AssignedID: intPtr(4),
			Date:       "2024-03-15 10:30:00",
			Name:       "Dupont Marie",
			Email:      "marie@example.com",
			NumTickets: 3,
			Note:       "payé en ligne",
		},
	}

	rows := ExpandTickets(orders)
	if len(rows) != 3 {
		t.Fatalf("ExpandTickets() produced %d rows, want 3", len(rows))
	}

	wantLabels := []string{"TICKET_0004", "TICKET_0005", "TICKET_0006"}
	for i, row := range rows {
		if row.Label != wantLabels[i] {
			t.Errorf("row %d label = %q, want %q", i, row.Label, wantLabels[i])
		}
		if row.Name != "Dupont Marie" || row.Email != "marie@example.com" {
			t.Errorf("row %d lost order fields: %+v", i, row)
		}
		if row.Note != "payé en ligne" {
			t.Errorf("row %d note = %q", i, row.Note)
		}
	}
}

func TestExpandTickets_SkipsUnassigned(t *testing.T) {
	orders := []Order{
		{Name: "Pending Person", NumTickets: 5},
		{AssignedID: intPtr(1), Name: "Assigned Person", NumTickets: 2},
	}

	rows := ExpandTickets(orders)
	if len(rows) != 2 {
		t.Fatalf("ExpandTickets() produced %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Name != "Assigned Person" {
			t.Errorf("unexpected row for %q", row.Name)
		}
	}
}

func TestExpandTickets_Empty(t *testing.T) {
	if rows := ExpandTickets(nil); len(rows) != 0 {
		t.Errorf("ExpandTickets(nil) = %d rows, want 0", len(rows))
	}
}

func TestExpandTickets_WideLabels(t *testing.T) {
	orders := []Order{{AssignedID: intPtr(12345), Name: "X", NumTickets: 1}}
	rows := ExpandTickets(orders)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	// Padding is a minimum width, ids past 9999 print unpadded.
	if rows[0].Label != "TICKET_12345" {
		t.Errorf("label = %q, want TICKET_12345", rows[0].Label)
	}
}
