package ticket

import "testing"

func intPtr(v int) *int { return &v }

func TestNextStart_EmptyTable(t *testing.T) {
	if got := NextStart(nil, nil, 1); got != 1 {
		t.Errorf("NextStart(nil, nil, 1) = %d, want 1", got)
	}
	if got := NextStart(nil, nil, 500); got != 500 {
		t.Errorf("NextStart(nil, nil, 500) = %d, want 500", got)
	}
}

func TestNextStart_AfterExistingRange(t *testing.T) {
	// Highest range is ids 10..14 (start 10, 5 tickets); next starts at 15.
	if got := NextStart(intPtr(10), intPtr(5), 1); got != 15 {
		t.Errorf("NextStart(10, 5, 1) = %d, want 15", got)
	}
}

func TestNextStart_SingleTicketRange(t *testing.T) {
	if got := NextStart(intPtr(7), intPtr(1), 1); got != 8 {
		t.Errorf("NextStart(7, 1, 1) = %d, want 8", got)
	}
}

func TestNextStart_IgnoresStartingIDWhenAssigned(t *testing.T) {
	// Once any order is assigned the starting id no longer matters.
	if got := NextStart(intPtr(3), intPtr(2), 100); got != 5 {
		t.Errorf("NextStart(3, 2, 100) = %d, want 5", got)
	}
}

func TestNextStart_Contiguity(t *testing.T) {
	// Simulate sequential allocations of varying widths and verify the
	// resulting ranges tile the number line without gaps or overlaps.
	counts := []int{3, 1, 12, 2, 5}

	var maxID, span *int
	next := 1
	for _, n := range counts {
		start := NextStart(maxID, span, 1)
		if start != next {
			t.Fatalf("allocation of %d tickets started at %d, want %d", n, start, next)
		}
		maxID, span = intPtr(start), intPtr(n)
		next = start + n
	}
}

func TestOrder_Assigned(t *testing.T) {
	o := Order{Name: "Dupont Marie", NumTickets: 3}
	if o.Assigned() {
		t.Error("order without id should not be assigned")
	}
	o.AssignedID = intPtr(4)
	if !o.Assigned() {
		t.Error("order with id should be assigned")
	}
}

func TestOrder_RangeEnd(t *testing.T) {
	o := Order{AssignedID: intPtr(10), NumTickets: 5}
	if got := o.RangeEnd(); got != 14 {
		t.Errorf("RangeEnd() = %d, want 14", got)
	}

	unassigned := Order{NumTickets: 5}
	if got := unassigned.RangeEnd(); got != 0 {
		t.Errorf("RangeEnd() on unassigned order = %d, want 0", got)
	}
}

func TestOrder_OrderTime(t *testing.T) {
	o := Order{Date: "2024-03-15 10:30:00"}
	got := o.OrderTime()
	if got.IsZero() {
		t.Fatal("OrderTime() returned zero time for valid date")
	}
	if got.Year() != 2024 || got.Month() != 3 || got.Day() != 15 {
		t.Errorf("OrderTime() = %v, want 2024-03-15", got)
	}

	bad := Order{Date: "not a date"}
	if !bad.OrderTime().IsZero() {
		t.Error("OrderTime() should return zero time for malformed date")
	}
}
