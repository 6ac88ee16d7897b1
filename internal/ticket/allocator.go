package ticket

// DefaultStartingID is the first ticket number handed out when no order has
// ever been assigned.
const DefaultStartingID = 1

// NextStart computes the first ticket number for the next allocation.
//
// maxID and span describe the row currently holding the highest assigned id:
// its id and its ticket count. Both are nil when no order has been assigned,
// in which case startingID is returned. Otherwise the next range begins one
// past the end of the highest range, *maxID + *span, so ranges of varying
// width stay contiguous without a separate counter. The table itself is the
// source of truth.
//
// NextStart is a pure function; persistence and serialization of concurrent
// allocations are the store's responsibility.
func NextStart(maxID, span *int, startingID int) int {
	if maxID == nil {
		return startingID
	}
	n := 0
	if span != nil {
		n = *span
	}
	return *maxID + n
}
