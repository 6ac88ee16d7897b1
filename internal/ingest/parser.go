package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lbocquet/tombola/internal/ticket"
)

// digitRun matches the first embedded run of digits anywhere in the variant
// text ("Pack de 12 billets" -> 12). Search, not full match.
var digitRun = regexp.MustCompile(`(\d+)`)

// Input date layouts accepted from storefront exports. Day-first layouts come
// from the French storefront locale.
var orderDateLayouts = []string{
	ticket.DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// Parse filters canonical rows down to ticket orders for the given article.
//
// Rows survive when their article matches exactly and, if minDate is set
// (non-zero), their order date is >= minDate. The ticket count is the first
// digit run found in the variant text; rows without one are non-ticket line
// items and are skipped silently, as are rows whose date cannot be parsed.
// A single malformed row never aborts the batch.
//
// Emitted orders have no assigned id and no purchase note; the customer name
// is last name and first name joined with a single space (first name may be
// empty for dialects that do not carry it).
func Parse(rows []Row, article string, minDate time.Time) []ticket.Order {
	var orders []ticket.Order

	for _, row := range rows {
		if row.Article != article {
			continue
		}

		orderTime, ok := parseOrderDate(row.Date)
		if !ok {
			continue
		}
		if !minDate.IsZero() && orderTime.Before(minDate) {
			continue
		}

		m := digitRun.FindString(row.VariantText)
		if m == "" {
			continue
		}
		numTickets, err := strconv.Atoi(m)
		if err != nil || numTickets < 1 {
			continue
		}

		name := strings.TrimSpace(strings.TrimSpace(row.LastName) + " " + strings.TrimSpace(row.FirstName))

		orders = append(orders, ticket.Order{
			Date:       orderTime.Format(ticket.DateLayout),
			Firm:       strings.TrimSpace(row.Firm),
			Name:       name,
			Email:      strings.TrimSpace(row.Email),
			NumTickets: numTickets,
		})
	}

	return orders
}

func parseOrderDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
