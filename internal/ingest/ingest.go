package ingest

import (
	"fmt"
	"time"

	"github.com/lbocquet/tombola/internal/ticket"
)

// Result describes one parsed export file.
type Result struct {
	Kind      SchemaKind
	HeaderRow int
	Orders    []ticket.Order
}

// ParseExport runs the full ingestion pipeline on a raw export file:
// format sniffing, schema detection, column normalization, order parsing.
// It fails only when the file cannot be read as tabular data at all;
// unrecognized dialects and malformed rows degrade per DetectSchema and
// Parse rather than erroring.
func ParseExport(data []byte, article string, minDate time.Time) (Result, error) {
	records, err := ReadRecords(data)
	if err != nil {
		return Result{}, err
	}
	if len(records) == 0 {
		return Result{}, fmt.Errorf("export is empty")
	}

	headerRow, kind := DetectSchema(records)
	rows := Normalize(records, headerRow, kind)
	orders := Parse(rows, article, minDate)

	return Result{Kind: kind, HeaderRow: headerRow, Orders: orders}, nil
}
