// Package ingest turns storefront spreadsheet exports into canonical order
// records: it locates the header row, classifies the export dialect, remaps
// dialect-specific columns onto a fixed field set, and parses rows into
// ticket.Order values.
package ingest

import "strings"

// SchemaKind identifies a recognized export dialect.
type SchemaKind int

const (
	// SchemaJimdo is the verbose storefront export with per-purpose billing
	// columns ("Nom pour facturation", ...). It is the primary dialect and
	// the detection fallback.
	SchemaJimdo SchemaKind = iota

	// SchemaBoutique is the terser CSV export with single-word headers.
	SchemaBoutique
)

func (k SchemaKind) String() string {
	switch k {
	case SchemaJimdo:
		return "jimdo"
	case SchemaBoutique:
		return "boutique"
	default:
		return "unknown"
	}
}

// HeaderSearchRows is how many leading rows are inspected for the header.
const HeaderSearchRows = 10

// Detection thresholds: minimum number of marker substrings that must appear
// in a candidate header row for the dialect to be selected.
const (
	JimdoMarkerThreshold    = 4 // of 5 markers
	BoutiqueMarkerThreshold = 3 // of 6 markers
)

// dialect couples a schema kind with the lowercase substrings expected in its
// header row. Dialects are scored in declaration order; the more specific
// Jimdo dialect comes first so ambiguous rows prefer it.
type dialect struct {
	kind      SchemaKind
	markers   []string
	threshold int
}

var dialects = []dialect{
	{
		kind: SchemaJimdo,
		markers: []string{
			"article",
			"date de commande",
			"nom pour facturation",
			"prénom pour facturation",
			"email pour facturation",
		},
		threshold: JimdoMarkerThreshold,
	},
	{
		kind: SchemaBoutique,
		markers: []string{
			"produit",
			"date",
			"client",
			"email",
			"variante",
			"entreprise",
		},
		threshold: BoutiqueMarkerThreshold,
	},
}

// DetectSchema scans the first HeaderSearchRows rows for a header matching a
// known dialect and returns the header row index and the dialect kind.
//
// Each candidate row is lower-cased and joined into one blob; a dialect
// matches when enough of its marker substrings appear in the blob. When no
// row matches any dialect the fallback (0, SchemaJimdo) is returned rather
// than an error: downstream column normalization tolerates missing columns,
// so a wrong guess degrades to empty fields instead of aborting the import.
//
// The returned index is the header row itself; data rows start at index+1.
func DetectSchema(records [][]string) (int, SchemaKind) {
	limit := HeaderSearchRows
	if len(records) < limit {
		limit = len(records)
	}

	for i := 0; i < limit; i++ {
		blob := strings.ToLower(strings.Join(records[i], ";"))
		for _, d := range dialects {
			matches := 0
			for _, m := range d.markers {
				if strings.Contains(blob, m) {
					matches++
				}
			}
			if matches >= d.threshold {
				return i, d.kind
			}
		}
	}

	return 0, SchemaJimdo
}
