package ingest

import "strings"

// Row is the canonical record produced by column normalization. Every dialect
// maps onto this field set; fields whose source column is absent (either not
// configured for the dialect or missing from the actual header) are empty
// strings. FirstName is structurally absent for SchemaBoutique and is always
// empty there.
type Row struct {
	Article     string
	Date        string
	LastName    string
	FirstName   string
	Email       string
	VariantText string
	Firm        string
}

// columnMap is the static per-dialect mapping from canonical field to source
// column name. An empty entry means the dialect has no such column.
type columnMap struct {
	article   string
	date      string
	lastName  string
	firstName string
	email     string
	variant   string
	firm      string
}

var columnMaps = map[SchemaKind]columnMap{
	SchemaJimdo: {
		article:   "Article",
		date:      "Date de commande",
		lastName:  "Nom pour facturation",
		firstName: "Prénom pour facturation",
		email:     "Email pour facturation",
		variant:   "Déclinaison",
		firm:      "Entreprise pour facturation",
	},
	SchemaBoutique: {
		article:  "Produit",
		date:     "Date",
		lastName: "Client",
		email:    "Email",
		variant:  "Variante",
		firm:     "Entreprise",
	},
}

// HeaderIndex maps cleaned, lower-cased column names to their position.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row. Call once per file
// and reuse for all rows.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// Normalize remaps raw records onto the canonical field set for the given
// dialect. headerRow is the index returned by DetectSchema; the header row
// itself names the columns and data starts on the following row.
//
// A configured source column that is missing from the actual header yields an
// empty field on every row rather than an error: exports drift, and the
// parser's own filtering handles incomplete rows.
func Normalize(records [][]string, headerRow int, kind SchemaKind) []Row {
	if headerRow < 0 || headerRow >= len(records) {
		return nil
	}

	cm := columnMaps[kind]
	idx := MakeHeaderIndex(records[headerRow])

	cell := func(row []string, column string) string {
		if column == "" {
			return ""
		}
		pos, ok := idx[strings.ToLower(column)]
		if !ok || pos >= len(row) {
			return ""
		}
		return CleanCell(row[pos])
	}

	rows := make([]Row, 0, len(records)-headerRow-1)
	for _, rec := range records[headerRow+1:] {
		if isEmptyRow(rec) {
			continue
		}
		rows = append(rows, Row{
			Article:     cell(rec, cm.article),
			Date:        cell(rec, cm.date),
			LastName:    cell(rec, cm.lastName),
			FirstName:   cell(rec, cm.firstName),
			Email:       cell(rec, cm.email),
			VariantText: cell(rec, cm.variant),
			Firm:        cell(rec, cm.firm),
		})
	}
	return rows
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
