package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ReadRecords parses an uploaded export into raw rows. The storefront offers
// both .xlsx and .csv downloads and staff rename files freely, so the format
// is sniffed by content: a spreadsheet parse is attempted first and plain
// delimited text is the fallback.
func ReadRecords(data []byte) ([][]string, error) {
	if records, err := readXLSX(data); err == nil {
		return records, nil
	}

	records, err := readCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	return records, nil
}

// readXLSX reads every row of the first sheet of a spreadsheet.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("xlsx has no sheets")
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}

// readCSV parses delimited text with lenient settings: ragged rows are
// allowed and quoting errors tolerated, since malformed rows are filtered
// downstream. The UTF-8 BOM added by Windows exports is stripped and invalid
// byte sequences replaced before parsing.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
