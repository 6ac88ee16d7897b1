package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestReadRecords_CSV(t *testing.T) {
	data := []byte("a,b,c\n1,2,3\n")

	records, err := ReadRecords(data)
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1][2] != "3" {
		t.Errorf("records[1][2] = %q, want %q", records[1][2], "3")
	}
}

func TestReadRecords_CSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Produit,Date\nBillet,2024-01-01\n")...)

	records, err := ReadRecords(data)
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}
	if records[0][0] != "Produit" {
		t.Errorf("BOM not stripped: first cell = %q", records[0][0])
	}
}

func TestReadRecords_RaggedCSV(t *testing.T) {
	data := []byte("a,b,c\n1,2\n1,2,3,4\n")

	records, err := ReadRecords(data)
	if err != nil {
		t.Fatalf("ragged rows should be tolerated, got error %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestReadRecords_InvalidUTF8(t *testing.T) {
	// Latin-1 encoded "é" is invalid UTF-8; it must not abort the parse.
	data := []byte("nom,ville\nDup\xe9ont,Paris\n")

	records, err := ReadRecords(data)
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if !strings.Contains(records[1][0], "�") {
		t.Errorf("invalid byte should become replacement rune, got %q", records[1][0])
	}
}

func TestReadRecords_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []any{"Produit", "Variante", "Date", "Client", "Email"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	row := []any{"Billet", "2 billets", "2024-03-15", "Durand Luc", "luc@example.com"}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	records, err := ReadRecords(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0][0] != "Produit" {
		t.Errorf("records[0][0] = %q, want %q", records[0][0], "Produit")
	}
}

func TestSanitizeUTF8_ValidPassthrough(t *testing.T) {
	data := []byte("déjà vu")
	if got := sanitizeUTF8(data); !bytes.Equal(got, data) {
		t.Errorf("valid UTF-8 should pass through unchanged")
	}
}

func TestParseExport_EndToEndCSV(t *testing.T) {
	csv := "Produit,Variante,Date,Client,Email,Entreprise\n" +
		"Billet de tombola,Pack de 12 billets,2024-03-15,Durand Luc,luc@example.com,ACME\n" +
		"Tote bag,M,2024-03-16,Autre Client,autre@example.com,\n"

	result, err := ParseExport([]byte(csv), "Billet de tombola", time.Time{})
	if err != nil {
		t.Fatalf("ParseExport() error = %v", err)
	}
	if result.Kind != SchemaBoutique {
		t.Errorf("Kind = %v, want boutique", result.Kind)
	}
	if result.HeaderRow != 0 {
		t.Errorf("HeaderRow = %d, want 0", result.HeaderRow)
	}
	if len(result.Orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(result.Orders))
	}

	o := result.Orders[0]
	if o.Name != "Durand Luc" || o.NumTickets != 12 || o.Firm != "ACME" {
		t.Errorf("unexpected order: %+v", o)
	}
	if o.Date != "2024-03-15 00:00:00" {
		t.Errorf("Date = %q", o.Date)
	}
}

func TestParseExport_Empty(t *testing.T) {
	if _, err := ParseExport([]byte(""), "Billet", time.Time{}); err == nil {
		t.Fatal("ParseExport() should fail on empty input")
	}
}
