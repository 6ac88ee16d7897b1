package ingest

import "testing"

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{`="00123"`, "00123"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{"", ""},
		{`  ="Dupont"  `, "Dupont"},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Jimdo(t *testing.T) {
	records := [][]string{
		jimdoHeader,
		{"Billet de tombola", "Pack de 3 billets", "2024-03-15 10:30:00",
			"Dupont", "Marie", "marie@example.com", "ACME"},
	}

	rows := Normalize(records, 0, SchemaJimdo)
	if len(rows) != 1 {
		t.Fatalf("Normalize() produced %d rows, want 1", len(rows))
	}

	r := rows[0]
	if r.Article != "Billet de tombola" {
		t.Errorf("Article = %q", r.Article)
	}
	if r.LastName != "Dupont" || r.FirstName != "Marie" {
		t.Errorf("name fields = %q / %q", r.LastName, r.FirstName)
	}
	if r.VariantText != "Pack de 3 billets" {
		t.Errorf("VariantText = %q", r.VariantText)
	}
	if r.Firm != "ACME" {
		t.Errorf("Firm = %q", r.Firm)
	}
}

func TestNormalize_BoutiqueHasNoFirstName(t *testing.T) {
	records := [][]string{
		boutiqueHeader,
		{"Billet", "3 billets", "2024-03-15", "Durand Luc", "luc@example.com", ""},
	}

	rows := Normalize(records, 0, SchemaBoutique)
	if len(rows) != 1 {
		t.Fatalf("Normalize() produced %d rows, want 1", len(rows))
	}
	if rows[0].FirstName != "" {
		t.Errorf("FirstName = %q, want empty for this dialect", rows[0].FirstName)
	}
	if rows[0].LastName != "Durand Luc" {
		t.Errorf("LastName = %q", rows[0].LastName)
	}
}

func TestNormalize_SkipsEmptyRows(t *testing.T) {
	records := [][]string{
		boutiqueHeader,
		{"", "", "", "", "", ""},
		{"   "},
		{"Billet", "1 billet", "2024-01-01", "X", "x@example.com", ""},
	}

	rows := Normalize(records, 0, SchemaBoutique)
	if len(rows) != 1 {
		t.Errorf("Normalize() produced %d rows, want 1", len(rows))
	}
}

func TestNormalize_MissingColumnYieldsEmptyField(t *testing.T) {
	// Header lacks the Entreprise column entirely.
	records := [][]string{
		{"Produit", "Variante", "Date", "Client", "Email"},
		{"Billet", "1 billet", "2024-01-01", "X", "x@example.com"},
	}

	rows := Normalize(records, 0, SchemaBoutique)
	if len(rows) != 1 {
		t.Fatalf("Normalize() produced %d rows, want 1", len(rows))
	}
	if rows[0].Firm != "" {
		t.Errorf("Firm = %q, want empty when column is absent", rows[0].Firm)
	}
}

func TestNormalize_RaggedRow(t *testing.T) {
	// Row shorter than the header must not panic; trailing fields are empty.
	records := [][]string{
		boutiqueHeader,
		{"Billet", "1 billet"},
	}

	rows := Normalize(records, 0, SchemaBoutique)
	if len(rows) != 1 {
		t.Fatalf("Normalize() produced %d rows, want 1", len(rows))
	}
	if rows[0].LastName != "" || rows[0].Email != "" {
		t.Errorf("short row should yield empty fields, got %+v", rows[0])
	}
}

func TestNormalize_BadHeaderRow(t *testing.T) {
	records := [][]string{boutiqueHeader}

	if rows := Normalize(records, 5, SchemaBoutique); rows != nil {
		t.Errorf("out-of-range header row should yield nil, got %v", rows)
	}
	if rows := Normalize(records, -1, SchemaBoutique); rows != nil {
		t.Errorf("negative header row should yield nil, got %v", rows)
	}
}

func TestMakeHeaderIndex_LowercasesAndCleans(t *testing.T) {
	idx := MakeHeaderIndex([]string{" Produit ", `="Email"`})
	if pos, ok := idx["produit"]; !ok || pos != 0 {
		t.Errorf("idx[produit] = (%d, %v)", pos, ok)
	}
	if pos, ok := idx["email"]; !ok || pos != 1 {
		t.Errorf("idx[email] = (%d, %v)", pos, ok)
	}
}
