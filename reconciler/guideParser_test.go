package reconciler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGuideFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guide.tsv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func guideRow(cells ...string) string {
	return strings.Join(cells, "\t")
}

func TestParseGuideFile(t *testing.T) {
	path := writeGuideFile(t,
		guideRow("CODE", "NOM", "DCI", "FORME", "PRESENTATION", "PPV", "BR", "PH", "BR PH", "CLASSE", "TYPE"),
		guideRow("6118000123456.0", "DOLIPRANE 1000 MG", "PARACETAMOL", "COMPRIMÉ à 1000 MG",
			"BOITE DE 8", "13,50", "13,50", "9,00", "9,00", "ANTALGIQUE", "P"),
		"",
		guideRow("", "AMOXIL 500 MG", "AMOXICILLINE", "GÉLULE", "BOITE DE 12",
			"60.00", "58.00", "0", "0", "ANTIBIOTIQUE", "G"),
		guideRow("notacode", "", "X", "Y", "Z", "1", "1", "1", "1", "C", "P"),
		"short\tline",
	)

	feed, err := ParseGuideFile(path)
	if err != nil {
		t.Fatalf("ParseGuideFile failed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("got %d entries, want 2", len(feed))
	}

	first := feed[0].Guide
	if first == nil {
		t.Fatal("guide entry payload missing")
	}
	if first.Barcode == nil || *first.Barcode != "6118000123456" {
		t.Errorf("barcode not normalized, got %v", first.Barcode)
	}
	if first.Ppv != 13.5 {
		t.Errorf("comma decimal not parsed, ppv = %v", first.Ppv)
	}
	if first.Forme != "COMPRIMÉ" || first.Dosage != "1000 MG" {
		t.Errorf("form/dosage split wrong: %q / %q", first.Forme, first.Dosage)
	}
	if first.Type != "Princeps" {
		t.Errorf("type marker P should map to Princeps, got %q", first.Type)
	}
	if feed[0].Price == nil || *feed[0].Price != 13.5 {
		t.Errorf("incoming price not derived from ppv")
	}

	second := feed[1].Guide
	if second.Barcode != nil {
		t.Errorf("empty barcode cell must stay nil, got %v", *second.Barcode)
	}
	if second.Type != "Générique" {
		t.Errorf("type marker G should map to Générique, got %q", second.Type)
	}
	if second.Ppv != 60.0 || second.PrixBr != 58.0 {
		t.Errorf("dot decimals wrong: %v / %v", second.Ppv, second.PrixBr)
	}
}

func TestParseGuideFileMissing(t *testing.T) {
	if _, err := ParseGuideFile(filepath.Join(t.TempDir(), "nope.tsv")); err == nil {
		t.Fatal("expected an error for a missing guide file")
	}
}

func TestParseFormDosage(t *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedForme  string
		expectedDosage string
	}{
		{"Separator a accent", "COMPRIMÉ à 1000 MG", "COMPRIMÉ", "1000 MG"},
		{"Separator plain a", "SIROP a 125 MG/5 ML", "SIROP", "125 MG/5 ML"},
		{"No separator, dosage token", "GÉLULE 500 MG", "GÉLULE", "500 MG"},
		{"Form only", "POMMADE", "POMMADE", ""},
		{"Empty", "", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			forme, dosage := parseFormDosage(tc.input)
			if forme != tc.expectedForme || dosage != tc.expectedDosage {
				t.Errorf("parseFormDosage(%q) = %q, %q; want %q, %q",
					tc.input, forme, dosage, tc.expectedForme, tc.expectedDosage)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
	}{
		{"13,50", 13.5},
		{"60.00", 60},
		{" 9,00 ", 9},
		{"", 0},
		{"n/a", 0},
		{"-5", 0},
	}

	for _, tc := range testCases {
		if got := parsePrice(tc.input); got != tc.expected {
			t.Errorf("parsePrice(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestNormalizeBarcode(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected *string
	}{
		{"Spreadsheet float suffix", "6118000123456.0", strPtr("6118000123456")},
		{"Plain digits", "12345678", strPtr("12345678")},
		{"Empty cell", "", nil},
		{"Non numeric", "abc123", nil},
		{"Whitespace only", "   ", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeBarcode(tc.input)
			switch {
			case tc.expected == nil && got != nil:
				t.Errorf("normalizeBarcode(%q) = %q, want nil", tc.input, *got)
			case tc.expected != nil && (got == nil || *got != *tc.expected):
				t.Errorf("normalizeBarcode(%q) = %v, want %q", tc.input, got, *tc.expected)
			}
		})
	}
}

func strPtr(s string) *string {
	return &s
}
