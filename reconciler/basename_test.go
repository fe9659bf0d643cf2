package reconciler

import "testing"

func TestBaseName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Cut at comma", "A.V.T. , COMPRIMÉ EFFERVESCENT", "AVT"},
		{"Cut at dosage", "ABIP 15 MG, COMPRIMÉ PELLICULÉ [P]", "ABIP"},
		{"Compound dosage", "ALFACEFAL 125 MG/5 ML", "ALFACEFAL"},
		{"Cut at parenthesis", "GAVISCON (MENTHE) SUSPENSION", "GAVISCON"},
		{"No dosage attached", "DOLIPRANE 1000MG", "DOLIPRANE"},
		{"Percent unit", "BETADINE 10 % SOLUTION", "BETADINE"},
		{"Lowercase input", "doliprane 500 mg, gélule", "DOLIPRANE"},
		{"Nothing to cut", "ASPEGIC NOURRISSON", "ASPEGIC NOURRISSON"},
		{"Empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := BaseName(tc.input)
			if got != tc.expected {
				t.Errorf("BaseName(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
