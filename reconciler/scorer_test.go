package reconciler

import "testing"

func TestScoreTiers(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{
			"Identical after normalization",
			"DOLIPRANE 1000MG, COMPRIMÉ",
			"doliprane 1000mg, comprimé",
			1.0,
		},
		{
			"Same base, one contains the other",
			"ABIP 15 MG",
			"ABIP 15 MG, COMPRIMÉ PELLICULÉ",
			1.0,
		},
		{
			"Same base, different dosage",
			"ABIP 15 MG, COMPRIMÉ",
			"ABIP 30 MG, COMPRIMÉ",
			0.9,
		},
		{
			"One base contains the other",
			"DOLIPRANE",
			"DOLIPRANETABS 500 MG",
			0.7,
		},
		{
			"Empty left side",
			"",
			"DOLIPRANE",
			0,
		},
		{
			"Empty right side",
			"DOLIPRANE",
			"",
			0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.a, tc.b)
			if got != tc.expected {
				t.Errorf("Score(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func TestScoreFallbackStrictlyBelowOne(t *testing.T) {
	// Unrelated bases force the Levenshtein fallback. One rune out of
	// four differs, so the ratio is 0.75.
	got := Score("AAAA", "AAAB")
	if got != 0.75 {
		t.Errorf("expected fallback ratio 0.75, got %v", got)
	}
	if got >= 1.0 {
		t.Errorf("fallback score must stay below 1.0, got %v", got)
	}
}

func TestScoreRange(t *testing.T) {
	pairs := [][2]string{
		{"DOLIPRANE 1000", "EFFERALGAN 500"},
		{"A", "ZZZZZZZZZZ"},
		{"ABIP 15 MG", "ABIP 15 MG"},
		{"X", ""},
	}
	for _, p := range pairs {
		score := Score(p[0], p[1])
		if score < 0 || score > 1 {
			t.Errorf("Score(%q, %q) = %v, out of [0,1]", p[0], p[1], score)
		}
	}
}
