package reconciler

import (
	"testing"

	"github.com/bentalba/taawidaty/reconciler/entities"
)

func TestClassifyRate(t *testing.T) {
	testCases := []struct {
		name     string
		med      entities.Medication
		expected int
	}{
		{"Plain generic", entities.Medication{Name: "PARACETAMOL 500 MG", Ppv: 20}, 70},
		{"Prescription marker", entities.Medication{Name: "ABIP 15 MG, COMPRIMÉ [P]", Ppv: 50}, 0},
		{"Vaccine marker", entities.Medication{Name: "VAXIGRIP [V]", Ppv: 90}, 0},
		{"Controlled substance", entities.Medication{Name: "MORPHINE 10 MG [STUP]", Ppv: 30}, 0},
		{"SS marker", entities.Medication{Name: "SOMECURE [SS]", Ppv: 12}, 0},
		{"Above price ceiling", entities.Medication{Name: "EXPENSIVE TREATMENT", Ppv: 15000}, 0},
		{"At the ceiling", entities.Medication{Name: "BORDERLINE", Ppv: 10000}, 70},
		{"Zero price", entities.Medication{Name: "FREEBIE"}, 70},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyRate(&tc.med)
			if got != tc.expected {
				t.Errorf("ClassifyRate(%q, ppv=%v) = %d, want %d",
					tc.med.Name, tc.med.Ppv, got, tc.expected)
			}
		})
	}
}
