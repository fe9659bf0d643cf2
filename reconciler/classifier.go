package reconciler

import (
	"strings"

	"github.com/bentalba/taawidaty/reconciler/entities"
)

const (
	// StandardRate is the default reimbursement percentage applied to
	// generics and branded medications alike.
	StandardRate = 70

	// priceCeiling is the public price above which a medication is not
	// reimbursed (special expensive treatments go through a separate
	// authorization circuit).
	priceCeiling = 10000
)

// noReimbMarkers force a zero rate when present in the display name:
// [P] special prescription, [V] vaccine, [SS]/[STUP] controlled
// substances. Checked as literal substrings, uppercase as stored.
var noReimbMarkers = []string{"[P]", "[V]", "[SS]", "[STUP]"}

// ClassifyRate derives the reimbursement rate for a record from
// scratch. Pure function of the record: a reserved marker in the name
// or a price above the ceiling forces 0, everything else gets the
// standard 70%.
func ClassifyRate(m *entities.Medication) int {
	for _, marker := range noReimbMarkers {
		if strings.Contains(m.Name, marker) {
			return 0
		}
	}
	if m.Ppv > priceCeiling {
		return 0
	}
	return StandardRate
}
