package reconciler

import (
	"math"
	"regexp"
	"strings"

	"github.com/bentalba/taawidaty/reconciler/entities"
)

var (
	// dosagePattern extracts a dosage like "15 MG", "125 MG/5 ML" or
	// "0,5 %" from a display name.
	dosagePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?\s*(?:MG|MCG|ML|G|UI|%)(?:/\d+\s*(?:MG|MCG|ML|G|UI|%)?)?)`)

	// bracketMarker matches reserved markers like [P] or [STUP] so they
	// can be stripped from a derived pharmaceutical form.
	bracketMarker = regexp.MustCompile(`\[.*?\]`)
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recalculate rederives the reimbursement amount and the patient share
// from the stored prices and rate:
//
//	reimbursement = round(base * taux/100, 2)   base = prix_br, else ppv
//	patient_pays  = round(ppv - reimbursement, 2), clamped to >= 0
//
// A zero rate yields a zero reimbursement and patient_pays == ppv
// exactly. Idempotent: recalculating an already-consistent record
// changes nothing.
func Recalculate(m *entities.Medication) {
	if m.TauxRemb <= 0 {
		m.ReimbursementAmount = 0
		m.PatientPays = m.Ppv
		return
	}
	base := m.PrixBr
	if base <= 0 {
		base = m.Ppv
	}
	reimb := round2(base * float64(m.TauxRemb) / 100)
	patient := round2(m.Ppv - reimb)
	if patient < 0 {
		patient = 0
	}
	m.ReimbursementAmount = reimb
	m.PatientPays = patient
}

// Merge applies a matched incoming record onto an existing catalogue
// record and returns whether anything changed.
//
// Price fields are always taken from the incoming side when present.
// Identity fields (name, dci, dosage, forme, presentation, barcode,
// classe_therapeutique, type) are only overwritten by the guide feed,
// which is authoritative for them; a price scrape carries nothing but a
// name and a price. taux_remb, id and insurance belong to the existing
// record and are never touched. Derived fields are recomputed after any
// change, so re-merging unchanged inputs is a no-op.
func Merge(existing *entities.Medication, in entities.Incoming) bool {
	before := *existing

	switch in.Kind {
	case entities.FeedScrape:
		if in.Price != nil {
			existing.Ppv = *in.Price
			existing.PrixBr = *in.Price
		}
	case entities.FeedGuide:
		g := in.Guide
		if g == nil {
			break
		}
		if g.Barcode != nil {
			barcode := *g.Barcode
			existing.Barcode = &barcode
		}
		existing.Name = g.Name
		existing.Dci = g.Dci
		existing.Dosage = g.Dosage
		existing.Forme = g.Forme
		existing.Presentation = g.Presentation
		if g.Ppv > 0 {
			existing.Ppv = g.Ppv
		}
		if g.PrixBr > 0 {
			existing.PrixBr = g.PrixBr
		}
		existing.Ph = g.Ph
		existing.PrixBrPh = g.PrixBrPh
		existing.ClasseTherapeutique = g.ClasseTherapeutique
		if g.Type != "" {
			existing.Type = g.Type
		}
	}

	existing.NameNormalized = Normalize(existing.Name)
	Recalculate(existing)

	return !existing.Equal(before)
}

// Promote creates a new catalogue record from an unmatched incoming
// record, under the next free dense identifier. The reimbursement rate
// defaults to 0 until a rate refresh or a reviewer says otherwise, so
// the patient pays the full public price.
func Promote(in entities.Incoming, id int, insurance string) entities.Medication {
	med := entities.Medication{
		Id:        id,
		Type:      "Princeps",
		Insurance: insurance,
	}

	switch in.Kind {
	case entities.FeedGuide:
		if g := in.Guide; g != nil {
			if g.Barcode != nil {
				barcode := *g.Barcode
				med.Barcode = &barcode
			}
			med.Name = g.Name
			med.Dci = g.Dci
			med.Dosage = g.Dosage
			med.Forme = g.Forme
			med.Presentation = g.Presentation
			med.Ppv = g.Ppv
			med.PrixBr = g.PrixBr
			med.Ph = g.Ph
			med.PrixBrPh = g.PrixBrPh
			med.ClasseTherapeutique = g.ClasseTherapeutique
			if g.Type != "" {
				med.Type = g.Type
			}
		}
	default:
		med.Name = in.Name
		if in.Price != nil {
			med.Ppv = *in.Price
			med.PrixBr = *in.Price
		}
		med.Dosage, med.Forme = deriveDosageForme(in.Name)
	}

	med.NameNormalized = Normalize(med.Name)
	Recalculate(&med)
	return med
}

// deriveDosageForme guesses dosage and pharmaceutical form from a bare
// scraped display name: the dosage is the first numeric-unit token, the
// form is whatever follows the first comma with markers stripped.
func deriveDosageForme(fullName string) (dosage, forme string) {
	if m := dosagePattern.FindString(fullName); m != "" {
		dosage = strings.ToUpper(strings.TrimSpace(m))
	}
	if idx := strings.Index(fullName, ","); idx != -1 {
		forme = strings.TrimSpace(bracketMarker.ReplaceAllString(fullName[idx+1:], ""))
	}
	return dosage, forme
}
