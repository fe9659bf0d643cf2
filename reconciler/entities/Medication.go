package entities

// Medication is a single catalogue record. Field tags match the
// catalogue JSON files served to the site, so a round trip through
// encoding/json is byte-stable apart from field ordering.
type Medication struct {
	Id                  int     `json:"id"`
	Barcode             *string `json:"barcode"`
	Name                string  `json:"name"`
	Dci                 string  `json:"dci"`
	Dosage              string  `json:"dosage"`
	Forme               string  `json:"forme"`
	Presentation        string  `json:"presentation"`
	Ppv                 float64 `json:"ppv"`
	PrixBr              float64 `json:"prix_br"`
	Ph                  float64 `json:"ph,omitempty"`
	PrixBrPh            float64 `json:"prix_br_ph,omitempty"`
	TauxRemb            int     `json:"taux_remb"`
	ReimbursementAmount float64 `json:"reimbursement_amount"`
	PatientPays         float64 `json:"patient_pays"`
	ClasseTherapeutique string  `json:"classe_therapeutique,omitempty"`
	Type                string  `json:"type"`
	Insurance           string  `json:"insurance"`
	NameNormalized      string  `json:"-"` // Pre-computed for search and matching
}

// Equal reports field-level equality, comparing the barcode by value
// rather than by pointer identity.
func (m Medication) Equal(o Medication) bool {
	if (m.Barcode == nil) != (o.Barcode == nil) {
		return false
	}
	if m.Barcode != nil && *m.Barcode != *o.Barcode {
		return false
	}
	m.Barcode, o.Barcode = nil, nil
	return m == o
}

// BarcodeValue returns the barcode or "" when the record has none.
func (m Medication) BarcodeValue() string {
	if m.Barcode == nil {
		return ""
	}
	return *m.Barcode
}
