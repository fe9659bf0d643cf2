// Package interfaces defines core abstractions for the taawidaty
// catalogue service to improve testability, maintainability, and
// separation of concerns.
package interfaces

import (
	"time"

	"github.com/bentalba/taawidaty/reconciler/entities"
)

// DataQualityReport provides a summary of data quality issues found in
// a loaded catalogue.
type DataQualityReport struct {
	DuplicateIDs        []string // "INSURANCE:id" keys seen more than once
	RecordsWithoutName  int
	RecordsWithoutPrice int      // ppv == 0
	BarcodeCoverage     int      // records with a resolved barcode
	InvariantViolations []string // names whose financial fields disagree with the formula
}

// DataStore defines the contract for serving-side storage. It provides
// thread-safe access to the catalogue with atomic swaps for
// zero-downtime reloads.
type DataStore interface {
	GetMedications() []entities.Medication
	GetByInsurance(insurance string) []entities.Medication
	GetByID(insurance string, id int) (entities.Medication, bool)
	GetByBarcode(barcode string) []entities.Medication
	GetLastReloaded() time.Time
	IsUpdating() bool

	UpdateData(medications []entities.Medication,
		byInsurance map[string][]entities.Medication,
		idIndex map[string]entities.Medication,
		barcodeIndex map[string][]entities.Medication)
	BeginUpdate() bool
	EndUpdate()
}

// CatalogueLoader defines the contract for loading the authoritative
// catalogue files into memory.
type CatalogueLoader interface {
	Load() ([]entities.Medication, error)
}

// Reconciler defines the contract of the matching and merge engine.
type Reconciler interface {
	// Reconcile merges an incoming feed into a catalogue, returning the
	// merged collection and a change report. Inputs are not modified.
	Reconcile(catalogue []entities.Medication, feed []entities.Incoming) ([]entities.Medication, *entities.ChangeReport)

	// RefreshRates rederives every reimbursement rate from scratch.
	RefreshRates(catalogue []entities.Medication) ([]entities.Medication, entities.RateStats)
}

// Scheduler defines the contract for the catalogue reload job and
// health monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ValidateMedication checks if a single catalogue record is valid.
	ValidateMedication(m *entities.Medication) error

	// CheckFinancials verifies the reimbursement formula invariants.
	CheckFinancials(m *entities.Medication) error

	// ReportDataQuality scans a whole collection for integrity issues.
	ReportDataQuality(medications []entities.Medication) *DataQualityReport

	// ValidateInput validates user-supplied search strings.
	ValidateInput(input string) error

	// ValidateID parses and validates a record identifier.
	ValidateID(input string) (int, error)

	// ValidateBarcode validates a barcode lookup value.
	ValidateBarcode(input string) (string, error)
}
