// Package data provides thread-safe data storage and management for the catalogue API.
// It includes the DataContainer struct with atomic operations for zero-downtime updates
// and thread-safe access methods for the merged medication catalogue.
package data

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bentalba/taawidaty/interfaces"
	"github.com/bentalba/taawidaty/logging"
	"github.com/bentalba/taawidaty/reconciler/entities"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds all the data with atomic pointers for zero-downtime updates
type DataContainer struct {
	medications     atomic.Value // []entities.Medication
	byInsurance     atomic.Value // map[string][]entities.Medication
	idIndex         atomic.Value // map[string]entities.Medication keyed "INSURANCE:id"
	barcodeIndex    atomic.Value // map[string][]entities.Medication
	lastReloaded    atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.medications.Store(make([]entities.Medication, 0))
	dc.byInsurance.Store(make(map[string][]entities.Medication))
	dc.idIndex.Store(make(map[string]entities.Medication))
	dc.barcodeIndex.Store(make(map[string][]entities.Medication))
	dc.lastReloaded.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Thread-safe getters with type check

// GetMedications returns the full catalogue across all insurance schemes
func (dc *DataContainer) GetMedications() []entities.Medication {
	if v := dc.medications.Load(); v != nil {
		if medications, ok := v.([]entities.Medication); ok {
			return medications
		}
	}

	logging.Warn("Medications list is empty or invalid")
	return []entities.Medication{}
}

// GetByInsurance returns the catalogue slice for one insurance scheme
func (dc *DataContainer) GetByInsurance(insurance string) []entities.Medication {
	if v := dc.byInsurance.Load(); v != nil {
		if byInsurance, ok := v.(map[string][]entities.Medication); ok {
			return byInsurance[insurance]
		}
	}

	logging.Warn("Insurance index is empty or invalid")
	return []entities.Medication{}
}

// GetByID returns the record with the given id inside an insurance scheme
func (dc *DataContainer) GetByID(insurance string, id int) (entities.Medication, bool) {
	if v := dc.idIndex.Load(); v != nil {
		if idIndex, ok := v.(map[string]entities.Medication); ok {
			med, found := idIndex[IndexKey(insurance, id)]
			return med, found
		}
	}

	logging.Warn("ID index is empty or invalid")
	return entities.Medication{}, false
}

// GetByBarcode returns every record carrying the given barcode. A
// barcode can appear once per insurance scheme.
func (dc *DataContainer) GetByBarcode(barcode string) []entities.Medication {
	if v := dc.barcodeIndex.Load(); v != nil {
		if barcodeIndex, ok := v.(map[string][]entities.Medication); ok {
			return barcodeIndex[barcode]
		}
	}

	logging.Warn("Barcode index is empty or invalid")
	return []entities.Medication{}
}

// GetLastReloaded returns the timestamp of the last catalogue reload
func (dc *DataContainer) GetLastReloaded() time.Time {
	if v := dc.lastReloaded.Load(); v != nil {
		if lastReloaded, ok := v.(time.Time); ok {
			return lastReloaded
		}
	}

	logging.Warn("Could not get the last reloaded value")
	return time.Time{}
}

// IsUpdating returns true if a catalogue reload is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically updates all data in the container
func (dc *DataContainer) UpdateData(medications []entities.Medication,
	byInsurance map[string][]entities.Medication,
	idIndex map[string]entities.Medication,
	barcodeIndex map[string][]entities.Medication) {

	// Atomic swap (zero downtime replacement)
	dc.medications.Store(medications)
	dc.byInsurance.Store(byInsurance)
	dc.idIndex.Store(idIndex)
	dc.barcodeIndex.Store(barcodeIndex)
	dc.lastReloaded.Store(time.Now())
}

// BeginUpdate marks the start of a catalogue reload
// Returns true if the reload can proceed, false if another one is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a catalogue reload
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}

// IndexKey builds the id index key for a record inside an insurance scheme.
// Ids restart at 1 for every scheme, so the scheme is part of the key.
func IndexKey(insurance string, id int) string {
	return fmt.Sprintf("%s:%d", insurance, id)
}

// BuildIndexes derives all lookup maps from a loaded catalogue. The
// scheduler calls this once per reload so the container only ever sees
// complete index sets.
func BuildIndexes(medications []entities.Medication) (
	map[string][]entities.Medication,
	map[string]entities.Medication,
	map[string][]entities.Medication) {

	byInsurance := make(map[string][]entities.Medication)
	idIndex := make(map[string]entities.Medication, len(medications))
	barcodeIndex := make(map[string][]entities.Medication)

	for _, med := range medications {
		byInsurance[med.Insurance] = append(byInsurance[med.Insurance], med)
		idIndex[IndexKey(med.Insurance, med.Id)] = med
		if med.Barcode != nil && *med.Barcode != "" {
			barcodeIndex[*med.Barcode] = append(barcodeIndex[*med.Barcode], med)
		}
	}

	return byInsurance, idIndex, barcodeIndex
}
