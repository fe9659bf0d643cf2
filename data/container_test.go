package data

import (
	"sync"
	"testing"
	"time"

	"github.com/bentalba/taawidaty/reconciler/entities"
)

func sampleMedications() []entities.Medication {
	barcode := "6118000123456"
	return []entities.Medication{
		{Id: 1, Name: "DOLIPRANE 1000MG", Barcode: &barcode, Ppv: 13.5, Insurance: "CNOPS"},
		{Id: 2, Name: "PARACETAMOL 500 MG", Ppv: 20, Insurance: "CNOPS"},
		{Id: 1, Name: "DOLIPRANE 1000MG", Barcode: &barcode, Ppv: 13.5, Insurance: "CNSS"},
	}
}

func TestNewDataContainerEmpty(t *testing.T) {
	dc := NewDataContainer()

	if got := dc.GetMedications(); len(got) != 0 {
		t.Errorf("expected empty medications, got %d", len(got))
	}
	if got := dc.GetByInsurance("CNOPS"); len(got) != 0 {
		t.Errorf("expected empty insurance slice, got %d", len(got))
	}
	if _, found := dc.GetByID("CNOPS", 1); found {
		t.Error("expected no record in an empty container")
	}
	if !dc.GetLastReloaded().IsZero() {
		t.Error("expected zero last-reloaded time")
	}
	if dc.IsUpdating() {
		t.Error("new container must not report an update in progress")
	}
}

func TestUpdateDataAndLookups(t *testing.T) {
	dc := NewDataContainer()
	meds := sampleMedications()
	byInsurance, idIndex, barcodeIndex := BuildIndexes(meds)

	dc.UpdateData(meds, byInsurance, idIndex, barcodeIndex)

	if got := dc.GetMedications(); len(got) != 3 {
		t.Errorf("medications = %d, want 3", len(got))
	}
	if got := dc.GetByInsurance("CNOPS"); len(got) != 2 {
		t.Errorf("CNOPS slice = %d, want 2", len(got))
	}
	if got := dc.GetByInsurance("CNSS"); len(got) != 1 {
		t.Errorf("CNSS slice = %d, want 1", len(got))
	}

	med, found := dc.GetByID("CNOPS", 2)
	if !found || med.Name != "PARACETAMOL 500 MG" {
		t.Errorf("GetByID(CNOPS, 2) = %+v, %v", med, found)
	}
	if _, found := dc.GetByID("CNSS", 2); found {
		t.Error("id 2 must not resolve under CNSS")
	}

	hits := dc.GetByBarcode("6118000123456")
	if len(hits) != 2 {
		t.Errorf("barcode hits = %d, want 2 (one per scheme)", len(hits))
	}

	if dc.GetLastReloaded().IsZero() {
		t.Error("UpdateData must stamp the reload time")
	}
}

func TestBuildIndexesSkipsEmptyBarcodes(t *testing.T) {
	empty := ""
	meds := []entities.Medication{
		{Id: 1, Name: "A", Insurance: "CNOPS"},
		{Id: 2, Name: "B", Barcode: &empty, Insurance: "CNOPS"},
	}

	_, _, barcodeIndex := BuildIndexes(meds)
	if len(barcodeIndex) != 0 {
		t.Errorf("empty barcodes must not be indexed, got %d keys", len(barcodeIndex))
	}
}

func TestBeginEndUpdate(t *testing.T) {
	dc := NewDataContainer()

	if !dc.BeginUpdate() {
		t.Fatal("first BeginUpdate should succeed")
	}
	if dc.BeginUpdate() {
		t.Error("concurrent BeginUpdate should be rejected")
	}
	if !dc.IsUpdating() {
		t.Error("IsUpdating should be true during an update")
	}

	dc.EndUpdate()
	if dc.IsUpdating() {
		t.Error("IsUpdating should be false after EndUpdate")
	}
	if !dc.BeginUpdate() {
		t.Error("BeginUpdate should succeed again after EndUpdate")
	}
}

func TestServerStartTime(t *testing.T) {
	dc := NewDataContainer()
	start := time.Now()
	dc.SetServerStartTime(start)
	if !dc.GetServerStartTime().Equal(start) {
		t.Error("server start time round trip failed")
	}
}

func TestConcurrentReadsDuringSwap(t *testing.T) {
	dc := NewDataContainer()
	meds := sampleMedications()
	byInsurance, idIndex, barcodeIndex := BuildIndexes(meds)

	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					dc.GetMedications()
					dc.GetByInsurance("CNOPS")
					dc.GetByBarcode("6118000123456")
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		dc.UpdateData(meds, byInsurance, idIndex, barcodeIndex)
	}
	close(done)
	wg.Wait()
}

func TestIndexKey(t *testing.T) {
	if got := IndexKey("CNOPS", 42); got != "CNOPS:42" {
		t.Errorf("IndexKey = %q, want CNOPS:42", got)
	}
}
