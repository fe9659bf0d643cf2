package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bentalba/taawidaty/data"
	"github.com/bentalba/taawidaty/reconciler"
	"github.com/bentalba/taawidaty/reconciler/entities"
)

// writeCatalogueFile drops a small catalogue JSON file into dir
func writeCatalogueFile(t *testing.T, dir, name string, medications []entities.Medication) string {
	t.Helper()
	path := filepath.Join(dir, name)
	payload, err := json.Marshal(medications)
	if err != nil {
		t.Fatalf("Failed to marshal catalogue: %v", err)
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatalf("Failed to write catalogue file: %v", err)
	}
	return path
}

func TestNewScheduler(t *testing.T) {
	dc := data.NewDataContainer()
	loader := reconciler.NewFileLoader("data/medications-cnops.json")

	s := NewScheduler(dc, loader)
	if s == nil {
		t.Fatal("Scheduler should not be nil")
	}
	if s.dataStore == nil || s.loader == nil || s.scheduler == nil {
		t.Error("Scheduler dependencies should be set")
	}
}

func TestReloadCatalogue(t *testing.T) {
	dir := t.TempDir()
	cnops := writeCatalogueFile(t, dir, "cnops.json", []entities.Medication{
		{Id: 1, Name: "DOLIPRANE 1000MG", Ppv: 13.5, TauxRemb: 70, Insurance: "CNOPS"},
		{Id: 2, Name: "AUGMENTIN 500MG", Ppv: 45.0, TauxRemb: 70, Insurance: "CNOPS"},
	})
	cnss := writeCatalogueFile(t, dir, "cnss.json", []entities.Medication{
		{Id: 1, Name: "DOLIPRANE 1000MG", Ppv: 13.5, TauxRemb: 70, Insurance: "CNSS"},
	})

	dc := data.NewDataContainer()
	s := NewScheduler(dc, reconciler.NewFileLoader(cnops, cnss))

	if err := s.reloadCatalogue(); err != nil {
		t.Fatalf("reloadCatalogue failed: %v", err)
	}

	if got := len(dc.GetMedications()); got != 3 {
		t.Errorf("Expected 3 medications after reload, got %d", got)
	}
	if got := len(dc.GetByInsurance("CNOPS")); got != 2 {
		t.Errorf("Expected 2 CNOPS medications, got %d", got)
	}
	if dc.GetLastReloaded().IsZero() {
		t.Error("Last reload time should be set")
	}
	if dc.IsUpdating() {
		t.Error("Update flag should be cleared after reload")
	}

	if _, ok := dc.GetByID("CNSS", 1); !ok {
		t.Error("CNSS id 1 should resolve after reload")
	}
}

func TestReloadCatalogueMissingFile(t *testing.T) {
	dc := data.NewDataContainer()
	s := NewScheduler(dc, reconciler.NewFileLoader(filepath.Join(t.TempDir(), "missing.json")))

	if err := s.reloadCatalogue(); err == nil {
		t.Error("Expected error for missing catalogue file")
	}
	if len(dc.GetMedications()) != 0 {
		t.Error("Container should stay empty after a failed reload")
	}
	if dc.IsUpdating() {
		t.Error("Update flag should be cleared after a failed reload")
	}
}

func TestReloadCatalogueSkipsWhenUpdating(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogueFile(t, dir, "cnops.json", []entities.Medication{
		{Id: 1, Name: "DOLIPRANE 1000MG", Ppv: 13.5, TauxRemb: 70, Insurance: "CNOPS"},
	})

	dc := data.NewDataContainer()
	s := NewScheduler(dc, reconciler.NewFileLoader(path))

	// Simulate a reload already in progress
	if !dc.BeginUpdate() {
		t.Fatal("BeginUpdate should succeed on a fresh container")
	}

	if err := s.reloadCatalogue(); err != nil {
		t.Fatalf("Skipped reload should not error: %v", err)
	}
	if len(dc.GetMedications()) != 0 {
		t.Error("Skipped reload should not load data")
	}

	dc.EndUpdate()

	if err := s.reloadCatalogue(); err != nil {
		t.Fatalf("reloadCatalogue after EndUpdate failed: %v", err)
	}
	if len(dc.GetMedications()) != 1 {
		t.Error("Reload should load data once the flag is cleared")
	}
}

func TestStartAndStop(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogueFile(t, dir, "cnops.json", []entities.Medication{
		{Id: 1, Name: "DOLIPRANE 1000MG", Ppv: 13.5, TauxRemb: 70, Insurance: "CNOPS"},
	})

	dc := data.NewDataContainer()
	s := NewScheduler(dc, reconciler.NewFileLoader(path))

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if len(dc.GetMedications()) != 1 {
		t.Error("Start should perform the initial catalogue load")
	}
}

func TestStartFailsWithoutCatalogue(t *testing.T) {
	dc := data.NewDataContainer()
	s := NewScheduler(dc, reconciler.NewFileLoader(filepath.Join(t.TempDir(), "missing.json")))

	if err := s.Start(); err == nil {
		t.Error("Start should fail when the initial load fails")
		s.Stop()
	}
}
