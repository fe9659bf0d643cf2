// Package scheduler provides automated catalogue reloads and health monitoring
// for the catalogue API. It handles cron-based reloads of the catalogue files,
// data quality reporting, and coordinates refresh operations with the data
// container using dependency injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/bentalba/taawidaty/data"
	"github.com/bentalba/taawidaty/interfaces"
	"github.com/bentalba/taawidaty/logging"
	"github.com/bentalba/taawidaty/metrics"
	"github.com/bentalba/taawidaty/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalogue reloads and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	loader    interfaces.CatalogueLoader
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.CatalogueLoader) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		loader:    loader,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start initializes the scheduler with catalogue reloads and health monitoring
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.reloadCatalogue(); err != nil {
		logging.Error("Failed to perform initial catalogue load", "error", err)
		return fmt.Errorf("initial catalogue load failed: %w", err)
	}

	// The reconcile batch rewrites the catalogue files before 06:00,
	// so one reload a day picks up fresh data.
	_, err := s.scheduler.Every(1).Days().At("06:00").Do(func() {
		if err := s.reloadCatalogue(); err != nil {
			logging.Error("Failed to reload catalogue", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule reloads", "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}

	s.scheduler.StartAsync()

	// Start health monitoring
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reloadCatalogue performs a complete catalogue reload using injected dependencies
func (s *Scheduler) reloadCatalogue() error {
	// Prevent concurrent reloads
	if !s.dataStore.BeginUpdate() {
		logging.Info("Reload already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting catalogue reload at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	newMedications, err := s.loader.Load()
	if err != nil {
		logging.Error("Failed to load catalogue files", "error", err)
		return fmt.Errorf("failed to load catalogue files: %w", err)
	}

	validator := validation.NewDataValidator()
	report := validator.ReportDataQuality(newMedications)

	if len(report.DuplicateIDs) > 0 {
		logging.Warn("Duplicate ids detected",
			"total", len(report.DuplicateIDs),
			"id_list", report.DuplicateIDs,
		)
	}

	if report.RecordsWithoutName > 0 {
		logging.Warn("Records without a name",
			"count", report.RecordsWithoutName,
		)
	}

	if len(report.InvariantViolations) > 0 {
		logging.Warn("Records with inconsistent financial fields",
			"count", len(report.InvariantViolations),
			"names", report.InvariantViolations,
		)
	}

	byInsurance, idIndex, barcodeIndex := data.BuildIndexes(newMedications)

	// Atomic update using injected data store
	s.dataStore.UpdateData(newMedications, byInsurance, idIndex, barcodeIndex)

	for insurance, meds := range byInsurance {
		metrics.CatalogueMedications.WithLabelValues(insurance).Set(float64(len(meds)))
	}
	metrics.CatalogueLastReload.SetToCurrentTime()

	elapsed := time.Since(start)
	logging.Info("Catalogue reload completed",
		"duration", elapsed.String(),
		"medication_count", len(newMedications),
		"barcode_coverage", report.BarcodeCoverage)

	return nil
}

// startHealthMonitoring monitors the freshness of the catalogue
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastReload := s.dataStore.GetLastReloaded()
			if time.Since(lastReload) > 25*time.Hour {
				logging.Warn("Catalogue hasn't been reloaded in over 25 hours")
			}
		}
	}()
}
