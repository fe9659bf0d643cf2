// Package handlers provides HTTP request handlers for the catalogue API endpoints.
// It includes handlers for medication search, barcode lookup, pagination, health
// checks, and response formatting with proper input validation and error handling.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/bentalba/taawidaty/data"
	"github.com/bentalba/taawidaty/interfaces"
	"github.com/bentalba/taawidaty/logging"
	"github.com/bentalba/taawidaty/reconciler"
	"github.com/bentalba/taawidaty/reconciler/entities"
	"github.com/go-chi/chi/v5"
)

const (
	pageSize         = 10
	maxSearchResults = 100
)

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string                 `json:"status"`
	LastReload    string                 `json:"last_reload"`
	DataAgeHours  float64                `json:"data_age_hours"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	UptimeHuman   string                 `json:"uptime_human"`
	Data          map[string]interface{} `json:"data"`
	System        map[string]interface{} `json:"system"`
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	RespondWithJSON(w, code, errorResponse)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// CalculateNextUpdate calculates the next scheduled catalogue reload.
// The scheduler runs once a day at 06:00 local time.
func CalculateNextUpdate() time.Time {
	now := time.Now()

	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	if now.Before(sixAM) {
		return sixAM
	}

	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 6, 0, 0, 0, tomorrow.Location())
}

// ServeDatabase returns the full catalogue across all insurance schemes
func ServeDatabase(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		medications := dataContainer.GetMedications()
		RespondWithCompressedJSON(w, r, http.StatusOK, medications)
	}
}

// ServeInsuranceDatabase returns the catalogue of one insurance scheme
func ServeInsuranceDatabase(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		insurance := strings.ToUpper(chi.URLParam(r, "insurance"))
		medications := dataContainer.GetByInsurance(insurance)
		if len(medications) == 0 {
			RespondWithError(w, http.StatusNotFound, "Unknown insurance scheme")
			return
		}
		RespondWithCompressedJSON(w, r, http.StatusOK, medications)
	}
}

// ServePagedDatabase returns one page of an insurance scheme's catalogue
func ServePagedDatabase(dataContainer *data.DataContainer, validator interfaces.DataValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		insurance := strings.ToUpper(chi.URLParam(r, "insurance"))
		pageNumber := chi.URLParam(r, "pageNumber")
		page, err := validator.ValidateID(pageNumber)
		if err != nil {
			logging.Warn("Unusual user input", "pageNumber", pageNumber)
			RespondWithError(w, http.StatusBadRequest, "Invalid page number")
			return
		}

		medications := dataContainer.GetByInsurance(insurance)
		if len(medications) == 0 {
			RespondWithError(w, http.StatusNotFound, "Unknown insurance scheme")
			return
		}

		start := (page - 1) * pageSize
		end := start + pageSize

		if start >= len(medications) {
			RespondWithError(w, http.StatusNotFound, "Page not found")
			return
		}

		if end > len(medications) {
			end = len(medications)
		}

		totalItems := len(medications)
		maxPage := (totalItems + pageSize - 1) / pageSize

		response := map[string]interface{}{
			"data":       medications[start:end],
			"page":       page,
			"pageSize":   pageSize,
			"totalItems": totalItems,
			"maxPage":    maxPage,
		}

		RespondWithJSON(w, http.StatusOK, response)
	}
}

// FindMedication searches for medications by name across all schemes.
// Matching runs on the normalized name, so accents and case in the
// query do not matter.
func FindMedication(dataContainer *data.DataContainer, validator interfaces.DataValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		element := chi.URLParam(r, "element")
		if element == "" {
			RespondWithError(w, http.StatusBadRequest, "Missing search term")
			return
		}

		if err := validator.ValidateInput(element); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		query := reconciler.Normalize(element)

		medications := dataContainer.GetMedications()
		results := make([]entities.Medication, 0)

		for _, med := range medications {
			name := med.NameNormalized
			if name == "" {
				name = reconciler.Normalize(med.Name)
			}
			if strings.Contains(name, query) {
				results = append(results, med)
				if len(results) >= maxSearchResults {
					break
				}
			}
		}

		// Always return 200 with a results array (empty if no matches)
		RespondWithCompressedJSON(w, r, http.StatusOK, results)
	}
}

// FindMedicationByID finds a medication by insurance scheme and id
func FindMedicationByID(dataContainer *data.DataContainer, validator interfaces.DataValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		insurance := strings.ToUpper(chi.URLParam(r, "insurance"))
		idStr := chi.URLParam(r, "id")
		id, err := validator.ValidateID(idStr)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		med, exists := dataContainer.GetByID(insurance, id)
		if !exists {
			RespondWithError(w, http.StatusNotFound, "Medication not found")
			return
		}

		RespondWithJSON(w, http.StatusOK, med)
	}
}

// FindByBarcode finds medications by barcode. The same barcode can
// resolve in more than one insurance scheme, so this returns a list.
func FindByBarcode(dataContainer *data.DataContainer, validator interfaces.DataValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codeStr := chi.URLParam(r, "code")
		code, err := validator.ValidateBarcode(codeStr)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		results := dataContainer.GetByBarcode(code)
		if len(results) == 0 {
			RespondWithError(w, http.StatusNotFound, "Barcode not found")
			return
		}

		RespondWithJSON(w, http.StatusOK, results)
	}
}

// HealthCheck returns server health information
func HealthCheck(dataContainer *data.DataContainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		uptime := time.Since(dataContainer.GetServerStartTime())

		medications := dataContainer.GetMedications()
		lastReload := dataContainer.GetLastReloaded()
		isUpdating := dataContainer.IsUpdating()
		dataAge := time.Since(lastReload)

		// Determine health status based on data availability and age
		var healthStatus string
		var httpStatus int
		switch {
		case len(medications) == 0:
			healthStatus = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		case dataAge > 25*time.Hour:
			healthStatus = "degraded"
			httpStatus = http.StatusOK
		default:
			healthStatus = "healthy"
			httpStatus = http.StatusOK
		}

		schemes := make(map[string]int)
		for _, med := range medications {
			schemes[med.Insurance]++
		}

		response := HealthResponse{
			Status:        healthStatus,
			LastReload:    lastReload.Format(time.RFC3339),
			DataAgeHours:  dataAge.Hours(),
			UptimeSeconds: uptime.Seconds(),
			UptimeHuman:   formatUptimeHuman(uptime),
			Data: map[string]interface{}{
				"api_version": "1.0",
				"medications": len(medications),
				"schemes":     schemes,
				"is_updating": isUpdating,
				"next_update": CalculateNextUpdate().Format(time.RFC3339),
			},
			System: map[string]interface{}{
				"goroutines": runtime.NumGoroutine(),
				"memory": map[string]interface{}{
					"alloc_mb":       int(m.Alloc / 1024 / 1024),
					"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
					"sys_mb":         int(m.Sys / 1024 / 1024),
					"num_gc":         m.NumGC,
				},
			},
		}

		RespondWithJSON(w, httpStatus, response)
	}
}
