package reconciler

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bentalba/taawidaty/interfaces"
	"github.com/bentalba/taawidaty/logging"
	"github.com/bentalba/taawidaty/reconciler/entities"
)

// LoadCatalogue reads a whole catalogue file: an ordered JSON array of
// medication records. Normalized names are precomputed on load.
func LoadCatalogue(path string) ([]entities.Medication, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue %s: %w", path, err)
	}

	var meds []entities.Medication
	if err := json.Unmarshal(raw, &meds); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue %s: %w", path, err)
	}

	for i := range meds {
		meds[i].NameNormalized = Normalize(meds[i].Name)
	}
	return meds, nil
}

// WriteCatalogue writes the collection as indented UTF-8 JSON, loaded
// whole and written whole. The engine never writes over its own input:
// callers pass a distinct output path and promote it manually after
// reviewing the change report.
func WriteCatalogue(path string, meds []entities.Medication) error {
	raw, err := json.MarshalIndent(meds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalogue: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write catalogue %s: %w", path, err)
	}
	return nil
}

// LoadScrapeFeed reads a scraped price listing: a JSON array of
// {name, publicPrice, letter} rows. Rows without a name are skipped
// with a warning; a null price is kept as-is (the matcher ignores
// price-less rows, they must not disappear silently).
func LoadScrapeFeed(path string) ([]entities.Incoming, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scrape feed %s: %w", path, err)
	}

	var rows []entities.ScrapeEntry
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse scrape feed %s: %w", path, err)
	}

	feed := make([]entities.Incoming, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if row.Name == "" {
			skipped++
			continue
		}
		feed = append(feed, row.ToIncoming())
	}
	if skipped > 0 {
		logging.Warn("Skipped nameless scrape rows", "count", skipped, "path", path)
	}
	return feed, nil
}

// WriteReport writes a change report as indented JSON for review.
func WriteReport(path string, report *entities.ChangeReport) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// Compile-time check to ensure FileLoader implements CatalogueLoader
var _ interfaces.CatalogueLoader = (*FileLoader)(nil)

// FileLoader loads one or more catalogue files (one per insurance
// scheme) into a single collection for serving.
type FileLoader struct {
	Paths []string
}

// NewFileLoader creates a loader over the given catalogue files.
func NewFileLoader(paths ...string) *FileLoader {
	return &FileLoader{Paths: paths}
}

// Load reads every configured catalogue file and concatenates the
// records. A missing file fails the load: serving a partial catalogue
// would look like thousands of deleted medications.
func (l *FileLoader) Load() ([]entities.Medication, error) {
	var all []entities.Medication
	for _, path := range l.Paths {
		meds, err := LoadCatalogue(path)
		if err != nil {
			return nil, err
		}
		all = append(all, meds...)
	}
	return all, nil
}
