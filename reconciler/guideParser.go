package reconciler

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/bentalba/taawidaty/logging"
	"github.com/bentalba/taawidaty/reconciler/entities"
)

// Column layout of the tab-separated export of the official guide:
// barcode, name, DCI, form+dosage, presentation, PPV, base price (PPV),
// hospital price, base price (PH), therapeutic class, type marker.
const guideColumns = 11

var formDosageSeparator = regexp.MustCompile(`(?i)\s+[àa]\s+`)

// ParseGuideFile reads the tab-separated guide export. Header and empty
// lines are skipped, a row without a name is dropped with a warning,
// and unparseable numeric fields decay to zero so one bad cell never
// aborts the batch.
func ParseGuideFile(path string) ([]entities.Incoming, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open guide file %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("Failed to close guide file", "error", err)
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0), 1*1024*1024)

	var feed []entities.Incoming
	lineCount := 0
	skippedEmpty := 0
	skippedColumns := 0
	skippedNameless := 0

	for scanner.Scan() {
		lineCount++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			skippedEmpty++
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < guideColumns {
			skippedColumns++
			continue
		}

		name := strings.TrimSpace(fields[1])
		if name == "" || isGuideHeader(fields) {
			skippedNameless++
			continue
		}

		forme, dosage := parseFormDosage(fields[3])
		entry := entities.GuideEntry{
			Barcode:             normalizeBarcode(fields[0]),
			Name:                name,
			Dci:                 strings.TrimSpace(fields[2]),
			Dosage:              dosage,
			Forme:               forme,
			Presentation:        strings.TrimSpace(fields[4]),
			Ppv:                 parsePrice(fields[5]),
			PrixBr:              parsePrice(fields[6]),
			Ph:                  parsePrice(fields[7]),
			PrixBrPh:            parsePrice(fields[8]),
			ClasseTherapeutique: strings.TrimSpace(fields[9]),
			Type:                guideType(fields[10]),
		}
		feed = append(feed, entry.ToIncoming())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error in %s: %w", path, err)
	}

	logging.Info("Guide file parsed",
		"path", path,
		"lines", lineCount,
		"entries", len(feed),
		"skipped_empty", skippedEmpty,
		"skipped_columns", skippedColumns,
		"skipped_nameless", skippedNameless,
	)
	return feed, nil
}

// isGuideHeader recognizes the export's repeated column-title rows.
func isGuideHeader(fields []string) bool {
	name := strings.ToUpper(strings.TrimSpace(fields[1]))
	return name == "NOM" || name == "NOM COMMERCIAL" || name == "SPECIALITE" ||
		strings.Contains(strings.ToUpper(fields[0]), "ASSURANCE")
}

// parseFormDosage splits a combined "FORME à DOSAGE" cell; when the
// separator is absent, the first numeric-unit token is the dosage and
// the remainder is the form.
func parseFormDosage(cell string) (forme, dosage string) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return "", ""
	}
	if parts := formDosageSeparator.Split(cell, 2); len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	if m := dosagePattern.FindString(cell); m != "" {
		forme = strings.TrimSpace(strings.Replace(cell, m, "", 1))
		return forme, strings.TrimSpace(m)
	}
	return cell, ""
}

// parsePrice reads a decimal that may use a comma separator; anything
// unparseable is treated as absent rather than failing the row.
func parsePrice(cell string) float64 {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, ",", "."))
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// normalizeBarcode reduces a barcode cell to its digits. Spreadsheet
// exports render barcodes as floats ("6118000123456.0"); an empty or
// non-numeric cell means no barcode, never an empty string.
func normalizeBarcode(cell string) *string {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimSuffix(cell, ".0")
	if cell == "" {
		return nil
	}
	for _, r := range cell {
		if r < '0' || r > '9' {
			return nil
		}
	}
	return &cell
}

// guideType maps the guide's one-letter marker to a medication type.
func guideType(cell string) string {
	if strings.Contains(strings.ToUpper(strings.TrimSpace(cell)), "P") {
		return "Princeps"
	}
	return "Générique"
}
