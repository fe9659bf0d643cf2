// Package validation provides data validation functionality for the catalogue API.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bentalba/taawidaty/interfaces"
	"github.com/bentalba/taawidaty/reconciler"
	"github.com/bentalba/taawidaty/reconciler/entities"
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Input validation: alphanumeric + French accents + safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'%àâäéèêëïîôöùûüÿç]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// LDAP injection patterns
		"*)(", "*|(", "*)%",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

// financialEpsilon absorbs float drift when comparing recomputed
// reimbursement amounts against stored values.
const financialEpsilon = 0.011

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// Compile-time check that DataValidatorImpl implements interfaces.DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateMedication checks if a catalogue record is valid
func (v *DataValidatorImpl) ValidateMedication(m *entities.Medication) error {
	if m == nil {
		return fmt.Errorf("medication is nil")
	}

	if m.Id <= 0 {
		return fmt.Errorf("invalid id: %d", m.Id)
	}

	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("empty name for id %d", m.Id)
	}

	if len(m.Name) > 200 {
		return fmt.Errorf("name too long for id %d: %d characters", m.Id, len(m.Name))
	}

	if len(m.Forme) > 100 {
		return fmt.Errorf("forme too long for id %d: %d characters", m.Id, len(m.Forme))
	}

	if len(m.Dosage) > 100 {
		return fmt.Errorf("dosage too long for id %d: %d characters", m.Id, len(m.Dosage))
	}

	if m.Ppv < 0 {
		return fmt.Errorf("negative ppv for id %d: %v", m.Id, m.Ppv)
	}

	if m.PrixBr < 0 {
		return fmt.Errorf("negative prix_br for id %d: %v", m.Id, m.PrixBr)
	}

	if m.TauxRemb < 0 || m.TauxRemb > 100 {
		return fmt.Errorf("taux_remboursement out of range for id %d: %d", m.Id, m.TauxRemb)
	}

	if m.Barcode != nil {
		if _, err := v.ValidateBarcode(*m.Barcode); err != nil {
			return fmt.Errorf("invalid barcode for id %d: %w", m.Id, err)
		}
	}

	return nil
}

// CheckFinancials verifies that the stored reimbursement amount and
// patient share agree with what the rate formula would produce.
func (v *DataValidatorImpl) CheckFinancials(m *entities.Medication) error {
	if m == nil {
		return fmt.Errorf("medication is nil")
	}

	expected := *m
	reconciler.Recalculate(&expected)

	if math.Abs(expected.ReimbursementAmount-m.ReimbursementAmount) > financialEpsilon {
		return fmt.Errorf("reimbursement amount mismatch for id %d: stored %.2f, expected %.2f",
			m.Id, m.ReimbursementAmount, expected.ReimbursementAmount)
	}

	if math.Abs(expected.PatientPays-m.PatientPays) > financialEpsilon {
		return fmt.Errorf("patient share mismatch for id %d: stored %.2f, expected %.2f",
			m.Id, m.PatientPays, expected.PatientPays)
	}

	if m.PatientPays < 0 {
		return fmt.Errorf("negative patient share for id %d: %.2f", m.Id, m.PatientPays)
	}

	return nil
}

// ReportDataQuality scans a collection for integrity issues without
// failing the load. Callers decide what to do with the findings.
func (v *DataValidatorImpl) ReportDataQuality(medications []entities.Medication) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateIDs:        []string{},
		InvariantViolations: []string{},
	}

	// Check 1: Find duplicate (insurance, id) keys
	seen := make(map[string]bool)
	for _, med := range medications {
		key := fmt.Sprintf("%s:%d", med.Insurance, med.Id)
		if seen[key] {
			report.DuplicateIDs = append(report.DuplicateIDs, key)
		}
		seen[key] = true
	}

	// Check 2: Count nameless and price-less records
	for _, med := range medications {
		if strings.TrimSpace(med.Name) == "" {
			report.RecordsWithoutName++
		}
		if med.Ppv == 0 {
			report.RecordsWithoutPrice++
		}
	}

	// Check 3: Barcode coverage
	for _, med := range medications {
		if med.Barcode != nil && *med.Barcode != "" {
			report.BarcodeCoverage++
		}
	}

	// Check 4: Financial invariant violations (store first 10 names)
	for i := range medications {
		if err := v.CheckFinancials(&medications[i]); err != nil {
			if len(report.InvariantViolations) < 10 {
				report.InvariantViolations = append(report.InvariantViolations, medications[i].Name)
			}
		}
	}

	return report
}

// ValidateInput validates user input strings with enhanced security
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	// Check for potentially dangerous patterns using string matching (5-10x faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	// Allow only alphanumeric characters, spaces, and safe punctuation
	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, plus sign, and common French accented characters are allowed")
	}

	// Additional checks for repeated characters (potential DoS)
	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateID validates record identifiers
// No regex used - strconv.Atoi() validates numeric format for free
func (v *DataValidatorImpl) ValidateID(input string) (int, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return -1, fmt.Errorf("input cannot be empty")
	}

	// Reject if original input contained whitespace (spaces, tabs, etc.)
	if len(input) != len(trimmedInput) {
		return -1, fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if len(trimmedInput) > 7 {
		return -1, fmt.Errorf("id should have at most 7 digits")
	}

	// strconv.Atoi() validates that input contains only digits
	id, err := strconv.Atoi(trimmedInput)
	if err != nil {
		return -1, fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if id <= 0 {
		return -1, fmt.Errorf("id must be positive")
	}

	return id, nil
}

// ValidateBarcode validates barcode lookup values
// Barcodes are numeric identifiers 8 to 14 digits long (EAN-8 up to GTIN-14)
func (v *DataValidatorImpl) ValidateBarcode(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	// Reject if original input contained whitespace (spaces, tabs, etc.)
	if len(input) != len(trimmedInput) {
		return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if len(trimmedInput) < 8 || len(trimmedInput) > 14 {
		return "", fmt.Errorf("barcode should have 8 to 14 digits")
	}

	for _, r := range trimmedInput {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
		}
	}

	return trimmedInput, nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
