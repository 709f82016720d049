// Package importer loads categories and tests from a five-column CSV file.
// Each committed row stays committed: there is no wrapping transaction, and
// the report tells staff exactly which rows made it in.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saifulla-23/lab-test-wizard/internal/domain/taxonomy"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

// Column order of the import document.
const (
	colCategoryName = 0
	colCategoryDesc = 1
	colTestName     = 2
	colTestCode     = 3
	colTestDesc     = 4
)

var header = []string{"Category Name", "Category Description", "Test Name", "Test Code", "Test Description"}

// RowError records one failed row with its 1-based line number.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report summarises an import run. Rows are independent commits: failures and
// skips never roll back earlier rows.
type Report struct {
	TestsCreated      int        `json:"tests_created"`
	CategoriesCreated int        `json:"categories_created"`
	Skipped           int        `json:"skipped"`
	Failed            []RowError `json:"failed,omitempty"`
}

// Importer feeds CSV rows into the taxonomy service.
type Importer struct {
	taxonomy *taxonomy.Service
	log      zerolog.Logger
}

func New(tax *taxonomy.Service, log zerolog.Logger) *Importer {
	return &Importer{taxonomy: tax, log: log}
}

// Import reads rows in document order. Fields are trimmed; rows missing the
// category or test name are skipped without error. Categories are resolved
// through a within-run name cache, falling back to a lookup-by-name when the
// store reports a name conflict. Tests are created unconditionally, so
// re-importing the same file duplicates tests (but not categories).
func (imp *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errs.Wrap(errs.Validation, "parse csv", err)
	}
	if len(rows) == 0 {
		return nil, errs.New(errs.Validation, "file is empty")
	}

	// Drop the header row when present. Reported line numbers stay 1-based
	// relative to the document, so they shift by one when a header exists.
	firstLine := 1
	if isHeader(rows[0]) {
		rows = rows[1:]
		firstLine = 2
	}

	report := &Report{}
	categoryIDs := make(map[string]uuid.UUID)

	for i, row := range rows {
		line := i + firstLine

		catName := field(row, colCategoryName)
		testName := field(row, colTestName)
		if catName == "" || testName == "" {
			report.Skipped++
			continue
		}

		catID, ok := categoryIDs[catName]
		if !ok {
			var created bool
			catID, created, err = imp.resolveCategory(ctx, catName, field(row, colCategoryDesc))
			if err != nil {
				report.Failed = append(report.Failed, RowError{Line: line, Message: err.Error()})
				continue
			}
			if created {
				report.CategoriesCreated++
			}
			categoryIDs[catName] = catID
		}

		code := optional(field(row, colTestCode))
		desc := optional(field(row, colTestDesc))
		if _, err := imp.taxonomy.CreateTest(ctx, testName, catID, code, desc); err != nil {
			report.Failed = append(report.Failed, RowError{Line: line, Message: err.Error()})
			continue
		}
		report.TestsCreated++
	}

	imp.log.Info().
		Int("tests_created", report.TestsCreated).
		Int("categories_created", report.CategoriesCreated).
		Int("skipped", report.Skipped).
		Int("failed", len(report.Failed)).
		Msg("import finished")

	return report, nil
}

// resolveCategory creates the category, recovering its id by name lookup when
// the store reports the name already taken.
func (imp *Importer) resolveCategory(ctx context.Context, name, description string) (uuid.UUID, bool, error) {
	cat, err := imp.taxonomy.CreateCategory(ctx, name, optional(description))
	if err == nil {
		return cat.ID, true, nil
	}
	if errs.IsConflict(err) {
		existing, lookupErr := imp.taxonomy.GetCategoryByName(ctx, name)
		if lookupErr != nil {
			return uuid.Nil, false, fmt.Errorf("category %q conflicts but lookup failed: %w", name, lookupErr)
		}
		return existing.ID, false, nil
	}
	return uuid.Nil, false, err
}

// Template writes the expected five-column document with example rows.
func Template(w io.Writer) error {
	writer := csv.NewWriter(w)
	records := [][]string{
		header,
		{"Chemistry", "Blood chemistry panel", "Glucose", "GLU", "Fasting blood glucose"},
		{"Chemistry", "Blood chemistry panel", "Creatinine", "CREA", "Kidney function"},
		{"Hematology", "Blood cell counts", "Complete Blood Count", "CBC", "Full blood count with differential"},
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), header[0])
}
