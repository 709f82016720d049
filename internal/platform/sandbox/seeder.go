// Package sandbox seeds demo taxonomy and patient data for developer
// on-boarding and UI demos.
package sandbox

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/saifulla-23/lab-test-wizard/internal/domain/patient"
	"github.com/saifulla-23/lab-test-wizard/internal/domain/taxonomy"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

// Seeder creates a small, recognisable dataset through the regular services
// so the same validation and notifications apply as in production use.
type Seeder struct {
	taxonomy *taxonomy.Service
	patients *patient.Service
	log      zerolog.Logger
}

func NewSeeder(tax *taxonomy.Service, patients *patient.Service, log zerolog.Logger) *Seeder {
	return &Seeder{taxonomy: tax, patients: patients, log: log}
}

type seedTest struct {
	name, code, description string
}

var seedData = []struct {
	category    string
	description string
	tests       []seedTest
}{
	{
		category:    "Chemistry",
		description: "Blood chemistry panel",
		tests: []seedTest{
			{"Glucose", "GLU", "Fasting blood glucose"},
			{"Creatinine", "CREA", "Kidney function"},
			{"ALT", "ALT", "Liver enzyme"},
		},
	},
	{
		category:    "Hematology",
		description: "Blood cell counts",
		tests: []seedTest{
			{"Complete Blood Count", "CBC", "Full blood count with differential"},
			{"ESR", "ESR", "Erythrocyte sedimentation rate"},
		},
	},
	{
		category:    "Microbiology",
		description: "Cultures and sensitivities",
		tests: []seedTest{
			{"Urine Culture", "UCX", "Midstream urine culture"},
		},
	},
}

// Seed inserts the demo dataset. Existing category names are reused, so
// running seed twice does not duplicate categories.
func (s *Seeder) Seed(ctx context.Context) error {
	for _, entry := range seedData {
		desc := entry.description
		cat, err := s.taxonomy.CreateCategory(ctx, entry.category, &desc)
		if err != nil {
			if !errs.IsConflict(err) {
				return fmt.Errorf("seed category %q: %w", entry.category, err)
			}
			cat, err = s.taxonomy.GetCategoryByName(ctx, entry.category)
			if err != nil {
				return fmt.Errorf("look up seeded category %q: %w", entry.category, err)
			}
		}
		for _, t := range entry.tests {
			code, d := t.code, t.description
			if _, err := s.taxonomy.CreateTest(ctx, t.name, cat.ID, &code, &d); err != nil {
				return fmt.Errorf("seed test %q: %w", t.name, err)
			}
		}
	}

	demo := &patient.Patient{PatientID: "A123456", Name: "Demo Patient"}
	if err := s.patients.Create(ctx, demo); err != nil && !errs.IsConflict(err) {
		return fmt.Errorf("seed patient: %w", err)
	}

	s.log.Info().Msg("sandbox data seeded")
	return nil
}
