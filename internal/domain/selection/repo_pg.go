package selection

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const selectionCols = `id, patient_id, tests, schema_version, status, notes, created_at, updated_at`

func scanSelection(row pgx.Row) (*Selection, error) {
	var s Selection
	var rawTests []byte
	err := row.Scan(&s.ID, &s.PatientID, &rawTests, &s.SchemaVersion, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// Legacy rows may hold a non-array value; render those as "no tests"
	// rather than failing the whole listing.
	if err := json.Unmarshal(rawTests, &s.Tests); err != nil {
		s.Tests = []TestSnapshot{}
	}
	if s.Tests == nil {
		s.Tests = []TestSnapshot{}
	}
	return &s, nil
}

func (r *repoPG) Create(ctx context.Context, s *Selection) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SchemaVersion == 0 {
		s.SchemaVersion = SnapshotSchemaVersion
	}
	rawTests, err := json.Marshal(s.Tests)
	if err != nil {
		return errs.Wrap(errs.Persistence, "encode tests snapshot", err)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patient_test_selections (id, patient_id, tests, schema_version, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+selectionCols,
		s.ID, s.PatientID, rawTests, s.SchemaVersion, s.Status, s.Notes)
	created, err := scanSelection(row)
	if err != nil {
		return errs.FromPG("insert selection", err)
	}
	*s = *created
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Selection, error) {
	s, err := scanSelection(r.pool.QueryRow(ctx,
		`SELECT `+selectionCols+` FROM patient_test_selections WHERE id = $1`, id))
	if err != nil {
		return nil, errs.FromPG("get selection", err)
	}
	return s, nil
}

func (r *repoPG) UpdateStatusNotes(ctx context.Context, id uuid.UUID, status string, notes *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient_test_selections SET status = $2, notes = $3, updated_at = NOW()
		WHERE id = $1`,
		id, status, notes)
	if err != nil {
		return errs.FromPG("update selection", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Newf(errs.NotFound, "selection %s not found", id)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient_test_selections WHERE id = $1`, id)
	if err != nil {
		return errs.FromPG("delete selection", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Newf(errs.NotFound, "selection %s not found", id)
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Selection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectionCols+` FROM patient_test_selections
		WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, errs.FromPG("list selections", err)
	}
	defer rows.Close()

	var items []*Selection
	for rows.Next() {
		s, err := scanSelection(rows)
		if err != nil {
			return nil, errs.FromPG("scan selection", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.FromPG("iterate selections", err)
	}
	return items, nil
}
