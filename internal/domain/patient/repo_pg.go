package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, patient_id, name, date_of_birth, gender, phone, address, assandha_data, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PatientID, &p.Name, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Address, &p.AssandhaData, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, patient_id, name, date_of_birth, gender, phone, address, assandha_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+patientCols,
		p.ID, p.PatientID, p.Name, p.DateOfBirth, p.Gender, p.Phone, p.Address, p.AssandhaData)
	created, err := scanPatient(row)
	if err != nil {
		return errs.FromPG("insert patient", err)
	}
	*p = *created
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, errs.FromPG("get patient", err)
	}
	return p, nil
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE patient_id = $1`, patientID))
	if err != nil {
		return nil, errs.FromPG("get patient by business key", err)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET patient_id = $2, name = $3, date_of_birth = $4, gender = $5,
			phone = $6, address = $7, assandha_data = $8, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.PatientID, p.Name, p.DateOfBirth, p.Gender, p.Phone, p.Address, p.AssandhaData)
	if err != nil {
		return errs.FromPG("update patient", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Newf(errs.NotFound, "patient %s not found", p.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	// No cascade: selections referencing this patient stay as orphaned history.
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return errs.FromPG("delete patient", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Newf(errs.NotFound, "patient %s not found", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	where := ``
	args := []interface{}{}
	if query != "" {
		where = ` WHERE name ILIKE $1 OR patient_id ILIKE $1`
		args = append(args, "%"+query+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, errs.FromPG("count patients", err)
	}

	sql := fmt.Sprintf(`SELECT `+patientCols+` FROM patients`+where+
		` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	items, err := r.queryPatients(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListRecent(ctx context.Context, limit int) ([]*Patient, error) {
	return r.queryPatients(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY updated_at DESC LIMIT $1`, limit)
}

func (r *repoPG) queryPatients(ctx context.Context, sql string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromPG("list patients", err)
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, errs.FromPG("scan patient", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.FromPG("iterate patients", err)
	}
	return items, nil
}
