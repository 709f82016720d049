package taxonomy

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

type categoryRepoPG struct{ pool *pgxpool.Pool }

func NewCategoryRepoPG(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepoPG{pool: pool}
}

const categoryCols = `id, name, description, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *categoryRepoPG) Create(ctx context.Context, c *Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO custom_categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING `+categoryCols,
		c.ID, c.Name, c.Description)
	created, err := scanCategory(row)
	if err != nil {
		return errs.FromPG("insert category", err)
	}
	*c = *created
	return nil
}

func (r *categoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryCols+` FROM custom_categories WHERE id = $1`, id))
	if err != nil {
		return nil, errs.FromPG("get category", err)
	}
	return c, nil
}

func (r *categoryRepoPG) GetByName(ctx context.Context, name string) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryCols+` FROM custom_categories WHERE name = $1`, name))
	if err != nil {
		return nil, errs.FromPG("get category by name", err)
	}
	return c, nil
}

func (r *categoryRepoPG) Update(ctx context.Context, c *Category) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE custom_categories SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Description)
	if err != nil {
		return errs.FromPG("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Newf(errs.NotFound, "category %s not found", c.ID)
	}
	return nil
}

func (r *categoryRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	// Unconditional: dependent tests are orphaned, not removed.
	tag, err := r.pool.Exec(ctx, `DELETE FROM custom_categories WHERE id = $1`, id)
	if err != nil {
		return errs.FromPG("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Newf(errs.NotFound, "category %s not found", id)
	}
	return nil
}

func (r *categoryRepoPG) List(ctx context.Context) ([]*Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryCols+` FROM custom_categories ORDER BY name ASC`)
	if err != nil {
		return nil, errs.FromPG("list categories", err)
	}
	defer rows.Close()

	var items []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, errs.FromPG("scan category", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.FromPG("iterate categories", err)
	}
	return items, nil
}

type testRepoPG struct{ pool *pgxpool.Pool }

func NewTestRepoPG(pool *pgxpool.Pool) TestRepository {
	return &testRepoPG{pool: pool}
}

const testCols = `id, name, category_id, code, description, created_at, updated_at`

func scanTest(row pgx.Row) (*Test, error) {
	var t Test
	err := row.Scan(&t.ID, &t.Name, &t.CategoryID, &t.Code, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *testRepoPG) Create(ctx context.Context, t *Test) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO custom_tests (id, name, category_id, code, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+testCols,
		t.ID, t.Name, t.CategoryID, t.Code, t.Description)
	created, err := scanTest(row)
	if err != nil {
		return errs.FromPG("insert test", err)
	}
	*t = *created
	return nil
}

func (r *testRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Test, error) {
	t, err := scanTest(r.pool.QueryRow(ctx,
		`SELECT `+testCols+` FROM custom_tests WHERE id = $1`, id))
	if err != nil {
		return nil, errs.FromPG("get test", err)
	}
	return t, nil
}

func (r *testRepoPG) Update(ctx context.Context, t *Test) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE custom_tests SET name = $2, category_id = $3, code = $4, description = $5, updated_at = NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.CategoryID, t.Code, t.Description)
	if err != nil {
		return errs.FromPG("update test", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Newf(errs.NotFound, "test %s not found", t.ID)
	}
	return nil
}

func (r *testRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM custom_tests WHERE id = $1`, id)
	if err != nil {
		return errs.FromPG("delete test", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Newf(errs.NotFound, "test %s not found", id)
	}
	return nil
}

func (r *testRepoPG) List(ctx context.Context) ([]*Test, error) {
	return r.queryTests(ctx, `SELECT `+testCols+` FROM custom_tests ORDER BY name ASC`)
}

func (r *testRepoPG) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Test, error) {
	return r.queryTests(ctx,
		`SELECT `+testCols+` FROM custom_tests WHERE category_id = $1 ORDER BY name ASC`, categoryID)
}

func (r *testRepoPG) queryTests(ctx context.Context, sql string, args ...interface{}) ([]*Test, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromPG("list tests", err)
	}
	defer rows.Close()

	var items []*Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, errs.FromPG("scan test", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.FromPG("iterate tests", err)
	}
	return items, nil
}
