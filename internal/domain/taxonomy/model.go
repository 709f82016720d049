// Package taxonomy manages the category/test catalog staff order from.
package taxonomy

import (
	"time"

	"github.com/google/uuid"
)

// Category maps to the custom_categories table. Names are unique.
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Test maps to the custom_tests table. A test belongs to exactly one
// category at a time; the category may have been deleted since (orphans are
// preserved).
type Test struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CategoryID  uuid.UUID `db:"category_id" json:"category_id"`
	Code        *string   `db:"code" json:"code,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
