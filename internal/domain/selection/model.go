// Package selection implements the ordering workflow: staff assemble a
// working set of tests for one patient, then persist it as an immutable
// point-in-time selection whose status and notes remain editable.
package selection

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotSchemaVersion identifies the shape of the tests column. Bump when
// TestSnapshot changes.
const SnapshotSchemaVersion = 1

// Selection statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is one of the known selection statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TestSnapshot is a test copied by value at save time. Category carries the
// category name, not its id: the snapshot must stay meaningful even after the
// taxonomy row is edited or deleted.
type TestSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// Selection maps to the patient_test_selections table. Tests never change
// after creation; only Status and Notes are mutable.
type Selection struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	PatientID     uuid.UUID      `db:"patient_id" json:"patient_id"`
	Tests         []TestSnapshot `db:"tests" json:"tests"`
	SchemaVersion int            `db:"schema_version" json:"schema_version"`
	Status        string         `db:"status" json:"status"`
	Notes         *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// ExportItem is one row of the working-set export document.
type ExportItem struct {
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}
