package selection

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Selection) error
	GetByID(ctx context.Context, id uuid.UUID) (*Selection, error)
	// UpdateStatusNotes patches only status and notes; the tests snapshot and
	// created_at are never touched after creation.
	UpdateStatusNotes(ctx context.Context, id uuid.UUID, status string, notes *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Selection, error)
}
