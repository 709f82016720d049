package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/saifulla-23/lab-test-wizard/internal/domain/taxonomy"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/events"
)

// PatientChecker verifies that a patient row exists before a save. Satisfied
// by the patient service.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service drives the ordering workflow and history operations.
type Service struct {
	repo     Repository
	taxonomy *taxonomy.Service
	patients PatientChecker
	ws       *Workspace
	bus      *events.Bus
}

func NewService(repo Repository, tax *taxonomy.Service, patients PatientChecker, bus *events.Bus) *Service {
	return &Service{
		repo:     repo,
		taxonomy: tax,
		patients: patients,
		ws:       NewWorkspace(),
		bus:      bus,
	}
}

func (s *Service) publish(id string, action string) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicSelection, Entity: "selection", ID: id, Action: action})
	}
}

// Snapshot copies a taxonomy test by value, resolving its category name. A
// deleted category renders as an empty name rather than blocking the add.
func (s *Service) Snapshot(ctx context.Context, testID uuid.UUID) (TestSnapshot, error) {
	t, err := s.taxonomy.GetTest(ctx, testID)
	if err != nil {
		return TestSnapshot{}, err
	}
	snap := TestSnapshot{ID: t.ID.String(), Name: t.Name}
	if t.Code != nil {
		snap.Code = *t.Code
	}
	if t.Description != nil {
		snap.Description = *t.Description
	}
	if cat, err := s.taxonomy.GetCategory(ctx, t.CategoryID); err == nil {
		snap.Category = cat.Name
	}
	return snap, nil
}

// AddTest puts a test into the patient's working set. Adding a test that is
// already present is a no-op, not an error.
func (s *Service) AddTest(ctx context.Context, patientID, testID uuid.UUID) ([]TestSnapshot, error) {
	snap, err := s.Snapshot(ctx, testID)
	if err != nil {
		return nil, err
	}
	set := s.ws.Get(patientID)
	set.Add(snap)
	return set.Tests(), nil
}

// RemoveTest drops a test from the patient's working set.
func (s *Service) RemoveTest(patientID uuid.UUID, testID string) []TestSnapshot {
	set := s.ws.Get(patientID)
	set.Remove(testID)
	return set.Tests()
}

// Clear empties the patient's working set.
func (s *Service) Clear(patientID uuid.UUID) {
	s.ws.Get(patientID).Clear()
}

// WorkingSet returns the current unsaved tests for a patient.
func (s *Service) WorkingSet(patientID uuid.UUID) []TestSnapshot {
	return s.ws.Get(patientID).Tests()
}

// Save persists the working set as one pending selection and clears the set.
// It fails fast when the set is empty or the patient does not exist; nothing
// is written in either case.
func (s *Service) Save(ctx context.Context, patientID uuid.UUID) (*Selection, error) {
	if patientID == uuid.Nil {
		return nil, errs.New(errs.Validation, "no patient selected")
	}
	set := s.ws.Get(patientID)
	tests := set.Tests()
	if len(tests) == 0 {
		return nil, errs.New(errs.Validation, "no tests selected")
	}
	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Newf(errs.NotFound, "patient %s not found", patientID)
	}

	sel := &Selection{
		PatientID:     patientID,
		Tests:         tests,
		SchemaVersion: SnapshotSchemaVersion,
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, sel); err != nil {
		return nil, err
	}
	set.Clear()
	s.publish(sel.ID.String(), events.ActionCreated)
	return sel, nil
}

// Export writes the working set as a self-contained JSON document in
// insertion order. Read-only: the set is untouched.
func (s *Service) Export(patientID uuid.UUID, w io.Writer) (int, error) {
	tests := s.ws.Get(patientID).Tests()
	items := make([]ExportItem, len(tests))
	for i, t := range tests {
		items[i] = ExportItem{Name: t.Name, Code: t.Code, Category: t.Category, Description: t.Description}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// ExportFilename names the download with the current date.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("lab-tests-%s.json", now.Format("2006-01-02"))
}

// ListHistory returns all selections for a patient, newest first.
func (s *Service) ListHistory(ctx context.Context, patientID uuid.UUID) ([]*Selection, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// UpdateSelection patches status and notes. The tests snapshot and created_at
// are immutable here by construction.
func (s *Service) UpdateSelection(ctx context.Context, id uuid.UUID, status string, notes *string) (*Selection, error) {
	if !ValidStatus(status) {
		return nil, errs.Newf(errs.Validation, "invalid status: %s", status)
	}
	if err := s.repo.UpdateStatusNotes(ctx, id, status, notes); err != nil {
		return nil, err
	}
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(id.String(), events.ActionUpdated)
	return updated, nil
}

// DeleteSelection is an unconditional hard delete.
func (s *Service) DeleteSelection(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(id.String(), events.ActionDeleted)
	return nil
}
