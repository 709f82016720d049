package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/assandha"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/events"
)

// Service implements the patient directory operations.
type Service struct {
	repo     Repository
	identity assandha.Client
	bus      *events.Bus
}

func NewService(repo Repository, identity assandha.Client, bus *events.Bus) *Service {
	return &Service{repo: repo, identity: identity, bus: bus}
}

func (s *Service) publish(id string, action string) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicPatient, Entity: "patient", ID: id, Action: action})
	}
}

func (s *Service) validate(p *Patient) error {
	p.PatientID = strings.TrimSpace(p.PatientID)
	p.Name = strings.TrimSpace(p.Name)
	if p.PatientID == "" {
		return errs.New(errs.Validation, "patient_id is required")
	}
	if p.Name == "" {
		return errs.New(errs.Validation, "name is required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.publish(p.ID.String(), events.ActionCreated)
	return nil
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.publish(p.ID.String(), events.ActionUpdated)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(id.String(), events.ActionDeleted)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists reports whether a patient row exists, distinguishing absence from
// storage faults.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errs.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// FindByBusinessKey is the exact-match lookup staff use before ordering.
func (s *Service) FindByBusinessKey(ctx context.Context, patientID string) (*Patient, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, errs.New(errs.Validation, "patient_id is required")
	}
	return s.repo.GetByPatientID(ctx, patientID)
}

// LookupOrCreate returns the stored patient for the business key, or resolves
// it against the Assandha portal and persists the result. A portal miss is a
// NotFound. A concurrent insert racing us on the unique patient_id index is
// resolved by re-reading the winner's row.
func (s *Service) LookupOrCreate(ctx context.Context, patientID string) (*Patient, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, errs.New(errs.Validation, "patient_id is required")
	}

	existing, err := s.repo.GetByPatientID(ctx, patientID)
	if err == nil {
		return existing, nil
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	rec, err := s.identity.Lookup(ctx, patientID)
	if err != nil {
		return nil, err
	}

	p := &Patient{
		PatientID:    rec.PatientID,
		Name:         rec.Name,
		DateOfBirth:  rec.DateOfBirth,
		Gender:       rec.Gender,
		Phone:        rec.Phone,
		Address:      rec.Address,
		AssandhaData: rec.AssandhaData,
	}
	if err := s.Create(ctx, p); err != nil {
		if errs.IsConflict(err) {
			return s.repo.GetByPatientID(ctx, patientID)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, query, limit, offset)
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Patient, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}
