package taxonomy

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/cache"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/events"
)

const listCacheTTL = 5 * time.Minute

// Service implements the taxonomy operations: category and test CRUD with
// name validation, list caching and change notifications.
type Service struct {
	categories CategoryRepository
	tests      TestRepository
	store      cache.Store
	bus        *events.Bus
}

func NewService(categories CategoryRepository, tests TestRepository, store cache.Store, bus *events.Bus) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{categories: categories, tests: tests, store: store, bus: bus}
}

func (s *Service) publish(entity, id, action string) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicTaxonomy, Entity: entity, ID: id, Action: action})
	}
}

// CreateCategory validates and persists a new category. The name is trimmed;
// an empty result fails before any write. Duplicate names surface as Conflict.
func (s *Service) CreateCategory(ctx context.Context, name string, description *string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.New(errs.Validation, "category name is required")
	}
	c := &Category{Name: name, Description: trimOptional(description)}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.publish("category", c.ID.String(), events.ActionCreated)
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, name string, description *string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.New(errs.Validation, "category name is required")
	}
	c := &Category{ID: id, Name: name, Description: trimOptional(description)}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	updated, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("category", id.String(), events.ActionUpdated)
	return updated, nil
}

// DeleteCategory removes the category unconditionally. Tests referencing it
// are left in place (orphaned), matching the workflow staff rely on.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("category", id.String(), events.ActionDeleted)
	return nil
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	return s.categories.GetByName(ctx, strings.TrimSpace(name))
}

// ListCategories returns all categories ordered by name, served from the
// cache when warm.
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	if raw, ok := s.store.Get(ctx, cache.KeyCategories); ok {
		var cached []*Category
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		s.store.Set(ctx, cache.KeyCategories, raw, listCacheTTL)
	}
	return items, nil
}

// CreateTest validates and persists a new test. The referenced category must
// exist at creation time.
func (s *Service) CreateTest(ctx context.Context, name string, categoryID uuid.UUID, code, description *string) (*Test, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.New(errs.Validation, "test name is required")
	}
	if categoryID == uuid.Nil {
		return nil, errs.New(errs.Validation, "category is required")
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.Newf(errs.Validation, "category %s does not exist", categoryID)
		}
		return nil, err
	}
	t := &Test{Name: name, CategoryID: categoryID, Code: trimOptional(code), Description: trimOptional(description)}
	if err := s.tests.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish("test", t.CategoryID.String(), events.ActionCreated)
	return t, nil
}

func (s *Service) UpdateTest(ctx context.Context, t *Test) (*Test, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return nil, errs.New(errs.Validation, "test name is required")
	}
	if t.CategoryID == uuid.Nil {
		return nil, errs.New(errs.Validation, "category is required")
	}
	t.Code = trimOptional(t.Code)
	t.Description = trimOptional(t.Description)
	prev, err := s.tests.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tests.Update(ctx, t); err != nil {
		return nil, err
	}
	updated, err := s.tests.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	// A move must invalidate the old category's cached list too.
	if prev.CategoryID != updated.CategoryID {
		s.publish("test", prev.CategoryID.String(), events.ActionUpdated)
	}
	s.publish("test", updated.CategoryID.String(), events.ActionUpdated)
	return updated, nil
}

func (s *Service) DeleteTest(ctx context.Context, id uuid.UUID) error {
	t, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tests.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("test", t.CategoryID.String(), events.ActionDeleted)
	return nil
}

func (s *Service) GetTest(ctx context.Context, id uuid.UUID) (*Test, error) {
	return s.tests.GetByID(ctx, id)
}

func (s *Service) ListTests(ctx context.Context) ([]*Test, error) {
	if raw, ok := s.store.Get(ctx, cache.KeyAllTests); ok {
		var cached []*Test
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}
	items, err := s.tests.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		s.store.Set(ctx, cache.KeyAllTests, raw, listCacheTTL)
	}
	return items, nil
}

func (s *Service) ListTestsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Test, error) {
	key := cache.TestsKey(categoryID.String())
	if raw, ok := s.store.Get(ctx, key); ok {
		var cached []*Test
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}
	items, err := s.tests.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		s.store.Set(ctx, key, raw, listCacheTTL)
	}
	return items, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
