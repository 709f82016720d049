package taxonomy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/cache"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/events"
)

type memCategoryRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Category
	lists int
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{items: make(map[uuid.UUID]*Category)}
}

func (r *memCategoryRepo) Create(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Name == c.Name {
			return errs.New(errs.Conflict, "category name already exists")
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "category not found")
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) GetByName(_ context.Context, name string) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errs.New(errs.NotFound, "category not found")
}

func (r *memCategoryRepo) Update(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[c.ID]
	if !ok {
		return errs.New(errs.NotFound, "category not found")
	}
	for id, existing := range r.items {
		if id != c.ID && existing.Name == c.Name {
			return errs.New(errs.Conflict, "category name already exists")
		}
	}
	stored.Name = c.Name
	stored.Description = c.Description
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return errs.New(errs.NotFound, "category not found")
	}
	delete(r.items, id)
	return nil
}

func (r *memCategoryRepo) List(_ context.Context) ([]*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	out := make([]*Category, 0, len(r.items))
	for _, c := range r.items {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type memTestRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Test
}

func newMemTestRepo() *memTestRepo {
	return &memTestRepo{items: make(map[uuid.UUID]*Test)}
}

func (r *memTestRepo) Create(_ context.Context, t *Test) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *memTestRepo) GetByID(_ context.Context, id uuid.UUID) (*Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "test not found")
	}
	cp := *t
	return &cp, nil
}

func (r *memTestRepo) Update(_ context.Context, t *Test) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[t.ID]
	if !ok {
		return errs.New(errs.NotFound, "test not found")
	}
	stored.Name = t.Name
	stored.CategoryID = t.CategoryID
	stored.Code = t.Code
	stored.Description = t.Description
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memTestRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return errs.New(errs.NotFound, "test not found")
	}
	delete(r.items, id)
	return nil
}

func (r *memTestRepo) List(_ context.Context) ([]*Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Test, 0, len(r.items))
	for _, t := range r.items {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTestRepo) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]*Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Test
	for _, t := range r.items {
		if t.CategoryID == categoryID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *memStore) Delete(_ context.Context, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
}

func newTestService() (*Service, *memCategoryRepo, *memTestRepo) {
	cats := newMemCategoryRepo()
	tests := newMemTestRepo()
	return NewService(cats, tests, nil, events.NewBus()), cats, tests
}

func TestCreateCategoryTrimsName(t *testing.T) {
	svc, _, _ := newTestService()
	desc := "  blood work  "
	c, err := svc.CreateCategory(context.Background(), "  Chemistry  ", &desc)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if c.Name != "Chemistry" {
		t.Errorf("name = %q, want trimmed", c.Name)
	}
	if c.Description == nil || *c.Description != "blood work" {
		t.Errorf("description = %v, want trimmed", c.Description)
	}
}

func TestCreateCategoryBlankName(t *testing.T) {
	svc, cats, _ := newTestService()
	_, err := svc.CreateCategory(context.Background(), "   ", nil)
	if !errs.IsValidation(err) {
		t.Fatalf("want Validation, got %v", err)
	}
	if len(cats.items) != 0 {
		t.Error("a failed validation must not write")
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.CreateCategory(ctx, "Chemistry", nil); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	_, err := svc.CreateCategory(ctx, "Chemistry", nil)
	if !errs.IsConflict(err) {
		t.Errorf("want Conflict, got %v", err)
	}
}

func TestCreateTestUnknownCategory(t *testing.T) {
	svc, _, tests := newTestService()
	_, err := svc.CreateTest(context.Background(), "Glucose", uuid.New(), nil, nil)
	if !errs.IsValidation(err) {
		t.Fatalf("want Validation for a missing category, got %v", err)
	}
	if len(tests.items) != 0 {
		t.Error("no test row should exist after a failed create")
	}
}

func TestCreateTestBlankOptionalFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	cat, err := svc.CreateCategory(ctx, "Chemistry", nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	code := "   "
	test, err := svc.CreateTest(ctx, "Glucose", cat.ID, &code, nil)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	if test.Code != nil {
		t.Errorf("blank code should be stored as nil, got %q", *test.Code)
	}
}

func TestDeleteCategoryOrphansTests(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Chemistry", nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	test, err := svc.CreateTest(ctx, "Glucose", cat.ID, nil, nil)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	if err := svc.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	// The test survives its category.
	got, err := svc.GetTest(ctx, test.ID)
	if err != nil {
		t.Fatalf("GetTest after category delete: %v", err)
	}
	if got.CategoryID != cat.ID {
		t.Errorf("orphaned test should keep its old category id")
	}
}

func TestListCategoriesReadThroughCache(t *testing.T) {
	cats := newMemCategoryRepo()
	store := newMemStore()
	svc := NewService(cats, newMemTestRepo(), store, events.NewBus())
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, "Chemistry", nil); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	if _, err := svc.ListCategories(ctx); err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if cats.lists != 1 {
		t.Fatalf("first list should hit the repository, lists = %d", cats.lists)
	}

	if _, err := svc.ListCategories(ctx); err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if cats.lists != 1 {
		t.Errorf("second list should be served from the cache, lists = %d", cats.lists)
	}
}

func TestMoveTestInvalidatesBothCategoryLists(t *testing.T) {
	store := newMemStore()
	bus := events.NewBus()
	bus.Subscribe(events.TopicTaxonomy, cache.Invalidator(store))

	svc := NewService(newMemCategoryRepo(), newMemTestRepo(), store, bus)
	ctx := context.Background()

	catA, err := svc.CreateCategory(ctx, "Chemistry", nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	catB, err := svc.CreateCategory(ctx, "Hematology", nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	test, err := svc.CreateTest(ctx, "Glucose", catA.ID, nil, nil)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	// Warm the old category's cached list.
	if items, err := svc.ListTestsByCategory(ctx, catA.ID); err != nil || len(items) != 1 {
		t.Fatalf("warm list = %v, %v", items, err)
	}

	moved := *test
	moved.CategoryID = catB.ID
	if _, err := svc.UpdateTest(ctx, &moved); err != nil {
		t.Fatalf("UpdateTest: %v", err)
	}

	itemsA, err := svc.ListTestsByCategory(ctx, catA.ID)
	if err != nil {
		t.Fatalf("ListTestsByCategory(A): %v", err)
	}
	if len(itemsA) != 0 {
		t.Errorf("old category still lists %d test(s) after the move", len(itemsA))
	}
	itemsB, err := svc.ListTestsByCategory(ctx, catB.ID)
	if err != nil {
		t.Fatalf("ListTestsByCategory(B): %v", err)
	}
	if len(itemsB) != 1 {
		t.Errorf("new category lists %d test(s), want 1", len(itemsB))
	}
}

func TestWritesPublishTaxonomyEvents(t *testing.T) {
	bus := events.NewBus()
	var got []events.Event
	bus.Subscribe(events.TopicTaxonomy, func(e events.Event) { got = append(got, e) })

	svc := NewService(newMemCategoryRepo(), newMemTestRepo(), nil, bus)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Chemistry", nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.CreateTest(ctx, "Glucose", cat.ID, nil, nil); err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Entity != "category" || got[0].Action != events.ActionCreated {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].Entity != "test" || got[1].ID != cat.ID.String() {
		t.Errorf("test events should carry the category id, got %+v", got[1])
	}
}

func TestUpdateCategoryBlankName(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	cat, err := svc.CreateCategory(ctx, "Chemistry", nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.UpdateCategory(ctx, cat.ID, "", nil); !errs.IsValidation(err) {
		t.Errorf("want Validation, got %v", err)
	}
}
