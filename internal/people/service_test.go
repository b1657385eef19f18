package people

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hm-community/hmnet/internal/model"
)

// mockPersonRepo はrepository.PersonRepositoryのモック実装。
type mockPersonRepo struct {
	listFn     func(ctx context.Context, limit int) ([]*model.Person, error)
	findByIDFn func(ctx context.Context, id string) (*model.Person, error)
	createFn   func(ctx context.Context, p *model.Person) (*model.Person, error)
	updateFn   func(ctx context.Context, id string, p *model.Person) (*model.Person, error)
	deleteFn   func(ctx context.Context, id string) (bool, error)
	countFn    func(ctx context.Context) (int64, error)
}

func (m *mockPersonRepo) List(ctx context.Context, limit int) ([]*model.Person, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPersonRepo) FindByID(ctx context.Context, id string) (*model.Person, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPersonRepo) Create(ctx context.Context, p *model.Person) (*model.Person, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	copied := *p
	copied.ID = "node-1"
	return &copied, nil
}

func (m *mockPersonRepo) Update(ctx context.Context, id string, p *model.Person) (*model.Person, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	copied := *p
	copied.ID = id
	return &copied, nil
}

func (m *mockPersonRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockPersonRepo) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func strPtr(s string) *string { return &s }

// --- List ---

func TestList_DefaultLimit(t *testing.T) {
	repo := &mockPersonRepo{
		listFn: func(ctx context.Context, limit int) ([]*model.Person, error) {
			if limit != DefaultListLimit {
				t.Errorf("limit = %d, want %d", limit, DefaultListLimit)
			}
			return []*model.Person{{ID: "node-1", Name: "Alice"}}, nil
		},
	}
	svc := NewService(repo)

	people, err := svc.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(people) != 1 {
		t.Fatalf("len(people) = %d, want 1", len(people))
	}
}

func TestList_ExplicitLimit(t *testing.T) {
	repo := &mockPersonRepo{
		listFn: func(ctx context.Context, limit int) ([]*model.Person, error) {
			if limit != 50 {
				t.Errorf("limit = %d, want 50", limit)
			}
			return nil, nil
		},
	}
	svc := NewService(repo)

	if _, err := svc.List(context.Background(), 50); err != nil {
		t.Fatalf("List() error = %v", err)
	}
}

// --- Get ---

func TestGet_NotFound(t *testing.T) {
	svc := NewService(&mockPersonRepo{})

	_, err := svc.Get(context.Background(), "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePersonNotFound {
		t.Errorf("error = %v, want person not found", err)
	}
}

// --- Create ---

func TestCreate_SetsTimestamps(t *testing.T) {
	svc := NewService(&mockPersonRepo{})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	created, err := svc.Create(context.Background(), &model.Person{Name: "Alice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := "2026-03-01T12:00:00.000000000Z"
	if created.CreatedAt != want {
		t.Errorf("CreatedAt = %q, want %q", created.CreatedAt, want)
	}
	if created.CreatedAt != created.UpdatedAt {
		t.Error("created_at and updated_at should match on create")
	}
}

func TestCreate_MissingName(t *testing.T) {
	svc := NewService(&mockPersonRepo{})

	for _, name := range []string{"", "   "} {
		_, err := svc.Create(context.Background(), &model.Person{Name: name})

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
			t.Errorf("Create(name=%q) error = %v, want validation error", name, err)
		}
	}
}

func TestCreate_SanitizesFreeText(t *testing.T) {
	svc := NewService(&mockPersonRepo{})

	input := &model.Person{
		Name:      "Alice",
		Resources: strPtr(`funding<script>alert("x")</script>`),
		Needs:     strPtr(`<b>mentoring</b>`),
	}

	created, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if strings.Contains(*created.Resources, "<script>") {
		t.Errorf("Resources should be sanitized: %q", *created.Resources)
	}
	if !strings.Contains(*created.Resources, "funding") {
		t.Errorf("Resources should keep the text content: %q", *created.Resources)
	}
	// UGCポリシーは<b>のような整形タグを許可する
	if *created.Needs != "<b>mentoring</b>" {
		t.Errorf("Needs = %q, want formatting tags preserved", *created.Needs)
	}
}

// --- Update ---

func TestUpdate_SetsUpdatedAtOnly(t *testing.T) {
	var got *model.Person
	repo := &mockPersonRepo{
		updateFn: func(ctx context.Context, id string, p *model.Person) (*model.Person, error) {
			got = p
			copied := *p
			copied.ID = id
			return &copied, nil
		},
	}
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	_, err := svc.Update(context.Background(), "node-1", &model.Person{Name: "Alice"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.UpdatedAt != "2026-03-02T09:00:00.000000000Z" {
		t.Errorf("UpdatedAt = %q", got.UpdatedAt)
	}
	if got.CreatedAt != "" {
		t.Error("Update should not set created_at")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockPersonRepo{
		updateFn: func(ctx context.Context, id string, p *model.Person) (*model.Person, error) {
			return nil, nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), "missing", &model.Person{Name: "Alice"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePersonNotFound {
		t.Errorf("error = %v, want person not found", err)
	}
}

// --- Delete ---

func TestDelete_Success(t *testing.T) {
	repo := &mockPersonRepo{
		deleteFn: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}
	svc := NewService(repo)

	if err := svc.Delete(context.Background(), "node-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := NewService(&mockPersonRepo{})

	err := svc.Delete(context.Background(), "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePersonNotFound {
		t.Errorf("error = %v, want person not found", err)
	}
}
