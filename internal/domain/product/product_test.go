package product

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	products []*Product
	err      error
	calls    []string
}

func (m *mockRepo) find(match func(*Product) bool) (*Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Product, error) {
	m.calls = append(m.calls, "id:"+id)
	return m.find(func(p *Product) bool { return p.ID == id })
}

func (m *mockRepo) GetBySlug(_ context.Context, slug string) (*Product, error) {
	m.calls = append(m.calls, "slug:"+slug)
	return m.find(func(p *Product) bool { return p.Slug == slug })
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*Product, error) {
	m.calls = append(m.calls, "name:"+name)
	return m.find(func(p *Product) bool { return p.Name == name })
}

func (m *mockRepo) Create(_ context.Context, p *Product) error {
	cp := *p
	m.products = append(m.products, &cp)
	return nil
}

func (m *mockRepo) Update(_ context.Context, p *Product) error {
	for i, existing := range m.products {
		if existing.ID == p.ID {
			cp := *p
			m.products[i] = &cp
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) Deactivate(_ context.Context, id string) error {
	for _, p := range m.products {
		if p.ID == id {
			p.Active = false
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) DecrementStock(_ context.Context, _ string, _ int) (int, bool, error) {
	return 0, false, nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	return len(m.products), m.err
}

// --- Tests ---

func TestResolve(t *testing.T) {
	const whey = "0b8f1c7e-3a52-4d5e-9a57-2f1f0f9d6a11"
	repo := &mockRepo{products: []*Product{
		{ID: whey, Name: "Whey", Slug: "whey-900g", Active: true},
		{ID: "8c0e6c1d-1111-4b7a-8f3e-000000000002", Name: "Creatina", Slug: "creatina", Active: true},
		{ID: "8c0e6c1d-1111-4b7a-8f3e-000000000003", Name: "Old BCAA", Slug: "old-bcaa", Active: false},
	}}

	tests := []struct {
		name    string
		ref     Ref
		wantID  string
		wantErr error
	}{
		{name: "by uuid", ref: Ref{ID: whey}, wantID: whey},
		{name: "by slug", ref: Ref{ID: "creatina"}, wantID: "8c0e6c1d-1111-4b7a-8f3e-000000000002"},
		{name: "by name when id unknown", ref: Ref{ID: "missing", Name: "Whey"}, wantID: whey},
		{name: "by name only", ref: Ref{Name: " Creatina "}, wantID: "8c0e6c1d-1111-4b7a-8f3e-000000000002"},
		{name: "inactive is not found", ref: Ref{ID: "old-bcaa"}, wantErr: ErrNotFound},
		{name: "nothing matches", ref: Ref{ID: "nope", Name: "Nope"}, wantErr: ErrNotFound},
		{name: "empty ref", ref: Ref{}, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(context.Background(), repo, tt.ref)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestResolve_SkipsIDLookupForNonUUID(t *testing.T) {
	repo := &mockRepo{products: []*Product{{ID: "x", Slug: "creatina", Active: true}}}

	_, err := Resolve(context.Background(), repo, Ref{ID: "creatina"})
	require.NoError(t, err)
	assert.Equal(t, []string{"slug:creatina"}, repo.calls)
}

func TestResolve_RepositoryError(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection reset")}

	_, err := Resolve(context.Background(), repo, Ref{ID: "creatina"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "lookup product")
}

func TestRef_String(t *testing.T) {
	assert.Equal(t, "Whey", Ref{ID: "p1", Name: "Whey"}.String())
	assert.Equal(t, "p1", Ref{ID: "p1"}.String())
	assert.Equal(t, "unknown", Ref{}.String())
}

func TestService_Create(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	p, err := svc.Create(context.Background(), Product{
		Name:  "  Omega 3 Ultra  ",
		Price: decimal.RequireFromString("39.999"),
		Stock: 0,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Omega 3 Ultra", p.Name)
	assert.Equal(t, "omega-3-ultra", p.Slug)
	assert.Equal(t, "outro", p.Category)
	assert.Equal(t, []string{"images/painelgaak.png"}, p.Images)
	assert.True(t, decimal.RequireFromString("40.00").Equal(p.Price))
	assert.False(t, p.InStock)
	assert.True(t, p.Active)
	assert.Equal(t, fixed, p.CreatedAt)
	require.Len(t, repo.products, 1)
}

func TestService_CreateInvalid(t *testing.T) {
	svc := NewService(&mockRepo{})

	_, err := svc.Create(context.Background(), Product{Name: "", Price: decimal.NewFromInt(10)})
	require.ErrorIs(t, err, ErrInvalidProduct)

	_, err = svc.Create(context.Background(), Product{Name: "Whey", Price: decimal.Zero})
	require.ErrorIs(t, err, ErrInvalidProduct)
}

func TestService_UpdateKeepsIdentity(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockRepo{products: []*Product{{
		ID: "p1", Name: "Whey", Slug: "whey", Price: decimal.NewFromInt(50),
		Stock: 3, InStock: true, Active: true, CreatedAt: created,
	}}}
	svc := NewService(repo)

	p, err := svc.Update(context.Background(), "p1", Product{
		Name: "Whey Isolado", Slug: "whey", Price: decimal.NewFromInt(80), Stock: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, created, p.CreatedAt)
	assert.False(t, p.InStock)
	assert.True(t, p.Active)
	assert.Equal(t, "Whey Isolado", repo.products[0].Name)
}

func TestService_UpdateMissing(t *testing.T) {
	svc := NewService(&mockRepo{})

	_, err := svc.Update(context.Background(), "nope", Product{Name: "X", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_DeleteIsSoft(t *testing.T) {
	repo := &mockRepo{products: []*Product{{ID: "p1", Name: "Whey", Active: true}}}
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	require.Len(t, repo.products, 1)
	assert.False(t, repo.products[0].Active)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_SeedIfEmpty(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	n, err := svc.SeedIfEmpty(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Len(t, repo.products, 6)

	n, err = svc.SeedIfEmpty(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, repo.products, 6)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Creatina Max Titanium 300g": "creatina-max-titanium-300g",
		"BCAA 2:1:1 200g":            "bcaa-2-1-1-200g",
		"  Pre--Workout!! ":          "pre-workout",
		"":                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
