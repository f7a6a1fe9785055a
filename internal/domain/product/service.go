package product

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultCategory = "outro"
	defaultImage    = "images/painelgaak.png"
)

// ErrInvalidProduct is returned when a product payload misses its name or price.
var ErrInvalidProduct = errors.New("name and price are required")

// Service implements catalog management on top of a Repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a catalog Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the active catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Get resolves a storefront reference (id or slug) to an active product.
func (s *Service) Get(ctx context.Context, ref string) (*Product, error) {
	return Resolve(ctx, s.repo, Ref{ID: ref})
}

// Create normalizes and stores a new product.
func (s *Service) Create(ctx context.Context, p Product) (*Product, error) {
	if err := normalize(&p); err != nil {
		return nil, err
	}
	now := s.now()
	p.ID = uuid.New().String()
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return &p, nil
}

// Update replaces the editable fields of an existing product. Stock and the
// in-stock flag are kept consistent.
func (s *Service) Update(ctx context.Context, id string, p Product) (*Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := normalize(&p); err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.Active = existing.Active
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, &p); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return &p, nil
}

// Delete soft-deletes a product. Historical sales keep their snapshots.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}

// SeedIfEmpty inserts the default catalog when no products exist yet.
func (s *Service) SeedIfEmpty(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count products")
	}
	if n > 0 {
		return 0, nil
	}
	lg := zctx.From(ctx)
	for _, p := range SeedCatalog() {
		if _, err := s.Create(ctx, p); err != nil {
			return 0, errors.Wrapf(err, "seed %s", p.Slug)
		}
		lg.Debug("Seeded product", zap.String("slug", p.Slug))
	}
	return len(SeedCatalog()), nil
}

func normalize(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || !p.Price.IsPositive() {
		return ErrInvalidProduct
	}
	p.Price = p.Price.Round(2)
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.InStock = p.Stock > 0
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = defaultCategory
	}
	images := p.Images[:0:0]
	for _, img := range p.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		images = []string{defaultImage}
	}
	p.Images = images
	if p.Benefits == nil {
		p.Benefits = []string{}
	}
	return nil
}

// Slugify lowercases name and replaces every run of non-alphanumeric
// characters with a single dash.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SeedCatalog returns the default supplements catalog.
func SeedCatalog() []Product {
	seed := func(name, desc, slug, weight, price string, stock int, category string, benefits ...string) Product {
		return Product{
			Name:        name,
			Description: desc,
			Slug:        slug,
			Weight:      weight,
			Price:       decimal.RequireFromString(price),
			Stock:       stock,
			Category:    category,
			Images:      []string{defaultImage},
			Benefits:    benefits,
		}
	}
	return []Product{
		seed("Creatina Max Titanium 300g",
			"Creatina monohidratada de alta qualidade. Aumenta forca, melhora desempenho e acelera recuperacao.",
			"creatina-max-titanium-300g", "300g", "59.99", 100, "creatina",
			"Forca e desempenho", "Mais energia no treino", "Recuperacao muscular"),
		seed("Whey Protein Max Titanium 900g",
			"Whey concentrado com rapida absorcao e aminoacidos essenciais para ganho de massa e recuperacao.",
			"whey-protein-max-titanium-900g", "900g", "49.99", 100, "proteina",
			"Alta concentracao de proteina", "Recuperacao e crescimento", "Facil digestao"),
		seed("Pre-Workout Max Titanium 300g",
			"Pre-treino com foco e energia para treinos intensos.",
			"pre-workout-max-titanium-300g", "300g", "139.90", 80, "pre-treino",
			"Foco e energia imediata", "Mais resistencia", "Performance elevada"),
		seed("BCAA 2:1:1 200g",
			"Aminoacidos para recuperacao muscular e protecao da massa magra.",
			"bcaa-211-200g", "200g", "76.90", 60, "aminoacidos",
			"Menos fadiga muscular", "Recuperacao acelerada", "Protecao da massa magra"),
		seed("Glutamina 300g",
			"L-Glutamina para suporte imunologico e recuperacao muscular.",
			"glutamina-300g", "300g", "79.90", 60, "aminoacidos",
			"Suporte imunologico", "Recuperacao muscular", "Menos catabolismo"),
		seed("Hipercalorico 3kg",
			"Hipercalorico para ganho de massa com alta densidade calorica.",
			"hipercalorico-3kg", "3kg", "109.90", 50, "hipercalorico",
			"Ganho de massa rapido", "Alta densidade calorica", "Mais energia no dia a dia"),
	}
}
