package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Ref identifies a product the way a cart line does: an opaque identifier
// (id or slug) and an optional display name.
type Ref struct {
	ID   string
	Name string
}

// String returns the most human-friendly label of the reference.
func (r Ref) String() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return "unknown"
}

type lookupStep struct {
	find func(context.Context, string) (*Product, error)
	key  string
}

// Resolve finds the authoritative product for ref. Lookups are tried in order:
// by id when the identifier is a UUID, by slug, then by exact name. Inactive
// products are reported as ErrNotFound.
func Resolve(ctx context.Context, repo Repository, ref Ref) (*Product, error) {
	id := strings.TrimSpace(ref.ID)
	name := strings.TrimSpace(ref.Name)

	var steps []lookupStep
	if id != "" {
		if _, err := uuid.Parse(id); err == nil {
			steps = append(steps, lookupStep{find: repo.GetByID, key: id})
		}
		steps = append(steps, lookupStep{find: repo.GetBySlug, key: id})
	}
	if name != "" {
		steps = append(steps, lookupStep{find: repo.GetByName, key: name})
	}

	for _, s := range steps {
		p, err := s.find(ctx, s.key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "lookup product")
		}
		if !p.Active {
			return nil, ErrNotFound
		}
		return p, nil
	}
	return nil, ErrNotFound
}
