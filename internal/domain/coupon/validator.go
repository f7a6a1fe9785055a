package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Validator checks that a coupon code can be applied right now.
type Validator interface {
	Validate(ctx context.Context, code string) (*Coupon, error)
}

// RepoValidator implements Validator on top of a Repository.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate normalizes the code, looks it up and checks its derived status.
// It returns ErrNotFound for unknown codes and a *StatusError for coupons
// that are inactive, scheduled or expired.
func (v *RepoValidator) Validate(ctx context.Context, code string) (*Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}

	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if status := c.StatusAt(v.now()); status != StatusActive {
		return nil, &StatusError{Code: c.Code, Status: status}
	}
	return c, nil
}
