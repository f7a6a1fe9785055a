package client

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Submission is the customer data attached to an order.
type Submission struct {
	Name    string
	Phone   string
	Email   string
	Address Address
}

// Directory resolves checkout submissions to client records and serves the
// back-office client operations.
type Directory struct {
	repo Repository
	now  func() time.Time
}

// NewDirectory creates a Directory backed by repo.
func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo, now: time.Now}
}

// FindMatch looks for an existing client that is probably the submitter:
// first by normalized phone digits, then by exact name. It is a best-effort
// lookup with no uniqueness guarantee, so two concurrent first orders from the
// same customer can both miss and create duplicates.
func (d *Directory) FindMatch(ctx context.Context, name, phone string) (*Client, bool, error) {
	if digits := NormalizePhone(phone); digits != "" {
		c, err := d.repo.FindByPhoneDigits(ctx, digits)
		switch {
		case err == nil:
			return c, true, nil
		case !errors.Is(err, ErrNotFound):
			return nil, false, errors.Wrap(err, "find by phone")
		}
	}
	if name = strings.TrimSpace(name); name != "" {
		c, err := d.repo.FindByName(ctx, name)
		switch {
		case err == nil:
			return c, true, nil
		case !errors.Is(err, ErrNotFound):
			return nil, false, errors.Wrap(err, "find by name")
		}
	}
	return nil, false, nil
}

// Resolve returns the client a sale is attributed to, updating the matched
// record in place or creating a new one.
func (d *Directory) Resolve(ctx context.Context, s Submission) (*Client, error) {
	name := strings.TrimSpace(s.Name)
	phone := strings.TrimSpace(s.Phone)
	email := strings.TrimSpace(s.Email)
	address := s.Address.Compose()

	existing, ok, err := d.FindMatch(ctx, name, phone)
	if err != nil {
		return nil, err
	}

	now := d.now()
	if ok {
		if name != "" {
			existing.Name = name
		}
		// A repeat order without a phone keeps the stored one; only a client
		// that never gave one gets the placeholder.
		switch {
		case phone != "":
			existing.Phone = phone
		case existing.Phone == "":
			existing.Phone = PhoneNotInformed
		}
		if address != "" {
			existing.Address = address
		}
		if email != "" {
			existing.Email = email
		}
		existing.UpdatedAt = now
		if err := d.repo.Update(ctx, existing); err != nil {
			return nil, errors.Wrap(err, "update client")
		}
		zctx.From(ctx).Debug("Matched existing client", zap.String("client_id", existing.ID))
		return existing, nil
	}

	if phone == "" {
		phone = PhoneNotInformed
	}
	c := &Client{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		Address:   address,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.repo.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create client")
	}
	zctx.From(ctx).Debug("Created client", zap.String("client_id", c.ID))
	return c, nil
}

// Get returns a client by id.
func (d *Directory) Get(ctx context.Context, id string) (*Client, error) {
	return d.repo.GetByID(ctx, id)
}

// List returns all clients, newest first.
func (d *Directory) List(ctx context.Context) ([]Client, error) {
	return d.repo.List(ctx)
}

// Create stores a manually entered client. Name and phone are required.
func (d *Directory) Create(ctx context.Context, c Client) (*Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" || c.Phone == "" {
		return nil, ErrInvalidClient
	}
	now := d.now()
	c.ID = uuid.New().String()
	c.Address = strings.TrimSpace(c.Address)
	c.Email = strings.TrimSpace(c.Email)
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := d.repo.Create(ctx, &c); err != nil {
		return nil, errors.Wrap(err, "create client")
	}
	return &c, nil
}

// Update overwrites the editable fields of an existing client. Empty fields
// in the patch keep their stored value.
func (d *Directory) Update(ctx context.Context, id string, patch Client) (*Client, error) {
	c, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(patch.Name); v != "" {
		c.Name = v
	}
	if v := strings.TrimSpace(patch.Phone); v != "" {
		c.Phone = v
	}
	if v := strings.TrimSpace(patch.Address); v != "" {
		c.Address = v
	}
	if v := strings.TrimSpace(patch.Email); v != "" {
		c.Email = v
	}
	c.UpdatedAt = d.now()
	if err := d.repo.Update(ctx, c); err != nil {
		return nil, errors.Wrap(err, "update client")
	}
	return c, nil
}

// Delete removes a client. Sales keep their name snapshot.
func (d *Directory) Delete(ctx context.Context, id string) error {
	return d.repo.Delete(ctx, id)
}
