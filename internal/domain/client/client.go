// Package client holds the client directory: customer records that sales are
// attributed to, and the best-effort matching used at checkout.
package client

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// PhoneNotInformed is stored in place of a missing phone number.
const PhoneNotInformed = "Nao informado"

var (
	// ErrNotFound is returned when a client does not exist.
	ErrNotFound = errors.New("client not found")
	// ErrInvalidClient is returned when a manually created client lacks name or phone.
	ErrInvalidClient = errors.New("name and phone are required")
)

// Client is a customer record. Phone and address are free text.
type Client struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines persistence operations for clients.
//
// FindByPhoneDigits compares against the digits-only form of the stored phone
// and returns the oldest match. FindByName matches the name exactly and also
// returns the oldest match. Both return ErrNotFound when nothing matches.
type Repository interface {
	List(ctx context.Context) ([]Client, error)
	GetByID(ctx context.Context, id string) (*Client, error)
	FindByPhoneDigits(ctx context.Context, digits string) (*Client, error)
	FindByName(ctx context.Context, name string) (*Client, error)
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id string) error
}

// NormalizePhone strips everything but ASCII digits.
func NormalizePhone(phone string) string {
	return digitsOnly(phone)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
