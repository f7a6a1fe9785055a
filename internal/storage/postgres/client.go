package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/client"
)

const (
	clientColumns = `id, name, phone, address, email, created_at, updated_at`

	listClientsSQL = `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC, id`

	getClientByIDSQL = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	findClientByPhoneSQL = `SELECT ` + clientColumns + ` FROM clients
		WHERE phone <> '' AND regexp_replace(phone, '\D', '', 'g') = $1
		ORDER BY created_at, id LIMIT 1`

	findClientByNameSQL = `SELECT ` + clientColumns + ` FROM clients
		WHERE name = $1 ORDER BY created_at, id LIMIT 1`

	insertClientSQL = `INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateClientSQL = `UPDATE clients
		SET name = $2, phone = $3, address = $4, email = $5, updated_at = $6
		WHERE id = $1`

	deleteClientSQL = `DELETE FROM clients WHERE id = $1`
)

var _ client.Repository = (*ClientRepository)(nil)

// ClientRepository implements client.Repository backed by PostgreSQL.
type ClientRepository struct {
	conn
}

// NewClientRepository returns a ClientRepository that uses the given pool.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{conn{pool: pool}}
}

// List returns all clients, newest first.
func (r *ClientRepository) List(ctx context.Context) ([]client.Client, error) {
	rows, err := r.q(ctx).Query(ctx, listClientsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	return pgx.CollectRows(rows, scanClient)
}

// GetByID returns a client by id.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*client.Client, error) {
	return r.getOne(ctx, getClientByIDSQL, id)
}

// FindByPhoneDigits returns the oldest client whose phone, stripped to
// digits, equals digits.
func (r *ClientRepository) FindByPhoneDigits(ctx context.Context, digits string) (*client.Client, error) {
	return r.getOne(ctx, findClientByPhoneSQL, digits)
}

// FindByName returns the oldest client with exactly the given name.
func (r *ClientRepository) FindByName(ctx context.Context, name string) (*client.Client, error) {
	return r.getOne(ctx, findClientByNameSQL, name)
}

func (r *ClientRepository) getOne(ctx context.Context, query, arg string) (*client.Client, error) {
	rows, err := r.q(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting client: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanClient)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, client.ErrNotFound
		}
		return nil, fmt.Errorf("getting client: %w", err)
	}
	return &c, nil
}

// Create inserts a client.
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	_, err := r.q(ctx).Exec(ctx, insertClientSQL,
		c.ID, c.Name, c.Phone, c.Address, c.Email, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating client %q: %w", c.ID, err)
	}
	return nil
}

// Update overwrites a client's fields.
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	tag, err := r.q(ctx).Exec(ctx, updateClientSQL,
		c.ID, c.Name, c.Phone, c.Address, c.Email, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating client %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrNotFound
	}
	return nil
}

// Delete removes a client. Sales referencing it become counter sales.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q(ctx).Exec(ctx, deleteClientSQL, id)
	if err != nil {
		return fmt.Errorf("deleting client %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.CollectableRow) (client.Client, error) {
	var c client.Client
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
