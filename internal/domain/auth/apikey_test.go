package auth

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPepper = []byte("pepper")

func TestHash(t *testing.T) {
	h := Hash(testPepper, "secret")
	assert.Len(t, h, 64)
	assert.Equal(t, h, Hash(testPepper, "secret"))
	assert.NotEqual(t, h, Hash([]byte("other"), "secret"))
}

func TestAuthenticator(t *testing.T) {
	repo := &mockKeyRepo{keys: map[string]*APIKeyInfo{
		Hash(testPepper, "admin-key"): {ID: "k1", KeyHash: Hash(testPepper, "admin-key"), Name: "ops", Scopes: []string{ScopeAdmin}},
		Hash(testPepper, "read-key"):  {ID: "k2", KeyHash: Hash(testPepper, "read-key"), Name: "ro", Scopes: []string{"read"}},
	}}
	a := NewAuthenticator(repo, testPepper)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "valid admin key", key: "admin-key"},
		{name: "empty key", key: "", wantErr: ErrUnauthorized},
		{name: "unknown key", key: "nope", wantErr: ErrUnauthorized},
		{name: "missing scope", key: "read-key", wantErr: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := a.Authenticate(ctx, tt.key, ScopeAdmin)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "k1", info.ID)
		})
	}
}

func TestAuthenticator_RepoError(t *testing.T) {
	repo := &mockKeyRepo{err: errors.New("db down")}
	_, err := NewAuthenticator(repo, testPepper).Authenticate(context.Background(), "k", ScopeAdmin)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

// --- Mock implementations ---

type mockKeyRepo struct {
	keys map[string]*APIKeyInfo
	err  error
}

func (m *mockKeyRepo) FindByHash(_ context.Context, hash string) (*APIKeyInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	k, ok := m.keys[hash]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return k, nil
}
