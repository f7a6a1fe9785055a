package sale

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	sales []*Sale
	limit int
}

func (m *mockRepo) Create(_ context.Context, s *Sale) error {
	cp := *s
	m.sales = append(m.sales, &cp)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Sale, error) {
	for _, s := range m.sales {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) ListRecent(_ context.Context, limit int) ([]Sale, error) {
	m.limit = limit
	out := make([]Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	for _, s := range m.sales {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return ErrNotFound
}

func TestParsePaymentMethod(t *testing.T) {
	tests := map[string]PaymentMethod{
		"pix":      PaymentPix,
		"PIX":      PaymentPix,
		"Dinheiro": PaymentCash,
		"cash":     PaymentCash,
		"Cartão":   PaymentCredit,
		"cartao":   PaymentCredit,
		"card":     PaymentCredit,
		"credito":  PaymentCredit,
		"Crédito":  PaymentCredit,
		"debito":   PaymentDebit,
		"DÉBITO":   PaymentDebit,
		" debit ":  PaymentDebit,
		"boleto":   PaymentPix,
		"":         PaymentPix,
	}
	for label, want := range tests {
		assert.Equal(t, want, ParsePaymentMethod(label), "label %q", label)
	}
}

func TestParseStatus(t *testing.T) {
	for label, want := range map[string]Status{
		"pending":   StatusPending,
		"Pendente":  StatusPending,
		"concluida": StatusCompleted,
		"completed": StatusCompleted,
		"cancelada": StatusCancelled,
		"canceled":  StatusCancelled,
	} {
		got, err := ParseStatus(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}

	_, err := ParseStatus("refunded")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestLineItem_Amount(t *testing.T) {
	li := LineItem{UnitPrice: decimal.RequireFromString("59.99"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("179.97").Equal(li.Amount()))
}

func TestLedger(t *testing.T) {
	repo := &mockRepo{sales: []*Sale{{ID: "s1", Status: StatusCompleted}}}
	l := NewLedger(repo)
	ctx := context.Background()

	list, err := l.Recent(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, RecentLimit, repo.limit)

	s, err := l.SetStatus(ctx, "s1", "cancelada")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s.Status)

	_, err = l.SetStatus(ctx, "s1", "lost")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = l.SetStatus(ctx, "missing", "pending")
	require.ErrorIs(t, err, ErrNotFound)
}
