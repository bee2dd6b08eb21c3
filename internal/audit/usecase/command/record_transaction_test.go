package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/audit/repository"
	"github.com/tair/pos-ledger/internal/audit/usecase/query"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/storage"
)

type recordingPublisher struct {
	published []domain.Transaction
	err       error
}

func (p *recordingPublisher) PublishTransaction(_ context.Context, tx domain.Transaction) error {
	p.published = append(p.published, tx)
	return p.err
}

func TestRecordUsesActorFromContext(t *testing.T) {
	clock := dateutil.NewFixedClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := repository.NewKVTransactionRepository(storage.NewMemoryStore())
	pub := &recordingPublisher{}
	h := NewRecordTransactionHandler(repo, pub, clock)

	ctx := domain.WithActor(context.Background(), "cashier1")
	require.NoError(t, h.Record(ctx, domain.ActionCashSale, map[string]any{"invoiceNumber": "INV-250601-0001"}))
	require.NoError(t, h.Record(context.Background(), domain.ActionSettingsUpdated, nil))

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cashier1", all[0].User)
	assert.Equal(t, domain.SystemActor, all[1].User)
	assert.Equal(t, clock.Now(), all[0].Timestamp)
	assert.NotNil(t, all[1].Details)
	assert.Len(t, pub.published, 2)
}

func TestPublishFailureDoesNotFailRecording(t *testing.T) {
	repo := repository.NewKVTransactionRepository(storage.NewMemoryStore())
	h := NewRecordTransactionHandler(repo, &recordingPublisher{err: errors.New("broker down")}, dateutil.SystemClock{})

	tx, err := h.Handle(context.Background(), RecordTransactionCommand{ActionType: domain.ActionProductCreated})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)

	_, err = h.Handle(context.Background(), RecordTransactionCommand{})
	assert.Error(t, err)
}

type failingTransactions struct {
	domain.TransactionRepository
}

func (failingTransactions) Append(context.Context, domain.Transaction) error {
	return errors.New("disk full")
}

func TestRecordFailureIsCounted(t *testing.T) {
	pub := &recordingPublisher{}
	h := NewRecordTransactionHandler(failingTransactions{}, pub, dateutil.SystemClock{})
	before := testutil.ToFloat64(recordFailures.WithLabelValues(domain.ActionInstallmentPayment))

	ctx := domain.WithActor(context.Background(), "cashier1")
	err := h.Record(ctx, domain.ActionInstallmentPayment, map[string]any{"paymentAmount": "66.67"})
	assert.ErrorContains(t, err, "disk full")

	assert.Equal(t, before+1, testutil.ToFloat64(recordFailures.WithLabelValues(domain.ActionInstallmentPayment)))
	assert.Empty(t, pub.published)
}

func TestListTransactionsByDateAndType(t *testing.T) {
	clock := dateutil.NewFixedClock(time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC))
	repo := repository.NewKVTransactionRepository(storage.NewMemoryStore())
	h := NewRecordTransactionHandler(repo, nil, clock)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, domain.ActionCashSale, nil))
	clock.Advance(time.Hour)
	require.NoError(t, h.Record(ctx, domain.ActionInstallmentPayment, map[string]any{"paymentAmount": "100"}))
	require.NoError(t, h.Record(ctx, domain.ActionCashSale, nil))

	q := query.NewListTransactionsHandler(repo)

	day1, err := q.ByDate(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, day1, 1)

	payments, err := q.Handle(ctx, query.ListTransactionsQuery{ActionType: domain.ActionInstallmentPayment})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "100", payments[0].Details["paymentAmount"])
}
