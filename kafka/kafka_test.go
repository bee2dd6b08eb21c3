package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
)

var sampleTx = auditdomain.Transaction{
	ID:         "tx-1",
	Timestamp:  time.Date(2025, 3, 9, 10, 30, 0, 0, time.UTC),
	ActionType: auditdomain.ActionCashSale,
	Details:    map[string]any{"invoiceNumber": "INV-250309-0001", "total": "150.00"},
	User:       "cashier",
}

func TestPublishTransaction(t *testing.T) {
	producer := mocks.NewSyncProducer(t, ProducerConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicTransactions {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != auditdomain.ActionCashSale {
			return errors.New("wrong key " + string(key))
		}
		for _, h := range msg.Headers {
			if string(h.Key) == "event_type" && string(h.Value) == EventTypeTransactionRecorded {
				return nil
			}
		}
		return errors.New("missing event_type header")
	})

	p := NewPublisherWithProducer(producer, nil)
	require.NoError(t, p.PublishTransaction(context.Background(), sampleTx))
	require.NoError(t, p.Close())
}

func TestPublishTransactionFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, ProducerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, nil)
	err := p.PublishTransaction(context.Background(), sampleTx)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func message(t *testing.T, eventType string, event TransactionRecordedEvent) *sarama.ConsumerMessage {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	msg := &sarama.ConsumerMessage{Topic: TopicTransactions, Value: value}
	if eventType != "" {
		msg.Headers = []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(eventType)}}
	}
	return msg
}

func TestConsumerDispatchesTransactionEvents(t *testing.T) {
	c := newConsumer([]string{TopicTransactions})
	var got []auditdomain.Transaction
	c.RegisterHandler(EventTypeTransactionRecorded, func(_ context.Context, e TransactionRecordedEvent) error {
		got = append(got, e.Transaction())
		return nil
	})
	h := &consumerGroupHandler{consumer: c}
	ctx := context.Background()

	require.NoError(t, h.handleMessage(ctx, message(t, EventTypeTransactionRecorded, NewTransactionRecordedEvent(sampleTx))))
	require.Len(t, got, 1)
	assert.Equal(t, sampleTx.ID, got[0].ID)
	assert.Equal(t, sampleTx.User, got[0].User)
	assert.True(t, sampleTx.Timestamp.Equal(got[0].Timestamp))
	assert.Equal(t, "INV-250309-0001", got[0].Details["invoiceNumber"])

	assert.ErrorIs(t, h.handleMessage(ctx, message(t, "", TransactionRecordedEvent{})), errMissingEventType)
	assert.ErrorIs(t, h.handleMessage(ctx, message(t, "product.purchased", TransactionRecordedEvent{})), errNoHandler)
	assert.Len(t, got, 1)
}

func TestConsumerReportsHandlerFailure(t *testing.T) {
	c := newConsumer([]string{TopicTransactions})
	boom := errors.New("archive down")
	c.RegisterHandler(EventTypeTransactionRecorded, func(context.Context, TransactionRecordedEvent) error {
		return boom
	})
	h := &consumerGroupHandler{consumer: c}

	err := h.handleMessage(context.Background(), message(t, EventTypeTransactionRecorded, NewTransactionRecordedEvent(sampleTx)))
	assert.ErrorIs(t, err, boom)

	bad := &sarama.ConsumerMessage{
		Value:   []byte("{"),
		Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(EventTypeTransactionRecorded)}},
	}
	assert.Error(t, h.handleMessage(context.Background(), bad))
}
