package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockledger/internal/domain"
	"stockledger/internal/pkg/events"
	"stockledger/internal/pkg/logger"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func sampleEvent() domain.StockAdjustedEvent {
	return domain.StockAdjustedEvent{
		AdjustmentID: "adj-1",
		ProductID:    "prod-1",
		Operation:    domain.OperationReserve,
		Amount:       3,
		Ledger:       domain.LedgerView{ProductID: "prod-1", Quantity: 10, ReservedQuantity: 3, AvailableQuantity: 7},
		OccurredAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "inventory.stock.reserve", events.RoutingKey(domain.OperationReserve))
	assert.Equal(t, "inventory.stock.set", events.RoutingKey(domain.OperationSet))
}

func TestPublishStockAdjusted(t *testing.T) {
	ch := new(MockChannel)
	pub := events.NewRabbitPublisherWithChannel(ch, "inventory.events", logger.NewNop())

	ch.On("PublishWithContext", mock.Anything, "inventory.events", "inventory.stock.reserve", false, false,
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var decoded domain.StockAdjustedEvent
			if err := json.Unmarshal(msg.Body, &decoded); err != nil {
				return false
			}
			return msg.DeliveryMode == amqp.Persistent &&
				msg.ContentType == "application/json" &&
				msg.MessageId == "adj-1" &&
				decoded.Ledger.AvailableQuantity == 7
		})).Return(nil)

	err := pub.PublishStockAdjusted(context.Background(), sampleEvent())

	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestPublishStockAdjusted_Fail_Channel(t *testing.T) {
	ch := new(MockChannel)
	pub := events.NewRabbitPublisherWithChannel(ch, "inventory.events", logger.NewNop())
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, false, false, mock.Anything).
		Return(errors.New("channel closed"))

	err := pub.PublishStockAdjusted(context.Background(), sampleEvent())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "inventory.stock.reserve")
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, events.NoopPublisher{}.PublishStockAdjusted(context.Background(), sampleEvent()))
}
