package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"stockledger/internal/domain"
	"stockledger/internal/pkg/logger"
)

// Publisher publica eventos de estoque após a confirmação da mutação.
type Publisher interface {
	PublishStockAdjusted(ctx context.Context, event domain.StockAdjustedEvent) error
}

// RoutingKey devolve a chave de roteamento de um ajuste, e.g. "inventory.stock.reserve".
func RoutingKey(op domain.AdjustmentOperation) string {
	return "inventory.stock." + strings.ToLower(string(op))
}

// Channel é o subconjunto de *amqp.Channel usado pelo publisher.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publica em uma exchange topic durável do RabbitMQ.
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   logger.Logger
}

// NewRabbitPublisher conecta ao RabbitMQ e declara a exchange (tipo topic, durável).
func NewRabbitPublisher(url, exchange string, log logger.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal no RabbitMQ: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar exchange %s: %w", exchange, err)
	}

	log.Info("Publicador de eventos RabbitMQ pronto.", map[string]interface{}{"exchange": exchange})
	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange, logger: log}, nil
}

// NewRabbitPublisherWithChannel monta um publisher sobre um canal já aberto.
func NewRabbitPublisherWithChannel(ch Channel, exchange string, log logger.Logger) *RabbitPublisher {
	return &RabbitPublisher{channel: ch, exchange: exchange, logger: log}
}

// PublishStockAdjusted serializa o evento em JSON e publica com entrega persistente.
func (p *RabbitPublisher) PublishStockAdjusted(ctx context.Context, event domain.StockAdjustedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("falha ao serializar evento: %w", err)
	}

	key := RoutingKey(event.Operation)
	err = p.channel.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.AdjustmentID,
	})
	if err != nil {
		return fmt.Errorf("falha ao publicar evento %s: %w", key, err)
	}

	p.logger.Debug("Evento de estoque publicado.", map[string]interface{}{"routing_key": key, "product_id": event.ProductID})
	return nil
}

// Close fecha canal e conexão.
func (p *RabbitPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher descarta eventos. Usado quando RABBITMQ_URL não está configurada.
type NoopPublisher struct{}

func (NoopPublisher) PublishStockAdjusted(context.Context, domain.StockAdjustedEvent) error {
	return nil
}
