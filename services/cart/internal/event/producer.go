package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/xmenbro/AutoRepairCenter/pkg/kafka"
	"github.com/xmenbro/AutoRepairCenter/services/cart/internal/domain"
)

// TopicCartSaved receives one event per accepted save.
var TopicCartSaved = pkgkafka.Topic("cart", "saved")

// Aggregate type constant.
const AggregateTypeCart = "cart"

// Source identifier for events originating from the cart service.
const SourceCartService = "cart-service"

// CartSavedData is the payload for a cart.saved event.
type CartSavedData struct {
	UserID      string        `json:"user_id"`
	Items       []domain.Item `json:"items"`
	ItemCount   int           `json:"item_count"`
	TotalAmount int64         `json:"total_amount"`
}

// Publisher sends cart events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the cart service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartSaved publishes a cart.saved event.
func (p *Producer) PublishCartSaved(ctx context.Context, cart *domain.Cart) error {
	data := CartSavedData{
		UserID:      cart.UserID,
		Items:       cart.Items,
		ItemCount:   cart.ItemCount(),
		TotalAmount: cart.TotalAmount(),
	}

	event, err := pkgkafka.NewEvent(TopicCartSaved, pkgkafka.Aggregate{Type: AggregateTypeCart, ID: cart.UserID}, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create cart.saved event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartSaved, event); err != nil {
		return fmt.Errorf("publish cart.saved event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.saved event",
		slog.String("user_id", cart.UserID),
		slog.Int("item_count", cart.ItemCount()),
	)

	return nil
}
