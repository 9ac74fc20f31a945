package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type ChangeProducer struct {
	mu sync.Mutex
	Ch *amqp.Channel
}

func NewChangeProducer(ch *amqp.Channel) *ChangeProducer {
	return &ChangeProducer{Ch: ch}
}

func (p *ChangeProducer) PublishLeadChange(ctx context.Context, change entity.LeadChange) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("erro ao converter mudança: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   change.ID,
			Timestamp:   change.OccurredAt,
			Type:        string(change.Kind),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
