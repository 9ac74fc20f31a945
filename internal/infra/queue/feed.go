package queue

import (
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/logger"
)

// RabbitFeed entrega as mudanças publicadas no exchange fanout. Cada assinatura
// abre um canal e uma fila exclusiva, removidos ao cancelar.
type RabbitFeed struct {
	Conn   *amqp.Connection
	Logger *zap.Logger
}

func NewRabbitFeed(conn *amqp.Connection, log *zap.Logger) *RabbitFeed {
	return &RabbitFeed{Conn: conn, Logger: logger.OrNop(log)}
}

func (f *RabbitFeed) Subscribe(filter entity.ChangeFilter, onChange func(entity.LeadChange)) func() {
	ch, err := f.Conn.Channel()
	if err != nil {
		f.Logger.Error("falha ao abrir canal do feed", zap.Error(err))
		return func() {}
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err == nil {
		err = ch.QueueBind(q.Name, "", ExchangeName, false, nil)
	}
	if err != nil {
		f.Logger.Error("falha ao preparar fila do feed", zap.Error(err))
		ch.Close()
		return func() {}
	}

	tag := "feed-" + uuid.New().String()
	msgs, err := ch.Consume(q.Name, tag, true, true, false, false, nil)
	if err != nil {
		f.Logger.Error("falha ao registrar consumidor do feed", zap.Error(err))
		ch.Close()
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			var change entity.LeadChange
			if err := json.Unmarshal(d.Body, &change); err != nil {
				f.Logger.Warn("mensagem inválida no feed", zap.String("message_id", d.MessageId), zap.Error(err))
				continue
			}
			if filter.Match(change) {
				onChange(change)
			}
		}
	}()

	f.Logger.Debug("assinatura do feed criada", zap.String("queue", q.Name), zap.String("consumer", tag))

	return func() {
		if err := ch.Cancel(tag, false); err != nil {
			f.Logger.Warn("falha ao cancelar consumidor do feed", zap.Error(err))
		}
		ch.Close()
		<-done
	}
}
