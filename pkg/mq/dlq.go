package mq

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	DLQExchangeName = "researchhub.events.dlq"

	// 死信保留一周，之后由 broker 丢弃
	dlqRetention = 7 * 24 * time.Hour
)

// DLQQueueName 每个 routing key 对应一个死信队列
func DLQQueueName(routingKey string) string {
	return fmt.Sprintf("researchhub.%s.dlq", routingKey)
}

// DeclareDLQQueue 声明并绑定 routing key 对应的死信队列
func DeclareDLQQueue(ch *amqp091.Channel, routingKey string) (amqp091.Queue, error) {
	q, err := ch.QueueDeclare(
		DLQQueueName(routingKey),
		true,
		false,
		false,
		false,
		amqp091.Table{"x-message-ttl": dlqRetention.Milliseconds()},
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, routingKey, DLQExchangeName, false, nil); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}
	return q, nil
}

func dlqHeaders(routingKey, originalError string, at time.Time) amqp091.Table {
	return amqp091.Table{
		"x-original-error":       originalError,
		"x-original-routing-key": routingKey,
		"x-failed-at":            "reminder-worker",
		"x-failed-time":          at.UTC().Format(time.RFC3339),
	}
}

// PublishToDLQ 将无法处理的消息原样投递到死信 exchange
func (p *Publisher) PublishToDLQ(routingKey string, payload []byte, originalError string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.Publish(
		DLQExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Headers:      dlqHeaders(routingKey, originalError, time.Now()),
		},
	)
}
