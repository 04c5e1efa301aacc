package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AMQPQueue publishes JSON payloads to durable RabbitMQ queues named after the
// topic. Subscribers receive the raw JSON body as []byte.
type AMQPQueue struct {
	conn   *amqp.Connection
	mu     sync.Mutex
	pubCh  *amqp.Channel
	logger *zap.Logger
}

// DialAMQP connects to the broker at url.
func DialAMQP(url string, logger *zap.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open queue channel: %w", err)
	}

	return &AMQPQueue{conn: conn, pubCh: ch, logger: logger}, nil
}

func declare(ch *amqp.Channel, topic string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		topic,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, err := declare(q.pubCh, topic); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", topic, err)
	}

	return q.pubCh.Publish(
		"",
		topic,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Subscribe consumes topic on a dedicated channel. A handler error rejects
// the delivery without requeueing it.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open queue channel: %w", err)
	}

	if _, err := declare(ch, topic); err != nil {
		ch.Close()
		return fmt.Errorf("failed to declare queue %s: %w", topic, err)
	}

	deliveries, err := ch.Consume(topic, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to consume %s: %w", topic, err)
	}

	go func() {
		for d := range deliveries {
			if err := handler(d.Body); err != nil {
				q.logger.Warn("rejecting delivery", zap.String("topic", topic), zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
		q.logger.Info("delivery channel closed", zap.String("topic", topic))
	}()

	return nil
}

// Close shuts the connection and all its channels.
func (q *AMQPQueue) Close() error {
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
var _ Queue = (*InMemoryQueue)(nil)
