// Package queue carries resume screening jobs and candidate status updates
// over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// ScreeningJob is the message body on the screening queue.
type ScreeningJob struct {
	CandidateID    string    `json:"candidate_id"`
	Email          string    `json:"email"`
	ObjectKey      string    `json:"object_key"`
	Mime           string    `json:"mime"`
	JobTitle       string    `json:"job_title"`
	JobDescription string    `json:"job_description"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

// StatusUpdate is published to the updates exchange whenever a candidate
// moves between screening states.
type StatusUpdate struct {
	CandidateID string    `json:"candidate_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

func RoutingKey(candidateID string) string {
	return fmt.Sprintf("candidate.%s", candidateID)
}

// DecodeJob parses a delivery body and checks the fields the worker needs.
func DecodeJob(body []byte) (ScreeningJob, error) {
	var job ScreeningJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("decode screening job: %w", err)
	}
	if job.CandidateID == "" || job.ObjectKey == "" {
		return job, fmt.Errorf("screening job missing candidate_id or object_key")
	}
	return job, nil
}

// Channel is the publishing side of *amqp.Channel.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	open     func() (Channel, error)
	queue    string
	exchange string
}

// NewPublisher opens a fresh channel on conn for every publish.
func NewPublisher(conn *amqp.Connection, queue, exchange string) *Publisher {
	return &Publisher{
		open:     func() (Channel, error) { return conn.Channel() },
		queue:    queue,
		exchange: exchange,
	}
}

func newPublisherWith(open func() (Channel, error), queue, exchange string) *Publisher {
	return &Publisher{open: open, queue: queue, exchange: exchange}
}

// DeclareTopology declares the durable screening queue and the topic exchange
// for status updates.
func DeclareTopology(conn *amqp.Connection, queue, exchange string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Enqueue publishes a persistent screening job to the default exchange.
func (p *Publisher) Enqueue(_ context.Context, job ScreeningJob) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	return p.publish("", p.queue, job, amqp.Persistent)
}

func (p *Publisher) PublishStatus(_ context.Context, update StatusUpdate) error {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}
	return p.publish(p.exchange, RoutingKey(update.CandidateID), update, amqp.Transient)
}

func (p *Publisher) publish(exchange, key string, v any, mode uint8) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	return ch.Publish(
		exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: mode,
			Body:         body,
		},
	)
}
