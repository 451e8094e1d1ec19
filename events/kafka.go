// Package events publishes operation outcomes to Kafka.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wI2L/jettison"

	"paidpiper.com/nonce-gateway/log"
	"paidpiper.com/nonce-gateway/models"
)

const (
	OutcomeEventType    = "nonce.outcome"
	OutcomeEventVersion = "1"
)

// Envelope is the schema of every published event.
type Envelope struct {
	EventType    string      `json:"eventType"`
	EventVersion string      `json:"eventVersion"`
	OccurredAt   time.Time   `json:"occurredAt"`
	AggregateID  string      `json:"aggregateId"`
	Data         interface{} `json:"data"`
}

func NewOutcomeEnvelope(outcome models.Outcome) Envelope {
	occurred := outcome.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return Envelope{
		EventType:    OutcomeEventType,
		EventVersion: OutcomeEventVersion,
		OccurredAt:   occurred,
		AggregateID:  outcome.RequestID,
		Data:         outcome,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes outcomes from a background goroutine. Observe never
// blocks; when the queue is full the outcome is dropped and logged.
type Publisher struct {
	w       messageWriter
	topic   string
	timeout time.Duration
	queue   chan models.Outcome
	done    chan struct{}
	mutex   *sync.RWMutex
	closed  bool
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
	}, topic)
}

func newPublisher(w messageWriter, topic string) *Publisher {
	p := &Publisher{
		w:       w,
		topic:   topic,
		timeout: 5 * time.Second,
		queue:   make(chan models.Outcome, 256),
		done:    make(chan struct{}),
		mutex:   &sync.RWMutex{},
	}
	go p.run()
	return p
}

func (p *Publisher) Observe(outcome models.Outcome) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.closed {
		log.WithFields(log.Fields{"request": outcome.RequestID}).Warn("publisher closed, dropping event")
		return
	}
	select {
	case p.queue <- outcome:
	default:
		log.WithFields(log.Fields{"request": outcome.RequestID}).Warn("outcome queue full, dropping event")
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for outcome := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.Publish(ctx, NewOutcomeEnvelope(outcome)); err != nil {
			log.WithFields(log.Fields{"request": outcome.RequestID, "topic": p.topic}).Errorf("Publishing outcome failed: %v", err)
		}
		cancel()
	}
}

// Publish writes one envelope keyed by its aggregate id.
func (p *Publisher) Publish(ctx context.Context, evt Envelope) error {
	val, err := jettison.Marshal(evt)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(evt.AggregateID),
		Value: val,
	})
}

// Close drains queued outcomes and closes the writer.
func (p *Publisher) Close() error {
	p.mutex.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mutex.Unlock()

	<-p.done
	return p.w.Close()
}
