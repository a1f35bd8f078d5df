// Package events publishes committed loan events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const Exchange = "loan_events"

type Producer struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	log      logrus.FieldLogger
}

// Fallback drops events with a warning; used when the broker is unreachable at startup.
type Fallback struct{ Log logrus.FieldLogger }

func (f Fallback) Publish(_ context.Context, routingKey string, _ any) error {
	if f.Log != nil {
		f.Log.WithFields(logrus.Fields{"module": "events", "routing_key": routingKey}).Warn("publish skipped: no broker")
	}
	return nil
}

func (Fallback) Close() {}

func sanitizeURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP URL must start with amqp:// or amqps://")
	}
	return clean, nil
}

// NewProducer dials the broker and declares the durable topic exchange.
func NewProducer(rawURL string, log logrus.FieldLogger) (*Producer, error) {
	clean, err := sanitizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	conn, err := amqp091.DialConfig(clean, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	p := &Producer{conn: conn, exchange: Exchange, log: log}
	if err := p.reopen(); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func (p *Producer) reopen() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return err
	}
	p.channel = ch
	return nil
}

func encode(payload any, at time.Time) (amqp091.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp091.Publishing{}, err
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    at,
		Body:         body,
	}, nil
}

// Publish sends payload as JSON. A failed publish reopens the channel and retries once.
func (p *Producer) Publish(ctx context.Context, routingKey string, payload any) error {
	msg, err := encode(payload, time.Now().UTC())
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err == nil {
		return nil
	}
	p.log.WithFields(logrus.Fields{"module": "events", "routing_key": routingKey}).Warn("publish failed, reopening channel: " + err.Error())
	if rerr := p.reopen(); rerr != nil {
		return rerr
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
}

func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
