// Package mq carries auth events over a message broker. RabbitMQ and
// Google Cloud Pub/Sub are supported.
package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/notekeep/apiserver/config"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Bus publishes and consumes JSON messages on a single channel.
type Bus struct {
	backend Backend
	channel string
}

// NewBus constructs a Bus bound to channel.
func NewBus(backend Backend, channel string) *Bus {
	return &Bus{backend: backend, channel: channel}
}

// Channel returns the channel name the bus is bound to.
func (b *Bus) Channel() string {
	return b.channel
}

// PublishJSON encodes v and publishes it with attrs.
func (b *Bus) PublishJSON(ctx context.Context, v any, attrs map[string]string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}
	return b.backend.Publish(ctx, b.channel, data, attrs)
}

// Subscribe consumes messages until ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, handler Handler) error {
	return b.backend.Subscribe(ctx, b.channel, handler)
}

// Close closes the underlying backend.
func (b *Bus) Close() error {
	return b.backend.Close()
}

// NewBackend connects the backend selected by cfg. It returns a nil Backend
// when no backend is configured.
func NewBackend(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "pubsub":
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported mq backend %q", cfg.Backend)
	}
}
