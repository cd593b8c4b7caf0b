package mq

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/notekeep/apiserver/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	published []Message
	channels  []string
	closed    bool
}

func (b *recordingBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.channels = append(b.channels, channel)
	b.published = append(b.published, Message{ID: "m1", Data: data, Attributes: attrs})
	return "m1", nil
}

func (b *recordingBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	b.channels = append(b.channels, channel)
	for _, msg := range b.published {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *recordingBackend) Close() error {
	b.closed = true
	return nil
}

func TestBus_PublishJSONAndSubscribe(t *testing.T) {
	backend := &recordingBackend{}
	bus := NewBus(backend, "auth.events")

	id, err := bus.PublishJSON(context.Background(), map[string]string{"type": "user.logged_in"}, map[string]string{"type": "user.logged_in"})
	require.NoError(t, err)
	assert.Equal(t, "m1", id)
	assert.Equal(t, "auth.events", bus.Channel())

	var received []map[string]string
	err = bus.Subscribe(context.Background(), func(_ context.Context, msg Message) error {
		var body map[string]string
		if err := json.Unmarshal(msg.Data, &body); err != nil {
			return err
		}
		received = append(received, body)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{{"type": "user.logged_in"}}, received)
	assert.Equal(t, []string{"auth.events", "auth.events"}, backend.channels)

	require.NoError(t, bus.Close())
	assert.True(t, backend.closed)
}

func TestBus_PublishJSONRejectsUnencodable(t *testing.T) {
	bus := NewBus(&recordingBackend{}, "auth.events")

	_, err := bus.PublishJSON(context.Background(), make(chan int), nil)
	assert.Error(t, err)
}

func TestNewBackend(t *testing.T) {
	backend, err := NewBackend(context.Background(), config.MQConfig{})
	require.NoError(t, err)
	assert.Nil(t, backend)

	_, err = NewBackend(context.Background(), config.MQConfig{Backend: "kafka"})
	assert.Error(t, err)

	_, err = NewBackend(context.Background(), config.MQConfig{Backend: "rabbitmq"})
	assert.Error(t, err)

	_, err = NewBackend(context.Background(), config.MQConfig{Backend: "pubsub"})
	assert.Error(t, err)
}

func TestHeadersToAttributes(t *testing.T) {
	assert.Nil(t, headersToAttributes(nil))

	attrs := headersToAttributes(amqp.Table{
		"type":  "user.signed_up",
		"raw":   []byte("bytes"),
		"count": int32(3),
	})
	assert.Equal(t, map[string]string{"type": "user.signed_up", "raw": "bytes", "count": "3"}, attrs)
}
