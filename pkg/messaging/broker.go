package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope every published event travels in.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// NopBroker drops every message. It stands in when no broker is configured.
type NopBroker struct{}

func (NopBroker) Publish(context.Context, string, interface{}) error { return nil }

func (NopBroker) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NopBroker) Close() error { return nil }
