package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopBroker(t *testing.T) {
	var b Broker = NopBroker{}

	assert.NoError(t, b.Publish(context.Background(), "simpus.audit", map[string]string{"type": "audit"}))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, "simpus.audit")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should close without delivering")
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}

	assert.NoError(t, b.Close())
}
