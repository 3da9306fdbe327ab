package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NotNil(t, p)
	assert.Empty(t, p.writers)
}

func TestPublishNoMessages(t *testing.T) {
	p := NewProducer(Config{Brokers: []string{"localhost:9092"}})

	// Publishing zero messages is a no-op and must not dial the broker.
	err := p.Publish(context.Background(), "decisioning-events")
	assert.NoError(t, err)
	assert.Empty(t, p.writers)
}

func TestGetOrCreateWriterReuse(t *testing.T) {
	p := NewProducer(Config{Brokers: []string{"localhost:9092"}, BatchTimeoutMs: 50})

	w1 := p.getOrCreateWriter("topic-a")
	w2 := p.getOrCreateWriter("topic-a")
	w3 := p.getOrCreateWriter("topic-b")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Len(t, p.writers, 2)
}

func TestCloseResetsWriters(t *testing.T) {
	p := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	p.getOrCreateWriter("topic-a")

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}
