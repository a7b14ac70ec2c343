package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	seen := 0
	d.Subscribe(EventIdentityCreated, func(ctx context.Context, e Event) error {
		seen++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventIdentityCreated})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func TestPublishSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	order := []string{}
	d.Subscribe(EventIdentityCreated, func(ctx context.Context, e Event) error {
		order = append(order, "failing")
		return errors.New("boom")
	})
	d.Subscribe(EventIdentityCreated, func(ctx context.Context, e Event) error {
		order = append(order, "next")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventIdentityCreated})
	require.NoError(t, err)
	assert.Equal(t, []string{"failing", "next"}, order)
}

func TestPublishIgnoresUnrelatedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()
	seen := 0
	d.Subscribe(EventIdentityRefreshed, func(ctx context.Context, e Event) error {
		seen++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventIdentityCreated}))
	assert.Zero(t, seen)
}
