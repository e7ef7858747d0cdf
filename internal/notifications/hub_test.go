package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()

	a1, err := hub.Register(1, nil)
	require.NoError(t, err)
	a2, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Connections(1))

	hub.Broadcast(1, `{"type":"NEW_FOLLOWER"}`)

	assert.Equal(t, `{"type":"NEW_FOLLOWER"}`, string(<-a1.Send))
	assert.Equal(t, `{"type":"NEW_FOLLOWER"}`, string(<-a2.Send))
	assert.Empty(t, b.Send)
}

func TestHub_UnregisterClosesSendOnce(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	hub.Unregister(c)
	hub.Unregister(c)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Zero(t, hub.Connections(3))

	// sending to a closed client is swallowed
	assert.NotPanics(t, func() { c.TrySend([]byte("late")) })
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(4, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(4, nil)
	assert.ErrorIs(t, err, ErrTooManyConnections)
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(5, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+3; i++ {
		hub.Broadcast(5, "x")
	}
	assert.Len(t, c.Send, sendBuffer)
}

func TestHub_ShutdownRejectsRegistration(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(6, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, ok := <-c.Send
	assert.False(t, ok)
	_, err = hub.Register(6, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_StartWiringForwardsPublishedPayloads(t *testing.T) {
	n := NewNotifier(newTestRedis(t))
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := hub.Register(7, nil)
	require.NoError(t, err)
	require.NoError(t, hub.StartWiring(ctx, n))

	require.NoError(t, n.PublishUser(context.Background(), 7, "hello"))

	select {
	case got := <-c.Send:
		assert.Equal(t, "hello", string(got))
	case <-time.After(time.Second):
		t.Fatal("expected payload from redis")
	}
}
