package channels_test

import (
	"context"
	"testing"
	"time"

	"github.com/alkime/radiopanel/pkg/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Frequency string
	Volume    int
}

func TestBroadcaster_Errors(t *testing.T) {
	t.Parallel()

	b := channels.NewBroadcaster[snapshot]()
	require.ErrorIs(t, b.Subscribe(nil), channels.ErrNilChannel)
	require.ErrorIs(t, b.SubscribeWithTimeout(nil, time.Second), channels.ErrNilChannel)

	err := b.SubscribeWithTimeout(make(chan snapshot), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")

	_, err = b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subscribers")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, b.Subscribe(make(chan snapshot, 1)))
	_, err = b.Run(ctx)
	require.NoError(t, err)

	_, err = b.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestBroadcaster_DeliversToEverySubscriber(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := channels.NewBroadcaster[snapshot]()
	monitor := make(chan snapshot, 8)
	meter := make(chan snapshot, 8)
	require.NoError(t, b.Subscribe(monitor))
	require.NoError(t, b.SubscribeWithTimeout(meter, 50*time.Millisecond))

	input, err := b.Run(ctx)
	require.NoError(t, err)

	input <- snapshot{Frequency: "305.75", Volume: 50}
	input <- snapshot{Frequency: "305.75", Volume: 51}

	cancel()
	b.Wait()
	close(monitor)
	close(meter)

	want := []snapshot{{"305.75", 50}, {"305.75", 51}}
	assert.Equal(t, want, channels.ReceiveAll(monitor, 10*time.Millisecond, 0))
	assert.Equal(t, want, channels.ReceiveAll(meter, 10*time.Millisecond, 0))
}

func TestBroadcaster_SlowSubscriberDrops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := channels.NewBroadcaster[int]()
	full := make(chan int, 1)
	full <- 99
	ready := make(chan int, 8)
	require.NoError(t, b.Subscribe(full))
	require.NoError(t, b.Subscribe(ready))

	input, err := b.Run(ctx)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		input <- i
	}

	cancel()
	b.Wait()
	close(ready)

	assert.Equal(t, []int{1, 2, 3}, channels.ReceiveAll(ready, 10*time.Millisecond, 0))

	stats := b.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, 3, stats[0].Dropped)
	assert.False(t, stats[0].Inactive)
	assert.Equal(t, 0, stats[1].Dropped)
}

func TestBroadcaster_ClosedSubscriberGoesInactive(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := channels.NewBroadcaster[int]()
	gone := make(chan int, 1)
	close(gone)
	require.NoError(t, b.Subscribe(gone))

	input, err := b.Run(ctx)
	require.NoError(t, err)
	input <- 1
	input <- 2

	cancel()
	b.Wait()

	stats := b.Stats()
	assert.True(t, stats[0].Inactive)
	assert.Equal(t, 2, stats[0].Dropped)
}
