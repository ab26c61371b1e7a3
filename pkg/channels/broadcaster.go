package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// subscriber holds a channel and its send timeout configuration.
type subscriber[T any] struct {
	ch       chan<- T
	timeout  *time.Duration // nil means non-blocking
	inactive atomic.Bool
	dropped  atomic.Int32
}

func (s *subscriber[T]) send(msg T) {
	if s.inactive.Load() {
		s.dropped.Add(1)
		return
	}

	var err error
	if s.timeout != nil {
		err = SendWithTimeout(s.ch, msg, *s.timeout)
	} else {
		err = SendNonBlock(s.ch, msg)
	}

	if err != nil {
		s.dropped.Add(1)
		// a closed subscriber never comes back
		if errors.Is(err, ErrChannelClosed) {
			s.inactive.Store(true)
		}
	}
}

// Broadcaster copies every value written to its input channel to all
// subscriber channels.
//
// Subscribers never block the writer for longer than their configured
// timeout: non-blocking subscribers lose values while they are full.
// On context cancellation the input is closed and whatever is still queued
// is delivered before Wait returns.
type Broadcaster[T any] struct {
	subscribers []*subscriber[T]
	input       chan T
	started     atomic.Bool
	wg          sync.WaitGroup
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe adds a non-blocking subscriber. Must be called before Run.
func (b *Broadcaster[T]) Subscribe(ch chan<- T) error {
	if ch == nil {
		return ErrNilChannel
	}

	b.subscribers = append(b.subscribers, &subscriber[T]{ch: ch})

	return nil
}

// SubscribeWithTimeout adds a subscriber that may block the broadcast loop
// for up to timeout per value. Must be called before Run.
func (b *Broadcaster[T]) SubscribeWithTimeout(ch chan<- T, timeout time.Duration) error {
	if ch == nil {
		return ErrNilChannel
	}

	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	b.subscribers = append(b.subscribers, &subscriber[T]{ch: ch, timeout: &timeout})

	return nil
}

// Run starts the broadcast loop and returns its input channel. The channel is
// owned by the Broadcaster and closed when ctx is done.
func (b *Broadcaster[T]) Run(ctx context.Context) (chan<- T, error) {
	if len(b.subscribers) == 0 {
		return nil, errors.New("no subscribers available")
	}

	if !b.started.CompareAndSwap(false, true) {
		return nil, errors.New("broadcaster already started")
	}

	b.input = make(chan T, len(b.subscribers)*8)

	b.wg.Go(func() {
		for msg := range b.input {
			for _, sub := range b.subscribers {
				sub.send(msg)
			}
		}
	})

	go func() {
		<-ctx.Done()
		close(b.input)
	}()

	return b.input, nil
}

// Wait blocks until the broadcast loop has drained after cancellation.
func (b *Broadcaster[T]) Wait() {
	b.wg.Wait()
}

type SubscriberStats struct {
	Dropped  int
	Inactive bool
}

// Stats reports per-subscriber drop counters in subscription order.
func (b *Broadcaster[T]) Stats() []SubscriberStats {
	stats := make([]SubscriberStats, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		stats = append(stats, SubscriberStats{
			Dropped:  int(sub.dropped.Load()),
			Inactive: sub.inactive.Load(),
		})
	}

	return stats
}
