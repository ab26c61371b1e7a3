// Package channels holds small generic helpers for fanning values out over
// Go channels without letting one slow reader stall the writer.
package channels

import (
	"errors"
	"time"
)

var (
	ErrChannelClosed  = errors.New("channel closed")
	ErrChannelTimeout = errors.New("send timeout")
	ErrChannelFull    = errors.New("channel full")
	ErrNilChannel     = errors.New("channel cannot be nil")
)

// ReceiveAll drains ch until it is closed, idle for longer than idle, or
// limit values have been read. A limit of zero means no limit.
func ReceiveAll[T any](ch <-chan T, idle time.Duration, limit int) []T {
	var out []T

	for limit == 0 || len(out) < limit {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		case <-time.After(idle):
			return out
		}
	}

	return out
}

// SendNonBlock delivers msg only if ch has room right now.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer recoverClosed(&err)

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// SendWithTimeout waits up to timeout for ch to accept msg.
func SendWithTimeout[T any](ch chan<- T, msg T, timeout time.Duration) (err error) {
	defer recoverClosed(&err)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- msg:
		return nil
	case <-timer.C:
		return ErrChannelTimeout
	}
}

// recoverClosed turns the send-on-closed-channel panic into ErrChannelClosed.
func recoverClosed(err *error) {
	if r := recover(); r != nil {
		*err = ErrChannelClosed
	}
}
