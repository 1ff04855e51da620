// Package broadcast carries "state-changed" notifications between kiosk
// processes attached to the same device store.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrClosed is returned when publishing on or subscribing to a closed channel.
var ErrClosed = errors.New("broadcast: channel closed")

// Message is one state-changed notification. Source identifies the
// publishing process so listeners can skip their own messages.
type Message struct {
	Source string          `json:"origin"`
	State  json.RawMessage `json:"state"`
}

// Channel publishes and fans out state-changed messages.
type Channel interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription delivers messages until closed. Messages is closed once the
// subscription ends.
type Subscription interface {
	Messages() <-chan Message
	Close() error
}

const defaultBuffer = 16

func bufferSize(n int) int {
	if n <= 0 {
		return defaultBuffer
	}
	return n
}

// offer enqueues msg, discarding the oldest pending message when ch is full
// so a slow reader always ends up with the latest state.
func offer(ch chan Message, msg Message) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
