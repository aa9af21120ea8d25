// Package framechan provides the ordered handoff between the capture loop and
// the encoder worker.
package framechan

import (
	"context"
	"errors"
	"sync"

	"github.com/user/webrec/pkg/pipeline"
)

var (
	// ErrClosed is returned by Receive once the channel is closed and drained,
	// and by Send after Close.
	ErrClosed = errors.New("framechan: closed")
)

// Channel is an unbounded FIFO for a single producer and a single consumer.
// Send never blocks; Receive blocks until a message is queued, the channel is
// closed, or the context ends.
type Channel struct {
	mu     sync.Mutex
	queue  []pipeline.Message
	closed bool
	ready  chan struct{} // holds at most one wakeup token
}

// New creates an empty channel.
func New() *Channel {
	return &Channel{
		ready: make(chan struct{}, 1),
	}
}

// Send appends msg to the queue. The caller must not touch msg.Frame.Payload
// afterwards.
func (c *Channel) Send(msg pipeline.Message) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.queue = append(c.queue, msg)
	c.mu.Unlock()
	c.wake()
	return nil
}

// Receive returns the oldest queued message. Messages queued before Close are
// still delivered; after that Receive returns ErrClosed.
func (c *Channel) Receive(ctx context.Context) (pipeline.Message, error) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			msg := c.queue[0]
			c.queue[0] = pipeline.Message{}
			c.queue = c.queue[1:]
			if len(c.queue) == 0 {
				c.queue = nil
			}
			c.mu.Unlock()
			return msg, nil
		}
		if c.closed {
			c.mu.Unlock()
			return pipeline.Message{}, ErrClosed
		}
		c.mu.Unlock()

		select {
		case <-c.ready:
		case <-ctx.Done():
			return pipeline.Message{}, ctx.Err()
		}
	}
}

// Close marks the channel closed and wakes a blocked receiver. Closing twice
// is a no-op.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wake()
}

// Len returns the number of queued messages.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Channel) wake() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}
