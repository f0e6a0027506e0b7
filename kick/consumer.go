package kick

import (
	"log"
	"sync"
)

// Handler processes one packet on the consumer goroutine. The packet data
// is only valid until the handler returns.
type Handler func(p Packet)

// Consumer drains a queue on its own goroutine.
type Consumer struct {
	Verbose bool
	Handler Handler

	queue *Queue
	wg    sync.WaitGroup
}

// NewConsumer returns a consumer of the queue. A nil handler discards
// packets.
func NewConsumer(queue *Queue, handler Handler) (c *Consumer) {
	c = &Consumer{
		Handler: handler,
		queue:   queue,
	}
	return
}

// Start runs the consumer until the queue is closed.
func (c *Consumer) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for p := range c.queue.Packets() {
			if c.Verbose {
				log.Printf("kick: packet 0x%03x (%d qwords)", p.Qword, p.Qwords())
			}
			if c.Handler != nil {
				c.Handler(p)
			}
			c.queue.Done(p)
		}
	}()
}

// Wait blocks until the consumer has drained a closed queue.
func (c *Consumer) Wait() {
	c.wg.Wait()
}
