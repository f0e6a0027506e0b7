// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package kick

import (
	"sync"

	"github.com/ezrec/vurec/memory"
)

// DEFAULT_DEPTH is the number of packet buffers of a queue.
const DEFAULT_DEPTH = 8

// Packet is one XGKICK transfer.
type Packet struct {
	Qword uint32 // Start quadword in unit 1 data memory.
	Data  []byte // Packet bytes, in transfer order.

	buffer []byte
}

// Qwords returns the packet length in quadwords.
func (p Packet) Qwords() int {
	return len(p.Data) / memory.QWORD
}

// Stats counts the traffic through a queue.
type Stats struct {
	Packets int
	Qwords  int
}

// Queue is a single producer, single consumer hand-off of packets. Every
// buffer is sized for a whole window up front, so the producer only
// blocks when the consumer holds all of them.
type Queue struct {
	free  chan []byte
	ready chan Packet

	mutex  sync.Mutex
	depth  int
	closed bool
	stats  Stats
}

// NewQueue allocates a queue with depth packet buffers.
func NewQueue(depth int) (q *Queue, err error) {
	if depth < 1 {
		err = ErrQueueDepth
		return
	}

	q = &Queue{
		free:  make(chan []byte, depth),
		ready: make(chan Packet, depth),
		depth: depth,
	}
	for range depth {
		q.free <- make([]byte, memory.VU1_MEM_SIZE)
	}
	return
}

// Kick sizes the packet at qword of data and queues a copy of it. Kicks
// after Close are dropped.
func (q *Queue) Kick(data []byte, qword uint32) {
	if q.isClosed() {
		return
	}

	qwords := Size(data, qword)
	buffer := <-q.free
	n := Copy(buffer, data, qword, qwords)

	// ready holds every buffer, so the send never blocks under the lock.
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed {
		q.free <- buffer
		return
	}
	q.stats.Packets++
	q.stats.Qwords += qwords
	q.ready <- Packet{Qword: qword, Data: buffer[:n], buffer: buffer}
}

// Packets returns the channel the consumer receives from. It is closed by
// Close.
func (q *Queue) Packets() <-chan Packet {
	return q.ready
}

// Done returns a packet's buffer to the queue.
func (q *Queue) Done(p Packet) {
	q.free <- p.buffer
}

// Sync waits until the consumer has returned every buffer.
func (q *Queue) Sync() {
	held := make([][]byte, 0, q.depth)
	for range q.depth {
		held = append(held, <-q.free)
	}
	for _, buffer := range held {
		q.free <- buffer
	}
}

// Stats returns the traffic so far.
func (q *Queue) Stats() Stats {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.stats
}

func (q *Queue) isClosed() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.closed
}

// Close stops the queue. The consumer drains what was already queued.
func (q *Queue) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ready)
}
