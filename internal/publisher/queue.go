package publisher

import (
	"sync"

	"mediapub/internal/core/domain"
	"mediapub/internal/core/ports"
)

// frameEnvelope pairs a submitted media packet with the stream info it was
// addressed to. Envelopes are immutable once enqueued; the payload is shared
// with the producer, which may keep its own reference.
type frameEnvelope struct {
	stream *domain.StreamInfo
	packet *domain.MediaPacket
}

// packetEnvelope carries one inbound client packet together with its
// originating session, so dispatch never has to resolve it via the registry.
type packetEnvelope struct {
	session ports.Session
	data    []byte
}

// frameQueue is an unbounded FIFO fed by router threads and drained by the
// application's worker goroutine. Unbounded is deliberate: producers must
// never block beyond the lock hold time, and the stats sampler plus the
// queue-depth gauges are the operational guard against a slow consumer.
type frameQueue struct {
	mu    sync.Mutex
	items []frameEnvelope
}

func (q *frameQueue) push(env frameEnvelope) {
	q.mu.Lock()
	q.items = append(q.items, env)
	q.mu.Unlock()
}

// pop removes and returns the oldest envelope, if any.
func (q *frameQueue) pop() (frameEnvelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return frameEnvelope{}, false
	}

	env := q.items[0]
	q.items[0] = frameEnvelope{}
	q.items = q.items[1:]
	return env, true
}

func (q *frameQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type packetQueue struct {
	mu    sync.Mutex
	items []packetEnvelope
}

func (q *packetQueue) push(env packetEnvelope) {
	q.mu.Lock()
	q.items = append(q.items, env)
	q.mu.Unlock()
}

func (q *packetQueue) pop() (packetEnvelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return packetEnvelope{}, false
	}

	env := q.items[0]
	q.items[0] = packetEnvelope{}
	q.items = q.items[1:]
	return env, true
}

func (q *packetQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// wakeSignal wakes the worker when any queue receives an item or when stop
// is requested. It carries no payload, coalesces redundant notifies, and
// spurious wakeups are fine: the worker re-checks queue state after waking.
type wakeSignal struct {
	ch chan struct{}
}

func newWakeSignal() *wakeSignal {
	return &wakeSignal{ch: make(chan struct{}, 1)}
}

func (w *wakeSignal) notify() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

func (w *wakeSignal) wait() <-chan struct{} {
	return w.ch
}
