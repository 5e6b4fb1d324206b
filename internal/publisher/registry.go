package publisher

import (
	"sync"

	"mediapub/internal/core/domain"
	"mediapub/internal/core/ports"
)

// streamRegistry maps stream ids to live stream instances for one
// application. Mutations are exclusive; lookups run concurrently. An id
// present here refers to a stream whose creation hook has completed and
// whose deletion hook has not.
type streamRegistry struct {
	mu      sync.RWMutex
	streams map[domain.StreamID]ports.Stream
}

func newStreamRegistry() *streamRegistry {
	return &streamRegistry{
		streams: make(map[domain.StreamID]ports.Stream),
	}
}

func (r *streamRegistry) register(id domain.StreamID, stream ports.Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[id] = stream
}

func (r *streamRegistry) unregister(id domain.StreamID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, id)
}

// get returns nil when the id is unknown; a miss is not an error at this
// level because dispatch races benignly with stream deletion.
func (r *streamRegistry) get(id domain.StreamID) ports.Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streams[id]
}

// getByName scans all entries. Registries stay small (tens of streams per
// application), so a linear scan beats maintaining a second index.
func (r *streamRegistry) getByName(name domain.StreamName) ports.Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stream := range r.streams {
		if stream.Info().Name == name {
			return stream
		}
	}
	return nil
}

func (r *streamRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams)
}

func (r *streamRegistry) list() []ports.Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	streams := make([]ports.Stream, 0, len(r.streams))
	for _, stream := range r.streams {
		streams = append(streams, stream)
	}
	return streams
}
