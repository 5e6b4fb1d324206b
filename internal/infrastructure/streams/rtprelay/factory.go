// Package rtprelay is a reference protocol implementation behind the
// publisher's stream interface: it repackages submitted media frames as RTP
// and fans them out to attached subscribers.
package rtprelay

import (
	"sync"

	"mediapub/internal/core/domain"
	"mediapub/internal/core/ports"

	"go.uber.org/zap"
)

// Factory creates and tears down relay streams. It implements
// ports.StreamFactory; the publisher invokes DeleteStream before erasing
// its own registry entry, so subscribers are detached while the stream is
// still registered.
type Factory struct {
	logger *zap.Logger

	mu      sync.Mutex
	streams map[domain.StreamID]*Stream
}

func NewFactory(logger *zap.Logger) *Factory {
	return &Factory{
		logger:  logger,
		streams: make(map[domain.StreamID]*Stream),
	}
}

func (f *Factory) CreateStream(info *domain.StreamInfo, workerCount int) (ports.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.streams[info.ID]; exists {
		return nil, domain.ErrStreamExists
	}

	stream := newStream(info, workerCount, f.logger)
	f.streams[info.ID] = stream
	return stream, nil
}

func (f *Factory) DeleteStream(info *domain.StreamInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stream, ok := f.streams[info.ID]
	if !ok {
		return domain.ErrStreamNotFound
	}

	stream.detachAll()
	delete(f.streams, info.ID)
	return nil
}

// Get returns a live relay stream for subscriber attachment.
func (f *Factory) Get(id domain.StreamID) (*Stream, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stream, ok := f.streams[id]
	return stream, ok
}
