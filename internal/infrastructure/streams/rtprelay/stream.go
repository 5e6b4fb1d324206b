package rtprelay

import (
	"sync"

	"mediapub/internal/core/domain"

	"github.com/pion/rtp"
	"go.uber.org/zap"
)

const (
	videoPayloadType = 96
	audioPayloadType = 111

	// Bound on frames waiting for the sender pool. Unlike the publisher's
	// dispatch queues this one is bounded: a slow subscriber must not stall
	// the application worker, so excess frames are dropped here.
	sendQueueSize = 256
)

// Subscriber consumes the relay's RTP output.
type Subscriber interface {
	ID() string
	WriteRTP(packet *rtp.Packet) error
}

type outboundFrame struct {
	media  domain.MediaType
	packet *domain.MediaPacket
	seq    uint16
}

// Stream fans submitted media out to subscribers as RTP. workerCount sender
// goroutines drain a bounded queue; Send* calls never block the publisher's
// worker.
type Stream struct {
	info   *domain.StreamInfo
	logger *zap.Logger

	jobs    chan outboundFrame
	stopped chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup

	// Sequence counters are only touched from the application worker
	// goroutine, which serializes all Send* calls.
	videoSeq uint16
	audioSeq uint16

	mu   sync.RWMutex
	subs map[string]Subscriber
}

func newStream(info *domain.StreamInfo, workerCount int, logger *zap.Logger) *Stream {
	if workerCount <= 0 {
		workerCount = 1
	}

	s := &Stream{
		info:    info,
		logger:  logger.With(zap.String("stream", string(info.Name))),
		jobs:    make(chan outboundFrame, sendQueueSize),
		stopped: make(chan struct{}),
		subs:    make(map[string]Subscriber),
	}

	s.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go s.sender()
	}
	return s
}

func (s *Stream) Info() *domain.StreamInfo { return s.info }

func (s *Stream) SendVideoFrame(packet *domain.MediaPacket) {
	s.videoSeq++
	s.enqueue(outboundFrame{media: domain.MediaTypeVideo, packet: packet, seq: s.videoSeq})
}

func (s *Stream) SendAudioFrame(packet *domain.MediaPacket) {
	s.audioSeq++
	s.enqueue(outboundFrame{media: domain.MediaTypeAudio, packet: packet, seq: s.audioSeq})
}

func (s *Stream) enqueue(frame outboundFrame) {
	select {
	case s.jobs <- frame:
	case <-s.stopped:
	default:
		s.logger.Warn("relay send queue full, frame dropped",
			zap.String("media", frame.media.String()))
	}
}

// Stop tears the sender pool down. Queued frames are abandoned.
func (s *Stream) Stop() error {
	s.stop.Do(func() {
		close(s.stopped)
		s.wg.Wait()
	})
	return nil
}

// Attach registers a subscriber for this stream's RTP output.
func (s *Stream) Attach(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID()] = sub
}

func (s *Stream) Detach(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Stream) detachAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = make(map[string]Subscriber)
}

func (s *Stream) sender() {
	defer s.wg.Done()
	for {
		select {
		case frame := <-s.jobs:
			s.fanOut(frame)
		case <-s.stopped:
			return
		}
	}
}

func (s *Stream) fanOut(frame outboundFrame) {
	payloadType := uint8(videoPayloadType)
	ssrc := uint32(s.info.ID)<<1 | 1
	if frame.media == domain.MediaTypeAudio {
		payloadType = audioPayloadType
		ssrc = uint32(s.info.ID) << 1
	}

	packet := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    payloadType,
			SequenceNumber: frame.seq,
			Timestamp:      uint32(frame.packet.PTS),
			SSRC:           ssrc,
			Marker:         frame.packet.KeyFrame,
		},
		Payload: frame.packet.Payload,
	}

	s.mu.RLock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.WriteRTP(packet); err != nil {
			s.logger.Debug("subscriber write failed",
				zap.String("subscriber", sub.ID()), zap.Error(err))
		}
	}
}
