package publisher

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mediapub/internal/core/domain"
	"mediapub/internal/core/ports"

	"go.uber.org/zap"
)

const defaultStatsInterval = 5 * time.Second

// Metrics receives operational samples from the dispatch path. All methods
// must be cheap and must never block; a nil Metrics disables sampling.
type Metrics interface {
	SetQueueDepths(app string, video, audio, incoming int)
	SetActiveStreams(app string, count int)
	FrameDispatched(app string, media domain.MediaType)
	PacketDispatched(app string)
	DispatchDropped(app string, media domain.MediaType)
}

// Application is the per-application dispatch engine. Router and transport
// goroutines feed its three queues; a single worker goroutine drains them
// and hands media and client packets to the stream layer. Producers never
// block on stream-specific work.
type Application struct {
	name          string
	workerCount   int
	statsInterval time.Duration

	factory  ports.StreamFactory
	registry *streamRegistry

	videoQueue    frameQueue
	audioQueue    frameQueue
	incomingQueue packetQueue
	wake          *wakeSignal

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}

	// Last-seen presentation timestamps in milliseconds, diagnostic only.
	lastVideoTSMs atomic.Int64
	lastAudioTSMs atomic.Int64

	logger  *zap.Logger
	metrics Metrics
}

// NewApplication builds an application around the given protocol-specific
// stream factory. workerCount is the thread-count hint passed through to
// stream construction; statsInterval <= 0 selects the 5s default.
func NewApplication(name string, workerCount int, statsInterval time.Duration, factory ports.StreamFactory, logger *zap.Logger, metrics Metrics) *Application {
	if statsInterval <= 0 {
		statsInterval = defaultStatsInterval
	}
	return &Application{
		name:          name,
		workerCount:   workerCount,
		statsInterval: statsInterval,
		factory:       factory,
		registry:      newStreamRegistry(),
		wake:          newWakeSignal(),
		logger:        logger.With(zap.String("app", name)),
		metrics:       metrics,
	}
}

func (a *Application) Name() string { return a.name }

// Start spawns the worker goroutine. Single-use per lifecycle: starting an
// already-running application is a caller contract violation and fails.
func (a *Application) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return domain.ErrApplicationRunning
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	a.running = true
	go a.workerLoop(a.stopCh, a.done)

	a.logger.Info("application started")
	return nil
}

// Stop is idempotent. The first call sets the stop flag, wakes the worker
// so it exits even with empty queues, and blocks until it has fully
// returned. Residual queued items are discarded, not drained.
func (a *Application) Stop() error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	stopCh, done := a.stopCh, a.done
	a.mu.Unlock()

	close(stopCh)
	a.wake.notify()
	<-done

	a.logger.Info("application stopped")
	return nil
}

// Running reports whether the worker goroutine is live.
func (a *Application) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// OnCreateStream invokes the stream factory with the configured worker-count
// hint and registers the result. Runs on the caller's (router's) goroutine.
// On factory failure the registry is left unmodified.
func (a *Application) OnCreateStream(info *domain.StreamInfo) error {
	stream, err := a.factory.CreateStream(info, a.workerCount)
	if err != nil {
		return fmt.Errorf("create stream %q: %w", info.Name, err)
	}

	a.registry.register(info.ID, stream)
	a.logger.Info("stream registered",
		zap.Uint32("stream_id", uint32(info.ID)),
		zap.String("stream", string(info.Name)))
	return nil
}

// OnDeleteStream unregisters and tears down a stream. The teardown hook
// runs without the registry lock held, since it may reenter the registry;
// the entry is erased only after the hook succeeds, then the stream is
// stopped.
func (a *Application) OnDeleteStream(info *domain.StreamInfo) error {
	stream := a.registry.get(info.ID)
	if stream == nil {
		a.logger.Error("delete of unknown stream",
			zap.Uint32("stream_id", uint32(info.ID)),
			zap.String("stream", string(info.Name)))
		return domain.ErrStreamNotFound
	}

	if err := a.factory.DeleteStream(info); err != nil {
		return fmt.Errorf("delete stream %q: %w", info.Name, err)
	}

	a.registry.unregister(info.ID)
	if err := stream.Stop(); err != nil {
		a.logger.Warn("stream stop failed",
			zap.Uint32("stream_id", uint32(info.ID)), zap.Error(err))
	}

	a.logger.Info("stream unregistered",
		zap.Uint32("stream_id", uint32(info.ID)),
		zap.String("stream", string(info.Name)))
	return nil
}

// OnSendVideoFrame enqueues a video frame for asynchronous delivery. Called
// by router goroutines; never blocks beyond the queue lock hold time.
func (a *Application) OnSendVideoFrame(stream *domain.StreamInfo, packet *domain.MediaPacket) error {
	a.videoQueue.push(frameEnvelope{stream: stream, packet: packet})
	if track := stream.GetTrack(packet.TrackID); track != nil {
		a.lastVideoTSMs.Store(int64(float64(packet.PTS) * track.TimeBase.Expr() * 1000))
	}
	a.wake.notify()
	return nil
}

// OnSendAudioFrame enqueues an audio frame for asynchronous delivery.
func (a *Application) OnSendAudioFrame(stream *domain.StreamInfo, packet *domain.MediaPacket) error {
	a.audioQueue.push(frameEnvelope{stream: stream, packet: packet})
	if track := stream.GetTrack(packet.TrackID); track != nil {
		a.lastAudioTSMs.Store(int64(float64(packet.PTS) * track.TimeBase.Expr() * 1000))
	}
	a.wake.notify()
	return nil
}

// PushIncomingPacket enqueues one inbound client packet. Called by
// transport/session goroutines.
func (a *Application) PushIncomingPacket(session ports.Session, data []byte) error {
	a.incomingQueue.push(packetEnvelope{session: session, data: data})
	a.wake.notify()
	return nil
}

// GetStream returns the registered stream for an id, or nil when unknown.
func (a *Application) GetStream(id domain.StreamID) ports.Stream {
	return a.registry.get(id)
}

// GetStreamByName returns the registered stream for a name, or nil.
func (a *Application) GetStreamByName(name domain.StreamName) ports.Stream {
	return a.registry.getByName(name)
}

// Streams returns a snapshot of all registered streams.
func (a *Application) Streams() []ports.Stream {
	return a.registry.list()
}

// workerLoop is the sole consumer of the three queues. Each iteration pops
// at most one envelope per queue, which bounds per-iteration latency and
// round-robins across queues under bursty load. Residual backlog is
// re-checked before blocking so a non-empty queue never waits for an
// unrelated signal.
func (a *Application) workerLoop(stopCh, done chan struct{}) {
	defer close(done)

	lastStats := time.Now()

	for {
		if time.Since(lastStats) >= a.statsInterval {
			a.sampleStats()
			lastStats = time.Now()
		}

		if !a.backlog() {
			select {
			case <-a.wake.wait():
			case <-stopCh:
				return
			}
		}

		select {
		case <-stopCh:
			return
		default:
		}

		if env, ok := a.videoQueue.pop(); ok && env.stream != nil && env.packet != nil {
			a.sendVideoFrame(env.stream, env.packet)
		}

		if env, ok := a.audioQueue.pop(); ok && env.stream != nil && env.packet != nil {
			a.sendAudioFrame(env.stream, env.packet)
		}

		if env, ok := a.incomingQueue.pop(); ok && env.session != nil {
			a.onPacketReceived(env.session, env.data)
		}
	}
}

func (a *Application) backlog() bool {
	return a.videoQueue.depth() > 0 || a.audioQueue.depth() > 0 || a.incomingQueue.depth() > 0
}

// sendVideoFrame resolves the target stream at dispatch time. A lookup miss
// means the stream was torn down after the frame was enqueued; the frame is
// dropped silently.
func (a *Application) sendVideoFrame(info *domain.StreamInfo, packet *domain.MediaPacket) {
	stream := a.registry.get(info.ID)
	if stream == nil {
		a.logger.Debug("video frame for removed stream dropped",
			zap.Uint32("stream_id", uint32(info.ID)))
		if a.metrics != nil {
			a.metrics.DispatchDropped(a.name, domain.MediaTypeVideo)
		}
		return
	}

	stream.SendVideoFrame(packet)
	if a.metrics != nil {
		a.metrics.FrameDispatched(a.name, domain.MediaTypeVideo)
	}
}

func (a *Application) sendAudioFrame(info *domain.StreamInfo, packet *domain.MediaPacket) {
	stream := a.registry.get(info.ID)
	if stream == nil {
		a.logger.Debug("audio frame for removed stream dropped",
			zap.Uint32("stream_id", uint32(info.ID)))
		if a.metrics != nil {
			a.metrics.DispatchDropped(a.name, domain.MediaTypeAudio)
		}
		return
	}

	stream.SendAudioFrame(packet)
	if a.metrics != nil {
		a.metrics.FrameDispatched(a.name, domain.MediaTypeAudio)
	}
}

// onPacketReceived goes straight to the session; inbound client packets are
// point-to-point, the registry is only for broadcast-addressed media.
func (a *Application) onPacketReceived(session ports.Session, data []byte) {
	if err := session.OnPacketReceived(session.Info(), data); err != nil {
		a.logger.Warn("session packet handling failed", zap.Error(err))
		return
	}
	if a.metrics != nil {
		a.metrics.PacketDispatched(a.name)
	}
}
