package monitoring

import (
	"mediapub/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PublisherCollector exports the dispatch engine's operational state.
// It implements publisher.Metrics.
type PublisherCollector struct {
	queueDepth    *prometheus.GaugeVec
	activeStreams *prometheus.GaugeVec

	framesDispatched  *prometheus.CounterVec
	packetsDispatched *prometheus.CounterVec
	dispatchDropped   *prometheus.CounterVec
}

func NewPublisherCollector() *PublisherCollector {
	return &PublisherCollector{
		queueDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mediapub_queue_depth",
			Help: "Current depth of an application dispatch queue",
		}, []string{"app", "queue"}),

		activeStreams: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mediapub_streams_active",
			Help: "Number of registered streams per application",
		}, []string{"app"}),

		framesDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediapub_frames_dispatched_total",
			Help: "Media frames handed to the stream layer",
		}, []string{"app", "media"}),

		packetsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediapub_packets_dispatched_total",
			Help: "Inbound client packets handed to sessions",
		}, []string{"app"}),

		dispatchDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mediapub_dispatch_dropped_total",
			Help: "Frames dropped because their stream was already removed",
		}, []string{"app", "media"}),
	}
}

func (c *PublisherCollector) SetQueueDepths(app string, video, audio, incoming int) {
	c.queueDepth.WithLabelValues(app, "video").Set(float64(video))
	c.queueDepth.WithLabelValues(app, "audio").Set(float64(audio))
	c.queueDepth.WithLabelValues(app, "incoming").Set(float64(incoming))
}

func (c *PublisherCollector) SetActiveStreams(app string, count int) {
	c.activeStreams.WithLabelValues(app).Set(float64(count))
}

func (c *PublisherCollector) FrameDispatched(app string, media domain.MediaType) {
	c.framesDispatched.WithLabelValues(app, media.String()).Inc()
}

func (c *PublisherCollector) PacketDispatched(app string) {
	c.packetsDispatched.WithLabelValues(app).Inc()
}

func (c *PublisherCollector) DispatchDropped(app string, media domain.MediaType) {
	c.dispatchDropped.WithLabelValues(app, media.String()).Inc()
}
