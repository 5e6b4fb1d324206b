package publisher

import (
	"go.uber.org/zap"
)

// QueueStats is a point-in-time snapshot of an application's dispatch state,
// served by the control API.
type QueueStats struct {
	App           string `json:"app"`
	Running       bool   `json:"running"`
	Streams       int    `json:"streams"`
	VideoQueue    int    `json:"video_queue"`
	AudioQueue    int    `json:"audio_queue"`
	IncomingQueue int    `json:"incoming_queue"`
	LastVideoTSMs int64  `json:"last_video_ts_ms"`
	LastAudioTSMs int64  `json:"last_audio_ts_ms"`
}

// Stats snapshots queue depths and timestamps. Safe from any goroutine.
func (a *Application) Stats() QueueStats {
	return QueueStats{
		App:           a.name,
		Running:       a.Running(),
		Streams:       a.registry.count(),
		VideoQueue:    a.videoQueue.depth(),
		AudioQueue:    a.audioQueue.depth(),
		IncomingQueue: a.incomingQueue.depth(),
		LastVideoTSMs: a.lastVideoTSMs.Load(),
		LastAudioTSMs: a.lastAudioTSMs.Load(),
	}
}

// sampleStats runs on the worker goroutine every statsInterval. It only
// observes the queues; logging or metrics failures never reach dispatch.
func (a *Application) sampleStats() {
	video := a.videoQueue.depth()
	audio := a.audioQueue.depth()
	incoming := a.incomingQueue.depth()
	streams := a.registry.count()

	a.logger.Info("publisher queue stats",
		zap.Int("video_queue", video),
		zap.Int("audio_queue", audio),
		zap.Int("incoming_queue", incoming),
		zap.Int("streams", streams))

	if a.metrics != nil {
		a.metrics.SetQueueDepths(a.name, video, audio, incoming)
		a.metrics.SetActiveStreams(a.name, streams)
	}
}
