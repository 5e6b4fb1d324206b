package ports

import (
	"mediapub/internal/core/domain"
)

// Stream is a per-protocol media sink for one published stream. Send calls
// are fire-and-forget from the publisher's point of view and must return in
// bounded time, since they run on the application's single worker goroutine.
type Stream interface {
	Info() *domain.StreamInfo
	SendVideoFrame(packet *domain.MediaPacket)
	SendAudioFrame(packet *domain.MediaPacket)
	Stop() error
}

// Session is one client connection context. Inbound client packets are
// delivered here directly, bypassing the stream registry.
type Session interface {
	Info() *domain.SessionInfo
	OnPacketReceived(info *domain.SessionInfo, data []byte) error
}

// StreamFactory is the protocol-specific stream lifecycle collaborator.
// CreateStream receives the application's configured worker-count hint.
// DeleteStream is the teardown hook invoked before the registry entry is
// erased; it runs without the registry lock held, so it may look streams
// up or coordinate with sessions reentrantly.
type StreamFactory interface {
	CreateStream(info *domain.StreamInfo, workerCount int) (Stream, error)
	DeleteStream(info *domain.StreamInfo) error
}
