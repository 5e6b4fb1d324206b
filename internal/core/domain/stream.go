package domain

import (
	"time"
)

type StreamID uint32
type StreamName string

// StreamInfo identifies a published stream within one application and
// carries its track layout. It is what the router hands to the publisher
// on stream creation and on every submitted frame.
type StreamInfo struct {
	ID        StreamID
	Name      StreamName
	CreatedAt time.Time
	Tracks    map[TrackID]*Track
}

// GetTrack returns the track description for a packet's track id, or nil.
func (s *StreamInfo) GetTrack(id TrackID) *Track {
	if s == nil {
		return nil
	}
	return s.Tracks[id]
}
