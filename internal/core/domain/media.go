package domain

// MediaType discriminates the two frame queues an Application maintains.
type MediaType int

const (
	MediaTypeVideo MediaType = iota
	MediaTypeAudio
)

func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// TimeBase is the rational clock unit of a track (e.g. 1/90000 for video).
type TimeBase struct {
	Num int
	Den int
}

// Expr returns the time base as seconds per tick.
func (t TimeBase) Expr() float64 {
	if t.Den == 0 {
		return 0
	}
	return float64(t.Num) / float64(t.Den)
}

type TrackID uint8

// Track describes one elementary stream within a published stream.
type Track struct {
	ID       TrackID
	Type     MediaType
	Codec    string
	TimeBase TimeBase
}

// MediaPacket is an opaque media frame handed over by the router.
// Payload ownership is shared: producers may keep their reference after
// submitting, so a packet must not be mutated once enqueued.
type MediaPacket struct {
	TrackID  TrackID
	PTS      int64
	DTS      int64
	KeyFrame bool
	Payload  []byte
}
