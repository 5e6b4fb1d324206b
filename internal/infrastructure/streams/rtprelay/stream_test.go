package rtprelay

import (
	"sync"
	"testing"
	"time"

	"mediapub/internal/core/domain"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSubscriber struct {
	id string

	mu      sync.Mutex
	packets []*rtp.Packet
}

func (s *recordingSubscriber) ID() string { return s.id }

func (s *recordingSubscriber) WriteRTP(packet *rtp.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets = append(s.packets, packet)
	return nil
}

func (s *recordingSubscriber) received() []*rtp.Packet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*rtp.Packet, len(s.packets))
	copy(out, s.packets)
	return out
}

func relayInfo(id domain.StreamID) *domain.StreamInfo {
	return &domain.StreamInfo{
		ID:   id,
		Name: "camera",
		Tracks: map[domain.TrackID]*domain.Track{
			1: {ID: 1, Type: domain.MediaTypeVideo, Codec: "h264", TimeBase: domain.TimeBase{Num: 1, Den: 90000}},
		},
	}
}

func TestFactoryCreateAndDelete(t *testing.T) {
	f := NewFactory(zap.NewNop())
	info := relayInfo(1)

	stream, err := f.CreateStream(info, 1)
	require.NoError(t, err)
	require.NotNil(t, stream)
	defer stream.Stop()

	_, err = f.CreateStream(info, 1)
	assert.ErrorIs(t, err, domain.ErrStreamExists)

	relay, ok := f.Get(1)
	require.True(t, ok)
	assert.Equal(t, stream, relay)

	require.NoError(t, f.DeleteStream(info))
	_, ok = f.Get(1)
	assert.False(t, ok)

	assert.ErrorIs(t, f.DeleteStream(info), domain.ErrStreamNotFound)
}

func TestRelayFansOutRTP(t *testing.T) {
	f := NewFactory(zap.NewNop())
	info := relayInfo(1)

	stream, err := f.CreateStream(info, 2)
	require.NoError(t, err)
	defer stream.Stop()

	relay, _ := f.Get(1)
	sub := &recordingSubscriber{id: "viewer-1"}
	relay.Attach(sub)

	payload := []byte{0x00, 0x01, 0x02}
	stream.SendVideoFrame(&domain.MediaPacket{TrackID: 1, PTS: 90000, KeyFrame: true, Payload: payload})

	require.Eventually(t, func() bool {
		return len(sub.received()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	pkt := sub.received()[0]
	assert.Equal(t, uint8(videoPayloadType), pkt.PayloadType)
	assert.Equal(t, uint32(90000), pkt.Timestamp)
	assert.True(t, pkt.Marker, "key frames set the marker bit")
	assert.Equal(t, payload, pkt.Payload)
}

func TestRelayVideoAndAudioUseDistinctSSRCs(t *testing.T) {
	f := NewFactory(zap.NewNop())
	info := relayInfo(3)

	stream, err := f.CreateStream(info, 1)
	require.NoError(t, err)
	defer stream.Stop()

	relay, _ := f.Get(3)
	sub := &recordingSubscriber{id: "viewer-1"}
	relay.Attach(sub)

	stream.SendVideoFrame(&domain.MediaPacket{TrackID: 1, PTS: 1})
	stream.SendAudioFrame(&domain.MediaPacket{TrackID: 1, PTS: 1})

	require.Eventually(t, func() bool {
		return len(sub.received()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	got := sub.received()
	assert.NotEqual(t, got[0].SSRC, got[1].SSRC)
}

func TestRelayDetachStopsDelivery(t *testing.T) {
	f := NewFactory(zap.NewNop())
	info := relayInfo(1)

	stream, err := f.CreateStream(info, 1)
	require.NoError(t, err)
	defer stream.Stop()

	relay, _ := f.Get(1)
	sub := &recordingSubscriber{id: "viewer-1"}
	relay.Attach(sub)
	relay.Detach("viewer-1")

	stream.SendVideoFrame(&domain.MediaPacket{TrackID: 1, PTS: 1})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sub.received())
}

func TestRelayStopIsIdempotent(t *testing.T) {
	f := NewFactory(zap.NewNop())
	stream, err := f.CreateStream(relayInfo(1), 4)
	require.NoError(t, err)

	require.NoError(t, stream.Stop())
	require.NoError(t, stream.Stop())
}
