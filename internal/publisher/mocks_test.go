package publisher

import (
	"sync"

	"mediapub/internal/core/domain"
	"mediapub/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockStreamFactory struct {
	mock.Mock
}

func (m *MockStreamFactory) CreateStream(info *domain.StreamInfo, workerCount int) (ports.Stream, error) {
	args := m.Called(info, workerCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Stream), args.Error(1)
}

func (m *MockStreamFactory) DeleteStream(info *domain.StreamInfo) error {
	args := m.Called(info)
	return args.Error(0)
}

// recordingStream captures dispatched frames for order assertions.
type recordingStream struct {
	info *domain.StreamInfo

	mu      sync.Mutex
	video   []*domain.MediaPacket
	audio   []*domain.MediaPacket
	stopped bool
}

func newRecordingStream(info *domain.StreamInfo) *recordingStream {
	return &recordingStream{info: info}
}

func (s *recordingStream) Info() *domain.StreamInfo { return s.info }

func (s *recordingStream) SendVideoFrame(packet *domain.MediaPacket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video = append(s.video, packet)
}

func (s *recordingStream) SendAudioFrame(packet *domain.MediaPacket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = append(s.audio, packet)
}

func (s *recordingStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *recordingStream) videoPTS() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	pts := make([]int64, len(s.video))
	for i, p := range s.video {
		pts[i] = p.PTS
	}
	return pts
}

func (s *recordingStream) audioPTS() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	pts := make([]int64, len(s.audio))
	for i, p := range s.audio {
		pts[i] = p.PTS
	}
	return pts
}

func (s *recordingStream) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// fakeFactory hands out recording streams and remembers construction hints.
type fakeFactory struct {
	mu              sync.Mutex
	created         map[domain.StreamID]*recordingStream
	lastWorkerCount int
	deleteErr       error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{created: make(map[domain.StreamID]*recordingStream)}
}

func (f *fakeFactory) CreateStream(info *domain.StreamInfo, workerCount int) (ports.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stream := newRecordingStream(info)
	f.created[info.ID] = stream
	f.lastWorkerCount = workerCount
	return stream, nil
}

func (f *fakeFactory) DeleteStream(info *domain.StreamInfo) error {
	return f.deleteErr
}

func (f *fakeFactory) stream(id domain.StreamID) *recordingStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[id]
}

// recordingSession captures packets delivered by the worker.
type recordingSession struct {
	info *domain.SessionInfo

	mu      sync.Mutex
	packets [][]byte
}

func newRecordingSession(id domain.SessionID) *recordingSession {
	return &recordingSession{info: &domain.SessionInfo{ID: id}}
}

func (s *recordingSession) Info() *domain.SessionInfo { return s.info }

func (s *recordingSession) OnPacketReceived(_ *domain.SessionInfo, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets = append(s.packets, data)
	return nil
}

func (s *recordingSession) received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.packets))
	copy(out, s.packets)
	return out
}
