package transport

import (
	"net/http"
	"sync"
	"time"

	"mediapub/internal/core/domain"
	"mediapub/internal/core/ports"
	"mediapub/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Application is the slice of the publisher an ingest connection needs: a
// place to push inbound client packets. The worker goroutine delivers them
// back to the session asynchronously.
type Application interface {
	PushIncomingPacket(session ports.Session, data []byte) error
}

// ApplicationResolver maps an application name from the connect URL to a
// running application.
type ApplicationResolver func(name string) (Application, bool)

// Options bound the per-connection behavior of the ingest endpoint.
type Options struct {
	ReadLimitBytes   int64
	WriteTimeout     time.Duration
	PacketsPerSecond float64
	Burst            int
}

// WebSocketIngest turns client WebSocket connections into publisher
// sessions. Each connection gets its own session identity and rate limiter;
// packets above the limit are dropped, the connection stays up.
type WebSocketIngest struct {
	resolve ApplicationResolver
	opts    Options

	mu       sync.RWMutex
	sessions map[domain.SessionID]*wsSession

	logger *zap.SugaredLogger
}

func NewWebSocketIngest(resolve ApplicationResolver, opts Options, logger *zap.Logger) *WebSocketIngest {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &WebSocketIngest{
		resolve:  resolve,
		opts:     opts,
		sessions: make(map[domain.SessionID]*wsSession),
		logger:   logger.Sugar(),
	}
}

// Handler serves "GET /ingest?app=<name>".
func (s *WebSocketIngest) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ingest", s.handleIngest)
	return mux
}

// SessionCount reports currently connected sessions.
func (s *WebSocketIngest) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *WebSocketIngest) handleIngest(w http.ResponseWriter, r *http.Request) {
	appName := r.URL.Query().Get("app")
	app, ok := s.resolve(appName)
	if !ok {
		http.Error(w, "unknown application", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	if s.opts.ReadLimitBytes > 0 {
		conn.SetReadLimit(s.opts.ReadLimitBytes)
	}

	sess := &wsSession{
		info: &domain.SessionInfo{
			ID:          domain.SessionID(utils.GenerateSessionID()),
			RemoteAddr:  conn.RemoteAddr().String(),
			ConnectedAt: time.Now(),
		},
		conn:         conn,
		writeTimeout: s.opts.WriteTimeout,
	}

	var limiter *rate.Limiter
	if s.opts.PacketsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.PacketsPerSecond), s.opts.Burst)
	}

	s.mu.Lock()
	s.sessions[sess.info.ID] = sess
	s.mu.Unlock()

	s.logger.Infow("session connected",
		"session_id", sess.info.ID, "app", appName, "remote", sess.info.RemoteAddr)

	s.readLoop(app, appName, sess, limiter)
}

func (s *WebSocketIngest) readLoop(app Application, appName string, sess *wsSession, limiter *rate.Limiter) {
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.info.ID)
		s.mu.Unlock()
		sess.conn.Close()
		s.logger.Infow("session disconnected", "session_id", sess.info.ID, "app", appName)
	}()

	for {
		msgType, data, err := sess.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage && msgType != websocket.TextMessage {
			continue
		}

		if limiter != nil && !limiter.Allow() {
			s.logger.Warnw("inbound packet rate exceeded, dropping",
				"session_id", sess.info.ID, "app", appName)
			continue
		}

		if err := app.PushIncomingPacket(sess, data); err != nil {
			s.logger.Warnw("push incoming packet failed",
				"session_id", sess.info.ID, "error", err)
		}
	}
}

// wsSession implements ports.Session over one WebSocket connection.
type wsSession struct {
	info         *domain.SessionInfo
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func (s *wsSession) Info() *domain.SessionInfo { return s.info }

// OnPacketReceived is invoked by the application worker goroutine with a
// packet addressed to this session; the transport answers on the socket.
func (s *wsSession) OnPacketReceived(_ *domain.SessionInfo, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}
