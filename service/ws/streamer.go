package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/strandchat/strand/bus"
	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/router/extension/ctxkey"
	"github.com/strandchat/strand/service/presence"
	"github.com/strandchat/strand/utils/random"
)

var connectedSessionsCounter = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "strand",
	Name:      "ws_sessions",
})

var onlineUsersCounter = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "strand",
	Name:      "online_users",
})

var (
	// ErrAlreadyClosed 既に閉じられています
	ErrAlreadyClosed = errors.New("already closed")
	// ErrBufferIsFull 送信バッファが溢れました
	ErrBufferIsFull = errors.New("buffer is full")
)

// Repository ストリーマーが必要とする永続層
type Repository interface {
	GetUser(id uuid.UUID) (*model.User, error)
	CreateConnection(connID string, userID, serverID uuid.UUID) error
	DeleteConnection(connID string) error
	DeleteConnectionsByServerID(serverID uuid.UUID) error
	CountUserConnections(userID uuid.UUID) (int64, error)
	SetReadCursor(channelID, userID, messageID uuid.UUID) error
}

// Streamer WebSocketストリーマー
type Streamer struct {
	serverID uuid.UUID
	repo     Repository
	bus      bus.Bus
	presence *presence.Aggregator
	logger     *zap.Logger
	sessions   map[string]*session
	userCounts map[uuid.UUID]int
	closed     bool
	mu         sync.RWMutex
}

// NewStreamer WebSocketストリーマーを生成します
func NewStreamer(serverID uuid.UUID, repo Repository, b bus.Bus, p *presence.Aggregator, logger *zap.Logger) *Streamer {
	return &Streamer{
		serverID: serverID,
		repo:     repo,
		bus:      b,
		presence: p,
		logger:     logger.Named("ws"),
		sessions:   make(map[string]*session),
		userCounts: make(map[uuid.UUID]int),
	}
}

func (s *Streamer) register(session *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.key] = session
	s.userCounts[session.userID]++
	if s.userCounts[session.userID] == 1 {
		onlineUsersCounter.Inc()
	}
}

func (s *Streamer) unregister(session *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session.key)
	s.userCounts[session.userID]--
	if s.userCounts[session.userID] <= 0 {
		delete(s.userCounts, session.userID)
		onlineUsersCounter.Dec()
	}
}

// WriteMessage 条件に該当するセッションにフレームを書き込みます
//
// 送信バッファが詰まっているセッションへのフレームは破棄する
func (s *Streamer) WriteMessage(t string, body interface{}, targetFunc TargetFunc) {
	data, err := makeServerMessage(t, body)
	if err != nil {
		s.logger.Error("failed to make server message", zap.String("type", t), zap.Error(err))
		return
	}
	m := &rawMessage{
		t:    websocket.TextMessage,
		data: data,
	}
	s.mu.RLock()
	for _, session := range s.sessions {
		if targetFunc(session) {
			if err := session.writeMessage(m); err != nil {
				if err == ErrBufferIsFull {
					s.logger.Warn("Discard a message because the session's buffer is full.",
						zap.String("type", t),
						zap.String("key", session.key),
						zap.Stringer("userID", session.userID))
					continue
				}
			}
		}
	}
	s.mu.RUnlock()
}

// ServeHTTP http.Handlerインターフェイスの実装
func (s *Streamer) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	if s.closed {
		http.Error(rw, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		s.mu.RUnlock()
		return
	}
	s.mu.RUnlock()

	userID := r.Context().Value(ctxkey.UserID).(uuid.UUID)
	user, err := s.repo.GetUser(userID)
	if err != nil {
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(rw, r, rw.Header())
	if err != nil {
		return
	}

	session := &session{
		key:      random.AlphaNumeric(connKeyLength),
		userID:   user.ID,
		username: user.Name,
		req:      r,
		conn:     conn,
		open:     true,
		streamer: s,
		send:     make(chan *rawMessage, messageBufferSize),
	}

	// レジストリに登録できなかった接続は他インスタンスから発見できないため維持できない
	if err := s.repo.CreateConnection(session.key, session.userID, s.serverID); err != nil {
		s.logger.Error("failed to register connection", zap.Error(err), zap.Stringer("userID", session.userID))
		_ = session.write(websocket.TextMessage, makeErrorMessage("failed to register connection"))
		_ = session.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""))
		conn.Close()
		return
	}

	s.register(session)
	connectedSessionsCounter.Inc()

	go session.writeLoop()

	if data, err := makeServerMessage(ServerConnected, session.userID); err == nil {
		_ = session.writeMessage(&rawMessage{t: websocket.TextMessage, data: data})
	}
	s.publishPresenceTransition(session.userID, model.PresenceOnline)

	session.readLoop()

	s.unregister(session)
	connectedSessionsCounter.Dec()
	s.presence.RemoveConnection(session.key)
	if err := s.repo.DeleteConnection(session.key); err != nil {
		s.logger.Error("failed to unregister connection", zap.Error(err), zap.String("key", session.key))
	}
	s.publishPresenceTransition(session.userID, model.PresenceOffline)
	session.close()
}

// publishPresenceTransition 導出プレゼンスが変化した場合のみイベントを発行します
//
// レジストリの接続数が0→1になった時のみonline、0になった時のみofflineを
// 発行する。手動プレゼンス設定中は導出値の変化を外に出さない
func (s *Streamer) publishPresenceTransition(userID uuid.UUID, status string) {
	user, err := s.repo.GetUser(userID)
	if err != nil {
		s.logger.Error("failed to get user", zap.Error(err), zap.Stringer("userID", userID))
		return
	}
	if user.PresenceOverride.Valid {
		return
	}

	n, err := s.repo.CountUserConnections(userID)
	if err != nil {
		s.logger.Error("failed to count user connections", zap.Error(err), zap.Stringer("userID", userID))
		return
	}
	switch status {
	case model.PresenceOnline:
		// 同一ユーザーの最初の2接続が登録を競うと両方がn=2を観測して
		// onlineが発行されないことがある。購読者は次の遷移か再購読の
		// スナップショットで追い付く
		if n != 1 {
			return
		}
	case model.PresenceOffline:
		if n != 0 {
			return
		}
	}

	ev := &event.Envelope{
		Type: event.Presence,
		Body: &event.PresenceBody{
			UserID:   user.ID,
			Username: user.Name,
			Status:   status,
		},
	}
	if err := s.bus.Publish(context.Background(), ev); err != nil {
		s.logger.Error("failed to publish presence event", zap.Error(err), zap.Stringer("userID", userID))
	}
}

// Close 全セッションを切断し、ストリーマーを停止します
func (s *Streamer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrAlreadyClosed
	}
	s.closed = true

	m := &rawMessage{
		t:    websocket.CloseMessage,
		data: websocket.FormatCloseMessage(websocket.CloseServiceRestart, "Server is stopping..."),
	}
	// 各セッションの後始末はそれぞれのServeHTTPの終了側で行われる
	for _, session := range s.sessions {
		_ = session.writeMessage(m)
		session.close()
	}
	s.mu.Unlock()

	// このインスタンスの登録をまとめて消す。再起動後に残骸が残らないように
	return s.repo.DeleteConnectionsByServerID(s.serverID)
}
