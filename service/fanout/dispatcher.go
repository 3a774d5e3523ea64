package fanout

import (
	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/strandchat/strand/bus"
	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/service/presence"
	"github.com/strandchat/strand/service/ws"
)

// Streamer 配信先のWebSocketストリーマー
type Streamer interface {
	// WriteMessage 条件に該当するセッションにフレームを書き込みます
	WriteMessage(t string, body interface{}, targetFunc ws.TargetFunc)
}

// Repository ディスパッチャーが必要とする永続層
type Repository interface {
	// GetChannelConnections 対象チャンネルの有効なメンバーが持つ、
	// 指定インスタンス上の接続IDを取得します
	GetChannelConnections(channelID, serverID uuid.UUID) ([]string, error)
}

// Dispatcher イベントバスから受けたイベントをこのインスタンスの
// セッションに振り分けます
type Dispatcher struct {
	serverID uuid.UUID
	repo     Repository
	streamer Streamer
	presence *presence.Aggregator
	logger   *zap.Logger
}

// NewDispatcher ディスパッチャーを生成し、バスの購読を開始します
func NewDispatcher(serverID uuid.UUID, repo Repository, streamer Streamer, p *presence.Aggregator, b bus.Bus, logger *zap.Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		serverID: serverID,
		repo:     repo,
		streamer: streamer,
		presence: p,
		logger:   logger.Named("fanout"),
	}
	if err := b.Subscribe(d.handleEvent); err != nil {
		return nil, err
	}
	return d, nil
}

// handleEvent 購読ループから同期的に呼ばれる。
// ここを抜けるまで次のイベントは処理されないため、
// チャンネル内のイベント順序がセッションの送信バッファまで保たれる
func (d *Dispatcher) handleEvent(ev *event.Envelope) {
	h, ok := handlerMap[ev.Type]
	if ok {
		h(d, ev)
	}
}
