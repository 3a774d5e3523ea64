package bus

import (
	"context"
	"sync"

	"github.com/leandro-lugaresi/hub"
	"go.uber.org/zap"

	"github.com/strandchat/strand/event"
)

// Local 単一プロセス用のインメモリBus実装
//
// 外部のpub/subを介さずイベントを配送する。単一ノード構成とテストで使用する
type Local struct {
	hub        *hub.Hub
	logger     *zap.Logger
	sub        hub.Subscription
	subscribed bool
	closed     bool
	mu         sync.Mutex
	done       chan struct{}
}

// NewLocal インメモリBusを生成します
func NewLocal(h *hub.Hub, logger *zap.Logger) *Local {
	return &Local{
		hub:    h,
		logger: logger.Named("bus"),
		done:   make(chan struct{}),
	}
}

// Publish implements Bus interface.
func (b *Local) Publish(_ context.Context, ev *event.Envelope) error {
	b.hub.Publish(hub.Message{
		Name:   ev.Type,
		Fields: hub.Fields{"event": ev},
	})
	return nil
}

// Subscribe implements Bus interface.
func (b *Local) Subscribe(h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrAlreadyClosed
	}
	if b.subscribed {
		// 購読済みの場合は何もしない
		return nil
	}
	b.subscribed = true

	b.sub = b.hub.Subscribe(200, event.Topics()...)
	go func() {
		defer close(b.done)
		for msg := range b.sub.Receiver {
			ev, ok := msg.Fields["event"].(*event.Envelope)
			if !ok {
				b.logger.Warn("discarding malformed event", zap.String("topic", msg.Topic()))
				continue
			}
			h(ev)
		}
	}()
	return nil
}

// Close implements Bus interface.
func (b *Local) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrAlreadyClosed
	}
	b.closed = true

	if b.subscribed {
		b.hub.Unsubscribe(b.sub)
		<-b.done
	}
	return nil
}
