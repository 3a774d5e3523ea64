package bus

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/strandchat/strand/event"
)

const channelPrefix = "strand:event:"

// Redis Redis pub/subによるBus実装
type Redis struct {
	client     *redis.Client
	logger     *zap.Logger
	pubsub     *redis.PubSub
	cancel     context.CancelFunc
	subscribed bool
	closed     bool
	mu         sync.Mutex
	done       chan struct{}
}

// NewRedis Redis Busを生成します
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{
		client: client,
		logger: logger.Named("bus"),
		done:   make(chan struct{}),
	}
}

// Publish implements Bus interface.
func (b *Redis) Publish(ctx context.Context, ev *event.Envelope) error {
	data, err := ev.Encode()
	if err != nil {
		b.logger.Error("failed to encode event", zap.String("type", ev.Type), zap.Error(err))
		return err
	}
	if err := b.client.Publish(ctx, channelPrefix+ev.Type, data).Err(); err != nil {
		b.logger.Error("failed to publish event", zap.String("type", ev.Type), zap.Error(err))
		return err
	}
	return nil
}

// Subscribe implements Bus interface.
func (b *Redis) Subscribe(h Handler) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	channels := make([]string, 0, len(event.Topics()))
	for _, t := range event.Topics() {
		channels = append(channels, channelPrefix+t)
	}
	b.pubsub = b.client.Subscribe(ctx, channels...)

	go b.receiveLoop(b.pubsub, h)
	return nil
}

func (b *Redis) receiveLoop(pubsub *redis.PubSub, h Handler) {
	defer close(b.done)
	for msg := range pubsub.Channel() {
		ev, err := event.Decode([]byte(msg.Payload))
		if err != nil {
			b.logger.Warn("discarding undecodable event", zap.String("channel", msg.Channel), zap.Error(err))
			continue
		}
		// チャンネル内の順序を保つため同期呼び出し
		h(ev)
	}
}

// Close implements Bus interface.
func (b *Redis) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrAlreadyClosed
	}
	b.closed = true

	if b.subscribed {
		b.cancel()
		if err := b.pubsub.Close(); err != nil {
			b.logger.Warn("failed to close pubsub", zap.Error(err))
		}
		<-b.done
	}
	return nil
}
