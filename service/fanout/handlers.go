package fanout

import (
	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/service/ws"
	"github.com/strandchat/strand/utils/set"
)

type eventHandler func(d *Dispatcher, ev *event.Envelope)

var handlerMap = map[string]eventHandler{
	event.NewMessage:       channelEventHandler,
	event.NewDirectMessage: channelEventHandler,
	event.Reaction:         channelEventHandler,
	event.DeleteReaction:   channelEventHandler,
	event.Typing:           channelEventHandler,
	event.Presence:         presenceHandler,
}

// channelEventHandler チャンネル向けイベントをメンバーのセッションに配信します
//
// メンバーシップは配信時点の値をレジストリと結合して解決する
func channelEventHandler(d *Dispatcher, ev *event.Envelope) {
	var channelID uuid.UUID
	switch b := ev.Body.(type) {
	case *event.MessageBody:
		channelID = b.ChannelID
	case *event.ReactionBody:
		channelID = b.ChannelID
	case *event.TypingBody:
		channelID = b.ChannelID
	default:
		d.logger.Error("unexpected event body", zap.String("type", ev.Type))
		return
	}

	keys, err := d.repo.GetChannelConnections(channelID, d.serverID)
	if err != nil {
		d.logger.Error("failed to resolve channel connections", zap.Error(err), zap.Stringer("channelId", channelID))
		return
	}
	if len(keys) == 0 {
		return
	}
	d.streamer.WriteMessage(ev.Type, ev.Body, ws.TargetConnectionKeys(set.StringSetFromArray(keys)))
}

// presenceHandler プレゼンスイベントを購読中のセッションに配信します
func presenceHandler(d *Dispatcher, ev *event.Envelope) {
	b, ok := ev.Body.(*event.PresenceBody)
	if !ok {
		d.logger.Error("unexpected event body", zap.String("type", ev.Type))
		return
	}

	keys := d.presence.Watchers(b.UserID)
	if keys.Len() == 0 {
		return
	}
	d.streamer.WriteMessage(ev.Type, ev.Body, ws.TargetConnectionKeys(keys))
}
