package ws

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/repository"
)

func (s *session) frameHandler(m []byte) {
	req, err := decodeClientMessage(m)
	if err != nil {
		// プロトコル違反は接続を維持したままエラーフレームで返す
		s.sendErrorMessage(err.Error())
		return
	}

	switch req := req.(type) {
	case *typingRequest:
		s.handleTyping(req)
	case *markReadRequest:
		s.handleMarkRead(req)
	case *presenceSubscriptionRequest:
		s.handlePresenceSubscription(req)
	}
}

// handleTyping タイピング中継。永続化せずバスに流すだけ
func (s *session) handleTyping(req *typingRequest) {
	ev := &event.Envelope{
		Type: event.Typing,
		Body: &event.TypingBody{
			ChannelID: req.ChannelID,
			UserID:    s.userID,
			Username:  s.username,
		},
	}
	if err := s.streamer.bus.Publish(context.Background(), ev); err != nil {
		s.streamer.logger.Error("failed to publish typing event", zap.Error(err), zap.Stringer("userID", s.userID))
	}
}

func (s *session) handleMarkRead(req *markReadRequest) {
	err := s.streamer.repo.SetReadCursor(req.ChannelID, s.userID, req.MessageID)
	switch {
	case err == nil:
		// 成功応答は返さない
	case errors.Is(err, repository.ErrNotFound):
		s.sendErrorMessage("message not found")
	case errors.Is(err, repository.ErrNotMember):
		s.sendErrorMessage("not a member of the channel")
	default:
		s.streamer.logger.Error("failed to set read cursor", zap.Error(err), zap.Stringer("userID", s.userID))
		s.sendErrorMessage("internal error")
	}
}

func (s *session) handlePresenceSubscription(req *presenceSubscriptionRequest) {
	if req.unsubscribe {
		s.streamer.presence.Unsubscribe(s.key, req.UserID)
		return
	}

	snapshot, err := s.streamer.presence.Subscribe(s.key, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.sendErrorMessage("user not found")
			return
		}
		s.streamer.logger.Error("failed to subscribe presence", zap.Error(err), zap.Stringer("userID", s.userID))
		s.sendErrorMessage("internal error")
		return
	}

	// スナップショットが購読直後のイベントと前後することはあるが、
	// どちらもレジストリ由来の値なので最終的に同じ状態に収束する
	data, err := makeServerMessage(event.Presence, snapshot)
	if err != nil {
		s.streamer.logger.Error("failed to make presence snapshot message", zap.Error(err))
		return
	}
	_ = s.writeMessage(&rawMessage{t: websocket.TextMessage, data: data})
}

func (s *session) sendErrorMessage(error string) {
	_ = s.writeMessage(&rawMessage{
		t:    websocket.TextMessage,
		data: makeErrorMessage(error),
	})
}
