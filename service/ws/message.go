package ws

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofrs/uuid"

	"github.com/strandchat/strand/event"
)

type rawMessage struct {
	t    int
	data []byte
}

// クライアント → サーバーのフレーム種別
const (
	clientTyping                = "typing"
	clientMarkRead              = "mark_read"
	clientSubscribeToPresence   = "subscribe_to_presence"
	clientUnsubscribeToPresence = "unsubscribe_from_presence"
)

// サーバー → クライアントのフレーム種別
const (
	// ServerConnected 接続確立通知
	ServerConnected = "connected"
)

// ErrUnknownFrameType 不明なフレーム種別
var ErrUnknownFrameType = errors.New("unknown frame type")

// typingRequest typingフレーム
type typingRequest struct {
	ChannelID uuid.UUID `json:"channelId"`
	// IsDM 受理はするが配信には使わない。宛先解決はチャンネルの
	// メンバーシップ結合だけで決まる
	IsDM bool `json:"isDM"`
}

// Validate ozzo-validation実装
func (r typingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ChannelID, validation.By(notNilUUID)),
	)
}

// markReadRequest mark_readフレーム
type markReadRequest struct {
	ChannelID uuid.UUID `json:"channelId"`
	MessageID uuid.UUID `json:"messageId"`
}

// Validate ozzo-validation実装
func (r markReadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ChannelID, validation.By(notNilUUID)),
		validation.Field(&r.MessageID, validation.By(notNilUUID)),
	)
}

// presenceSubscriptionRequest subscribe_to_presence / unsubscribe_from_presence フレーム
type presenceSubscriptionRequest struct {
	UserID uuid.UUID `json:"userId"`
	// unsubscribeの場合true
	unsubscribe bool
}

// Validate ozzo-validation実装
func (r presenceSubscriptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.By(notNilUUID)),
	)
}

// decodeClientMessage クライアントフレームを閉じたタグ付きバリアントに
// デコードします。不明なタグとスキーマ違反は受け入れない
func decodeClientMessage(data []byte) (interface{}, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch head.Type {
	case clientTyping:
		var r typingRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("malformed %s frame: %w", head.Type, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s frame: %w", head.Type, err)
		}
		return &r, nil

	case clientMarkRead:
		var r markReadRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("malformed %s frame: %w", head.Type, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s frame: %w", head.Type, err)
		}
		return &r, nil

	case clientSubscribeToPresence, clientUnsubscribeToPresence:
		var r presenceSubscriptionRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("malformed %s frame: %w", head.Type, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s frame: %w", head.Type, err)
		}
		r.unsubscribe = head.Type == clientUnsubscribeToPresence
		return &r, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrameType, head.Type)
	}
}

type connectedFrame struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"userId"`
}

// Validate ozzo-validation実装
func (f connectedFrame) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.UserID, validation.By(notNilUUID)),
	)
}

type messageFrame struct {
	Type string `json:"type"`
	*event.MessageBody
}

type reactionFrame struct {
	Type string `json:"type"`
	*event.ReactionBody
}

type typingFrame struct {
	Type string `json:"type"`
	*event.TypingBody
}

type presenceFrame struct {
	Type string `json:"type"`
	*event.PresenceBody
}

type errorFrame struct {
	Error string `json:"error"`
}

// makeServerMessage サーバーフレームを正規形に組み立てて検証のうえ
// JSONにエンコードします
//
// 不正な形はエンコードせずエラーを返す。ワイヤフォーマットの不変条件を
// プログラマエラーの下でも保証する
func makeServerMessage(t string, body interface{}) ([]byte, error) {
	var frame interface {
		Validate() error
	}

	switch t {
	case ServerConnected:
		uid, ok := body.(uuid.UUID)
		if !ok {
			return nil, fmt.Errorf("%s frame requires uuid.UUID body", t)
		}
		frame = &connectedFrame{Type: t, UserID: uid}

	case event.NewMessage, event.NewDirectMessage:
		b, ok := body.(*event.MessageBody)
		if !ok {
			return nil, fmt.Errorf("%s frame requires *event.MessageBody body", t)
		}
		frame = &messageFrame{Type: t, MessageBody: b}

	case event.Reaction, event.DeleteReaction:
		b, ok := body.(*event.ReactionBody)
		if !ok {
			return nil, fmt.Errorf("%s frame requires *event.ReactionBody body", t)
		}
		frame = &reactionFrame{Type: t, ReactionBody: b}

	case event.Typing:
		b, ok := body.(*event.TypingBody)
		if !ok {
			return nil, fmt.Errorf("%s frame requires *event.TypingBody body", t)
		}
		frame = &typingFrame{Type: t, TypingBody: b}

	case event.Presence:
		b, ok := body.(*event.PresenceBody)
		if !ok {
			return nil, fmt.Errorf("%s frame requires *event.PresenceBody body", t)
		}
		frame = &presenceFrame{Type: t, PresenceBody: b}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrameType, t)
	}

	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s frame: %w", t, err)
	}
	return json.Marshal(frame)
}

// makeErrorMessage プロトコル違反通知フレームをエンコードします
func makeErrorMessage(message string) []byte {
	b, _ := json.Marshal(&errorFrame{Error: message})
	return b
}

func notNilUUID(v interface{}) error {
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("must be a non-nil uuid")
	}
	return nil
}
