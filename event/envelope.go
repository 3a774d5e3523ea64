package event

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofrs/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigFastest

// ErrUnknownType 不明なイベントタイプ
var ErrUnknownType = errors.New("unknown event type")

// Envelope バスを流れるイベントのエンベロープ
//
// 永続化されない。受信側が再クエリ無しで描画できるだけの
// 非正規化データをBodyに含む
type Envelope struct {
	Type string      `json:"type"`
	Body interface{} `json:"body"`
}

// MessagePayload 配信用の非正規化メッセージ
type MessagePayload struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	ParentID  uuid.NullUUID `json:"parent_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	UserID    uuid.UUID     `json:"user_id"`
	Username  string        `json:"username"`
}

// MessageBody new_message / new_direct_message イベントのボディ
type MessageBody struct {
	ChannelID uuid.UUID      `json:"channelId"`
	Message   MessagePayload `json:"message"`
}

// Validate ozzo-validation実装
func (b MessageBody) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ChannelID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&b.Message, validation.By(func(v interface{}) error {
			m := v.(MessagePayload)
			return validation.ValidateStruct(&m,
				validation.Field(&m.ID, validation.By(notNilUUID)),
				validation.Field(&m.UserID, validation.By(notNilUUID)),
				validation.Field(&m.Username, validation.Required),
			)
		})),
	)
}

// ReactionBody reaction / delete_reaction イベントのボディ
type ReactionBody struct {
	ChannelID uuid.UUID `json:"channelId"`
	MessageID uuid.UUID `json:"messageId"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	Emoji     string    `json:"emoji"`
}

// Validate ozzo-validation実装
func (b ReactionBody) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ChannelID, validation.By(notNilUUID)),
		validation.Field(&b.MessageID, validation.By(notNilUUID)),
		validation.Field(&b.UserID, validation.By(notNilUUID)),
		validation.Field(&b.Emoji, validation.Required),
	)
}

// TypingBody typing イベントのボディ
type TypingBody struct {
	ChannelID uuid.UUID `json:"channelId"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
}

// Validate ozzo-validation実装
func (b TypingBody) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ChannelID, validation.By(notNilUUID)),
		validation.Field(&b.UserID, validation.By(notNilUUID)),
	)
}

// PresenceBody presence イベントのボディ
type PresenceBody struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Status   string    `json:"status"`
}

// Validate ozzo-validation実装
func (b PresenceBody) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.UserID, validation.By(notNilUUID)),
		validation.Field(&b.Status, validation.Required, validation.In("online", "offline")),
	)
}

// Encode エンベロープをJSONにエンコードします
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode JSONをエンベロープにデコードします
//
// 不明なタイプ、スキーマ違反のボディは受け入れない
func Decode(data []byte) (*Envelope, error) {
	var raw struct {
		Type string              `json:"type"`
		Body jsoniter.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	var body interface {
		Validate() error
	}
	switch raw.Type {
	case NewMessage, NewDirectMessage:
		body = &MessageBody{}
	case Reaction, DeleteReaction:
		body = &ReactionBody{}
	case Typing:
		body = &TypingBody{}
	case Presence:
		body = &PresenceBody{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, raw.Type)
	}

	if err := json.Unmarshal(raw.Body, body); err != nil {
		return nil, fmt.Errorf("malformed %s body: %w", raw.Type, err)
	}
	if err := body.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s body: %w", raw.Type, err)
	}
	return &Envelope{Type: raw.Type, Body: body}, nil
}

func notNilUUID(v interface{}) error {
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("must be a non-nil uuid")
	}
	return nil
}
