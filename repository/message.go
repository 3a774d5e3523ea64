package repository

import (
	"github.com/gofrs/uuid"

	"github.com/strandchat/strand/model"
)

// CreateMessageArgs メッセージ作成引数
type CreateMessageArgs struct {
	ChannelID uuid.UUID
	UserID    uuid.UUID
	Content   string
	ParentID  uuid.NullUUID
}

// MessageRepository メッセージリポジトリ
type MessageRepository interface {
	// CreateMessage メッセージを作成します
	CreateMessage(args CreateMessageArgs) (*model.Message, error)
	// GetMessage 指定したIDのメッセージを取得します
	GetMessage(id uuid.UUID) (*model.Message, error)
	// AddReaction メッセージにリアクションを付けます
	AddReaction(messageID, userID uuid.UUID, emoji string) error
	// RemoveReaction メッセージからリアクションを外します
	RemoveReaction(messageID, userID uuid.UUID, emoji string) error
}
