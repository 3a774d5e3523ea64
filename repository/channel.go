package repository

import (
	"github.com/gofrs/uuid"

	"github.com/strandchat/strand/model"
)

// ChannelRepository チャンネルリポジトリ
type ChannelRepository interface {
	// CreateChannel チャンネルを作成し、メンバーを追加します
	CreateChannel(name string, creatorID uuid.UUID, isDM bool, memberIDs ...uuid.UUID) (*model.Channel, error)
	// GetChannel 指定したIDのチャンネルを取得します
	GetChannel(id uuid.UUID) (*model.Channel, error)
	// GetMemberIDs 指定したチャンネルの有効なメンバーのユーザーIDを取得します
	GetMemberIDs(channelID uuid.UUID) ([]uuid.UUID, error)
	// IsMember 指定したユーザーが現在チャンネルの有効なメンバーかどうか
	IsMember(channelID, userID uuid.UUID) (bool, error)
	// AddMember チャンネルにメンバーを追加します
	AddMember(channelID, userID uuid.UUID) error
	// RemoveMember チャンネルからメンバーを外します (論理削除)
	RemoveMember(channelID, userID uuid.UUID) error
	// SetReadCursor メンバーの既読カーソルを進めます
	//
	// messageIDが対象チャンネルのメッセージでない場合はErrNotFound
	SetReadCursor(channelID, userID, messageID uuid.UUID) error
}
