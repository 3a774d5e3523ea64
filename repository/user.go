package repository

import (
	"github.com/gofrs/uuid"
	"github.com/guregu/null"

	"github.com/strandchat/strand/model"
)

// UserRepository ユーザーリポジトリ
type UserRepository interface {
	// CreateUser ユーザーを作成します
	CreateUser(name, displayName string) (*model.User, error)
	// GetUser 指定したIDのユーザーを取得します
	GetUser(id uuid.UUID) (*model.User, error)
	// GetUserByName 指定した名前のユーザーを取得します
	GetUserByName(name string) (*model.User, error)
	// SetPresenceOverride 手動プレゼンス設定を変更します
	//
	// 無効なnull.Stringを渡すと設定を解除する。
	// 変更はプレゼンスイベントとしてバスに発行される
	SetPresenceOverride(id uuid.UUID, status null.String) error
}
