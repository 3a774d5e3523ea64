package repository

import (
	"github.com/gofrs/uuid"
)

// ConnectionRepository 接続レジストリ
//
// 全インスタンス共有の永続テーブル。接続IDと所有ユーザー・
// ソケットを保持するインスタンスの対応を持つ
type ConnectionRepository interface {
	// CreateConnection 接続を登録します
	//
	// 失敗した場合、その接続は発見不能なため呼び出し側でソケットを閉じること
	CreateConnection(connID string, userID, serverID uuid.UUID) error
	// DeleteConnection 接続の登録を解除します
	DeleteConnection(connID string) error
	// DeleteConnectionsByServerID 指定したインスタンスの全接続を一括解除します
	DeleteConnectionsByServerID(serverID uuid.UUID) error
	// GetChannelConnections 対象チャンネルの有効なメンバーが持つ、
	// 指定インスタンス上の接続IDを取得します
	//
	// メンバーシップは配信時点の値を結合する。キャッシュしないこと
	GetChannelConnections(channelID, serverID uuid.UUID) ([]string, error)
	// CountUserConnections 指定したユーザーの全インスタンス合計の接続数
	CountUserConnections(userID uuid.UUID) (int64, error)
}
