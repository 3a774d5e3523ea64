package model

import (
	"time"

	"github.com/gofrs/uuid"
)

// WebSocketConnection 接続レジストリの行
// 行が存在する間、いずれか1つのインスタンスのメモリ上に生きたソケットが存在する
type WebSocketConnection struct {
	ID        string    `gorm:"type:varchar(20);not null;primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	ServerID  uuid.UUID `gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `gorm:"precision:6"`
}

// TableName WebSocketConnectionのテーブル名
func (*WebSocketConnection) TableName() string {
	return "websocket_connections"
}
