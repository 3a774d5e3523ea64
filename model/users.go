package model

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/guregu/null"
)

const (
	// PresenceOnline オンライン状態
	PresenceOnline = "online"
	// PresenceOffline オフライン状態
	PresenceOffline = "offline"
)

// User ユーザーの構造体
type User struct {
	ID          uuid.UUID `gorm:"type:char(36);not null;primaryKey"`
	Name        string    `gorm:"type:varchar(32);not null;unique"`
	DisplayName string    `gorm:"type:varchar(64);not null;default:''"`
	// PresenceOverride 手動プレゼンス設定 ("online"/"offline")
	// 設定されている間は接続由来のプレゼンスより優先される
	PresenceOverride null.String `gorm:"type:varchar(10)"`
	CreatedAt        time.Time   `gorm:"precision:6"`
	UpdatedAt        time.Time   `gorm:"precision:6"`
}

// TableName Userのテーブル名
func (*User) TableName() string {
	return "users"
}

// ResponseName 表示名が設定されていれば表示名、なければユーザー名
func (u *User) ResponseName() string {
	if len(u.DisplayName) > 0 {
		return u.DisplayName
	}
	return u.Name
}
