package model

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Message メッセージの構造体
type Message struct {
	ID        uuid.UUID      `gorm:"type:char(36);not null;primaryKey"`
	ChannelID uuid.UUID      `gorm:"type:char(36);not null;index"`
	UserID    uuid.UUID      `gorm:"type:char(36);not null;index"`
	Content   string         `gorm:"type:text;not null"`
	ParentID  uuid.NullUUID  `gorm:"type:char(36)"`
	CreatedAt time.Time      `gorm:"precision:6"`
	UpdatedAt time.Time      `gorm:"precision:6"`
	DeletedAt gorm.DeletedAt `gorm:"precision:6"`
}

// TableName Messageのテーブル名
func (*Message) TableName() string {
	return "messages"
}

// Reaction メッセージリアクションの構造体
type Reaction struct {
	MessageID uuid.UUID `gorm:"type:char(36);not null;primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;primaryKey"`
	Emoji     string    `gorm:"type:varchar(32);not null;primaryKey"`
	CreatedAt time.Time `gorm:"precision:6"`
}

// TableName Reactionのテーブル名
func (*Reaction) TableName() string {
	return "reactions"
}
