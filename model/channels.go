package model

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Channel チャンネルの構造体
type Channel struct {
	ID        uuid.UUID      `gorm:"type:char(36);not null;primaryKey"`
	Name      string         `gorm:"type:varchar(32);not null"`
	IsDM      bool           `gorm:"type:boolean;not null;default:false"`
	CreatorID uuid.UUID      `gorm:"type:char(36);not null"`
	CreatedAt time.Time      `gorm:"precision:6"`
	UpdatedAt time.Time      `gorm:"precision:6"`
	DeletedAt gorm.DeletedAt `gorm:"precision:6"`
}

// TableName Channelのテーブル名
func (*Channel) TableName() string {
	return "channels"
}

// ChannelMember チャンネルメンバーの構造体
type ChannelMember struct {
	ChannelID uuid.UUID `gorm:"type:char(36);not null;primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;primaryKey"`
	// LastReadMessageID 既読カーソル
	LastReadMessageID uuid.NullUUID  `gorm:"type:char(36)"`
	CreatedAt         time.Time      `gorm:"precision:6"`
	DeletedAt         gorm.DeletedAt `gorm:"precision:6"`
}

// TableName ChannelMemberのテーブル名
func (*ChannelMember) TableName() string {
	return "channel_members"
}
