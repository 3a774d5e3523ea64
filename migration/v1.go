package migration

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/gofrs/uuid"
	"github.com/guregu/null"
	"gorm.io/gorm"
)

// v1 初期スキーマ
func v1() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "1",
		Migrate: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&v1User{},
				&v1Channel{},
				&v1ChannelMember{},
				&v1Message{},
				&v1Reaction{},
				&v1WebSocketConnection{},
			)
		},
	}
}

type v1User struct {
	ID               uuid.UUID   `gorm:"type:char(36);not null;primaryKey"`
	Name             string      `gorm:"type:varchar(32);not null;unique"`
	DisplayName      string      `gorm:"type:varchar(64);not null;default:''"`
	PresenceOverride null.String `gorm:"type:varchar(10)"`
	CreatedAt        time.Time   `gorm:"precision:6"`
	UpdatedAt        time.Time   `gorm:"precision:6"`
}

func (*v1User) TableName() string { return "users" }

type v1Channel struct {
	ID        uuid.UUID      `gorm:"type:char(36);not null;primaryKey"`
	Name      string         `gorm:"type:varchar(32);not null"`
	IsDM      bool           `gorm:"type:boolean;not null;default:false"`
	CreatorID uuid.UUID      `gorm:"type:char(36);not null"`
	CreatedAt time.Time      `gorm:"precision:6"`
	UpdatedAt time.Time      `gorm:"precision:6"`
	DeletedAt gorm.DeletedAt `gorm:"precision:6"`
}

func (*v1Channel) TableName() string { return "channels" }

type v1ChannelMember struct {
	ChannelID         uuid.UUID      `gorm:"type:char(36);not null;primaryKey"`
	UserID            uuid.UUID      `gorm:"type:char(36);not null;primaryKey"`
	LastReadMessageID uuid.NullUUID  `gorm:"type:char(36)"`
	CreatedAt         time.Time      `gorm:"precision:6"`
	DeletedAt         gorm.DeletedAt `gorm:"precision:6"`
}

func (*v1ChannelMember) TableName() string { return "channel_members" }

type v1Message struct {
	ID        uuid.UUID      `gorm:"type:char(36);not null;primaryKey"`
	ChannelID uuid.UUID      `gorm:"type:char(36);not null;index"`
	UserID    uuid.UUID      `gorm:"type:char(36);not null;index"`
	Content   string         `gorm:"type:text;not null"`
	ParentID  uuid.NullUUID  `gorm:"type:char(36)"`
	CreatedAt time.Time      `gorm:"precision:6"`
	UpdatedAt time.Time      `gorm:"precision:6"`
	DeletedAt gorm.DeletedAt `gorm:"precision:6"`
}

func (*v1Message) TableName() string { return "messages" }

type v1Reaction struct {
	MessageID uuid.UUID `gorm:"type:char(36);not null;primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;primaryKey"`
	Emoji     string    `gorm:"type:varchar(32);not null;primaryKey"`
	CreatedAt time.Time `gorm:"precision:6"`
}

func (*v1Reaction) TableName() string { return "reactions" }

type v1WebSocketConnection struct {
	ID        string    `gorm:"type:varchar(20);not null;primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	ServerID  uuid.UUID `gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `gorm:"precision:6"`
}

func (*v1WebSocketConnection) TableName() string { return "websocket_connections" }
