package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"

	"github.com/strandchat/strand/model"
)

// Migrations 全てのデータベースマイグレーション
//
// 新たなマイグレーションを行う場合は、この配列の末尾に必ず追加すること
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		v1(), // 初期スキーマ
	}
}

// AllTables 最新のスキーマの全テーブルモデル
//
// 最新のスキーマの全テーブルのモデル構造体を記述すること
func AllTables() []interface{} {
	return []interface{}{
		&model.WebSocketConnection{},
		&model.Reaction{},
		&model.Message{},
		&model.ChannelMember{},
		&model.Channel{},
		&model.User{},
	}
}

// AllForeignKeys 最新のスキーマの全外部キー制約
//
// {テーブル名, 制約名, カラム名, 参照先, ON DELETE, ON UPDATE}
func AllForeignKeys() [][6]string {
	return [][6]string{
		{"channel_members", "channel_members_channel_id_channels_id_foreign", "channel_id", "channels(id)", "CASCADE", "CASCADE"},
		{"channel_members", "channel_members_user_id_users_id_foreign", "user_id", "users(id)", "CASCADE", "CASCADE"},
		{"messages", "messages_channel_id_channels_id_foreign", "channel_id", "channels(id)", "CASCADE", "CASCADE"},
		{"messages", "messages_user_id_users_id_foreign", "user_id", "users(id)", "CASCADE", "CASCADE"},
		{"reactions", "reactions_message_id_messages_id_foreign", "message_id", "messages(id)", "CASCADE", "CASCADE"},
		{"reactions", "reactions_user_id_users_id_foreign", "user_id", "users(id)", "CASCADE", "CASCADE"},
		{"websocket_connections", "websocket_connections_user_id_users_id_foreign", "user_id", "users(id)", "CASCADE", "CASCADE"},
	}
}
