package gorm

import (
	"github.com/gofrs/uuid"

	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/repository"
)

// CreateConnection implements ConnectionRepository interface.
func (repo *Repository) CreateConnection(connID string, userID, serverID uuid.UUID) error {
	if len(connID) == 0 || userID == uuid.Nil || serverID == uuid.Nil {
		return repository.ErrNilID
	}
	return repo.db.Create(&model.WebSocketConnection{
		ID:       connID,
		UserID:   userID,
		ServerID: serverID,
	}).Error
}

// DeleteConnection implements ConnectionRepository interface.
func (repo *Repository) DeleteConnection(connID string) error {
	if len(connID) == 0 {
		return repository.ErrNilID
	}
	return repo.db.Delete(&model.WebSocketConnection{ID: connID}).Error
}

// DeleteConnectionsByServerID implements ConnectionRepository interface.
func (repo *Repository) DeleteConnectionsByServerID(serverID uuid.UUID) error {
	if serverID == uuid.Nil {
		return repository.ErrNilID
	}
	return repo.db.
		Where(&model.WebSocketConnection{ServerID: serverID}).
		Delete(&model.WebSocketConnection{}).Error
}

// GetChannelConnections implements ConnectionRepository interface.
//
// レジストリと現在のチャンネルメンバーシップを配信時点で結合する。
// server_idで絞ることで自インスタンスのソケットだけが対象になる
func (repo *Repository) GetChannelConnections(channelID, serverID uuid.UUID) ([]string, error) {
	ids := make([]string, 0)
	if channelID == uuid.Nil || serverID == uuid.Nil {
		return ids, nil
	}
	return ids, repo.db.
		Table("websocket_connections").
		Joins("INNER JOIN channel_members ON channel_members.user_id = websocket_connections.user_id").
		Where("channel_members.channel_id = ? AND channel_members.deleted_at IS NULL", channelID).
		Where("websocket_connections.server_id = ?", serverID).
		Pluck("websocket_connections.id", &ids).Error
}

// CountUserConnections implements ConnectionRepository interface.
func (repo *Repository) CountUserConnections(userID uuid.UUID) (n int64, err error) {
	if userID == uuid.Nil {
		return 0, nil
	}
	return n, repo.db.
		Model(&model.WebSocketConnection{}).
		Where(&model.WebSocketConnection{UserID: userID}).
		Count(&n).Error
}
