package gorm

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/guregu/null"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/repository"
	"github.com/strandchat/strand/utils/gormutil"
)

// CreateUser implements UserRepository interface.
func (repo *Repository) CreateUser(name, displayName string) (*model.User, error) {
	if len(name) == 0 {
		return nil, repository.ErrNilID
	}

	user := &model.User{
		ID:          uuid.Must(uuid.NewV4()),
		Name:        name,
		DisplayName: displayName,
	}
	if err := repo.db.Create(user).Error; err != nil {
		if gormutil.IsMySQLDuplicatedRecordErr(err) {
			return nil, repository.ErrAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

// GetUser implements UserRepository interface.
func (repo *Repository) GetUser(id uuid.UUID) (*model.User, error) {
	if id == uuid.Nil {
		return nil, repository.ErrNilID
	}
	var user model.User
	if err := repo.db.First(&user, &model.User{ID: id}).Error; err != nil {
		return nil, convertError(err)
	}
	return &user, nil
}

// GetUserByName implements UserRepository interface.
func (repo *Repository) GetUserByName(name string) (*model.User, error) {
	if len(name) == 0 {
		return nil, repository.ErrNotFound
	}
	var user model.User
	if err := repo.db.First(&user, &model.User{Name: name}).Error; err != nil {
		return nil, convertError(err)
	}
	return &user, nil
}

// SetPresenceOverride implements UserRepository interface.
func (repo *Repository) SetPresenceOverride(id uuid.UUID, status null.String) error {
	if id == uuid.Nil {
		return repository.ErrNilID
	}
	// 不正な値を書き込むと以降のプレゼンスフレームが検証で全て落ちる
	if status.Valid && status.String != model.PresenceOnline && status.String != model.PresenceOffline {
		return repository.ArgError("status", `status must be "online" or "offline"`)
	}

	var user model.User
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, &model.User{ID: id}).Error; err != nil {
			return convertError(err)
		}
		return tx.Model(&user).Update("presence_override", status).Error
	})
	if err != nil {
		return err
	}

	// 既存の購読者が即座に更新を受け取れるよう、設定変更自体を
	// プレゼンスイベントとして発行する
	effective := status.String
	if !status.Valid {
		// 解除時は接続由来のプレゼンスに戻る
		n, err := repo.CountUserConnections(id)
		if err != nil {
			repo.logger.Warn("failed to derive presence after clearing override", zap.Stringer("userID", id), zap.Error(err))
			return nil
		}
		effective = model.PresenceOffline
		if n > 0 {
			effective = model.PresenceOnline
		}
	}
	if err := repo.bus.Publish(context.Background(), &event.Envelope{
		Type: event.Presence,
		Body: &event.PresenceBody{
			UserID:   id,
			Username: user.Name,
			Status:   effective,
		},
	}); err != nil {
		repo.logger.Warn("failed to publish presence event", zap.Stringer("userID", id), zap.Error(err))
	}
	return nil
}
