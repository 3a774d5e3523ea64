package gorm

import (
	"errors"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/repository"
	"github.com/strandchat/strand/utils/gormutil"
)

// CreateChannel implements ChannelRepository interface.
func (repo *Repository) CreateChannel(name string, creatorID uuid.UUID, isDM bool, memberIDs ...uuid.UUID) (*model.Channel, error) {
	if creatorID == uuid.Nil {
		return nil, repository.ErrNilID
	}

	ch := &model.Channel{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      name,
		IsDM:      isDM,
		CreatorID: creatorID,
	}
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ch).Error; err != nil {
			return err
		}
		members := lo.Uniq(append(memberIDs, creatorID))
		for _, uid := range members {
			if err := tx.Create(&model.ChannelMember{ChannelID: ch.ID, UserID: uid}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// GetChannel implements ChannelRepository interface.
func (repo *Repository) GetChannel(id uuid.UUID) (*model.Channel, error) {
	if id == uuid.Nil {
		return nil, repository.ErrNilID
	}
	var ch model.Channel
	if err := repo.db.First(&ch, &model.Channel{ID: id}).Error; err != nil {
		return nil, convertError(err)
	}
	return &ch, nil
}

// GetMemberIDs implements ChannelRepository interface.
func (repo *Repository) GetMemberIDs(channelID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if channelID == uuid.Nil {
		return ids, nil
	}
	return ids, repo.db.
		Model(&model.ChannelMember{}).
		Where(&model.ChannelMember{ChannelID: channelID}).
		Pluck("user_id", &ids).Error
}

// IsMember implements ChannelRepository interface.
func (repo *Repository) IsMember(channelID, userID uuid.UUID) (bool, error) {
	if channelID == uuid.Nil || userID == uuid.Nil {
		return false, nil
	}
	return gormutil.RecordExists(repo.db, &model.ChannelMember{ChannelID: channelID, UserID: userID})
}

// AddMember implements ChannelRepository interface.
func (repo *Repository) AddMember(channelID, userID uuid.UUID) error {
	if channelID == uuid.Nil || userID == uuid.Nil {
		return repository.ErrNilID
	}
	return repo.db.Transaction(func(tx *gorm.DB) error {
		// 論理削除された行が残っている場合は復活させる
		var m model.ChannelMember
		err := tx.Unscoped().First(&m, &model.ChannelMember{ChannelID: channelID, UserID: userID}).Error
		if err == nil {
			if !m.DeletedAt.Valid {
				return repository.ErrAlreadyExists
			}
			return tx.Unscoped().
				Model(&m).
				Updates(map[string]interface{}{"deleted_at": nil, "last_read_message_id": nil}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&model.ChannelMember{ChannelID: channelID, UserID: userID}).Error
	})
}

// RemoveMember implements ChannelRepository interface.
func (repo *Repository) RemoveMember(channelID, userID uuid.UUID) error {
	if channelID == uuid.Nil || userID == uuid.Nil {
		return repository.ErrNilID
	}
	return repo.db.
		Where(&model.ChannelMember{ChannelID: channelID, UserID: userID}).
		Delete(&model.ChannelMember{}).Error
}

// SetReadCursor implements ChannelRepository interface.
func (repo *Repository) SetReadCursor(channelID, userID, messageID uuid.UUID) error {
	if channelID == uuid.Nil || userID == uuid.Nil || messageID == uuid.Nil {
		return repository.ErrNilID
	}
	return repo.db.Transaction(func(tx *gorm.DB) error {
		// メッセージが対象チャンネルのものであることを確認する
		ok, err := gormutil.RecordExists(tx, &model.Message{ID: messageID, ChannelID: channelID})
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrNotFound
		}

		result := tx.
			Model(&model.ChannelMember{}).
			Where(&model.ChannelMember{ChannelID: channelID, UserID: userID}).
			Update("last_read_message_id", messageID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotMember
		}
		return nil
	})
}
