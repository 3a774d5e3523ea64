package gorm

import (
	"github.com/gofrs/uuid"

	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/repository"
	"github.com/strandchat/strand/utils/gormutil"
)

// CreateMessage implements MessageRepository interface.
func (repo *Repository) CreateMessage(args repository.CreateMessageArgs) (*model.Message, error) {
	if args.ChannelID == uuid.Nil || args.UserID == uuid.Nil {
		return nil, repository.ErrNilID
	}

	m := &model.Message{
		ID:        uuid.Must(uuid.NewV4()),
		ChannelID: args.ChannelID,
		UserID:    args.UserID,
		Content:   args.Content,
		ParentID:  args.ParentID,
	}
	if err := repo.db.Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessage implements MessageRepository interface.
func (repo *Repository) GetMessage(id uuid.UUID) (*model.Message, error) {
	if id == uuid.Nil {
		return nil, repository.ErrNilID
	}
	var m model.Message
	if err := repo.db.First(&m, &model.Message{ID: id}).Error; err != nil {
		return nil, convertError(err)
	}
	return &m, nil
}

// AddReaction implements MessageRepository interface.
func (repo *Repository) AddReaction(messageID, userID uuid.UUID, emoji string) error {
	if messageID == uuid.Nil || userID == uuid.Nil {
		return repository.ErrNilID
	}
	if len(emoji) == 0 {
		return repository.ErrNilID
	}
	if err := repo.db.Create(&model.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji}).Error; err != nil {
		if gormutil.IsMySQLDuplicatedRecordErr(err) {
			return repository.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// RemoveReaction implements MessageRepository interface.
func (repo *Repository) RemoveReaction(messageID, userID uuid.UUID, emoji string) error {
	if messageID == uuid.Nil || userID == uuid.Nil {
		return repository.ErrNilID
	}
	result := repo.db.Delete(&model.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
