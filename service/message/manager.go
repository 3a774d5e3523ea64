package message

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/strandchat/strand/bus"
	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/repository"
)

var (
	// ErrNotFound 対象が存在しません
	ErrNotFound = errors.New("not found")
	// ErrNotMember チャンネルのメンバーではありません
	ErrNotMember = errors.New("not a member of the channel")
	// ErrAlreadyExists 既に存在します
	ErrAlreadyExists = errors.New("already exists")
)

// Manager メッセージマネージャー
//
// 永続化をコミットした後、非正規化済みのイベントをバスに発行する。
// データ変更の入り口はすべてここを通る
type Manager interface {
	// Create メッセージを作成します
	//
	// 成功した場合、メッセージとnilを返します。
	// 存在しないチャンネルを指定した場合、ErrNotFoundを返します。
	// チャンネルのメンバーでないユーザーを指定した場合、ErrNotMemberを返します。
	// DBによるエラーを返すことがあります。
	Create(channelID, userID uuid.UUID, content string, parentID uuid.NullUUID) (*model.Message, error)
	// AddReaction 指定したメッセージにリアクションを付けます
	//
	// 成功した場合、nilを返します。
	// 既に同じリアクションが付いている場合、ErrAlreadyExistsを返します。
	// 存在しないメッセージを指定した場合、ErrNotFoundを返します。
	// DBによるエラーを返すことがあります。
	AddReaction(messageID, userID uuid.UUID, emoji string) error
	// RemoveReaction 指定したメッセージからリアクションを外します
	//
	// 成功した場合、nilを返します。
	// 対象のリアクションが存在しない場合、ErrNotFoundを返します。
	// DBによるエラーを返すことがあります。
	RemoveReaction(messageID, userID uuid.UUID, emoji string) error
}

type manager struct {
	R repository.Repository
	B bus.Bus
	L *zap.Logger
}

// NewMessageManager メッセージマネージャーを生成します
func NewMessageManager(repo repository.Repository, b bus.Bus, logger *zap.Logger) Manager {
	return &manager{
		R: repo,
		B: b,
		L: logger.Named("message_manager"),
	}
}

func (m *manager) Create(channelID, userID uuid.UUID, content string, parentID uuid.NullUUID) (*model.Message, error) {
	ch, err := m.R.GetChannel(channelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to GetChannel: %w", err)
	}

	if err := m.checkMembership(channelID, userID); err != nil {
		return nil, err
	}

	msg, err := m.R.CreateMessage(repository.CreateMessageArgs{
		ChannelID: channelID,
		UserID:    userID,
		Content:   content,
		ParentID:  parentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to CreateMessage: %w", err)
	}

	user, err := m.R.GetUser(userID)
	if err != nil {
		// 永続化は成功している。通知だけ落とす
		m.L.Error("failed to get user for message event", zap.Error(err), zap.Stringer("userId", userID))
		return msg, nil
	}

	topic := event.NewMessage
	if ch.IsDM {
		topic = event.NewDirectMessage
	}
	m.publish(&event.Envelope{
		Type: topic,
		Body: &event.MessageBody{
			ChannelID: channelID,
			Message: event.MessagePayload{
				ID:        msg.ID,
				Content:   msg.Content,
				ParentID:  msg.ParentID,
				CreatedAt: msg.CreatedAt,
				UpdatedAt: msg.UpdatedAt,
				UserID:    user.ID,
				Username:  user.Name,
			},
		},
	})
	return msg, nil
}

func (m *manager) AddReaction(messageID, userID uuid.UUID, emoji string) error {
	msg, err := m.getMessage(messageID)
	if err != nil {
		return err
	}

	if err := m.checkMembership(msg.ChannelID, userID); err != nil {
		return err
	}

	if err := m.R.AddReaction(messageID, userID, emoji); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to AddReaction: %w", err)
	}

	m.publishReaction(event.Reaction, msg, userID, emoji)
	return nil
}

func (m *manager) RemoveReaction(messageID, userID uuid.UUID, emoji string) error {
	msg, err := m.getMessage(messageID)
	if err != nil {
		return err
	}

	if err := m.R.RemoveReaction(messageID, userID, emoji); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to RemoveReaction: %w", err)
	}

	m.publishReaction(event.DeleteReaction, msg, userID, emoji)
	return nil
}

func (m *manager) getMessage(id uuid.UUID) (*model.Message, error) {
	msg, err := m.R.GetMessage(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to GetMessage: %w", err)
	}
	return msg, nil
}

func (m *manager) checkMembership(channelID, userID uuid.UUID) error {
	ok, err := m.R.IsMember(channelID, userID)
	if err != nil {
		return fmt.Errorf("failed to IsMember: %w", err)
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

func (m *manager) publishReaction(topic string, msg *model.Message, userID uuid.UUID, emoji string) {
	user, err := m.R.GetUser(userID)
	if err != nil {
		m.L.Error("failed to get user for reaction event", zap.Error(err), zap.Stringer("userId", userID))
		return
	}

	m.publish(&event.Envelope{
		Type: topic,
		Body: &event.ReactionBody{
			ChannelID: msg.ChannelID,
			MessageID: msg.ID,
			UserID:    user.ID,
			Username:  user.Name,
			Emoji:     emoji,
		},
	})
}

func (m *manager) publish(ev *event.Envelope) {
	if err := m.B.Publish(context.Background(), ev); err != nil {
		m.L.Error("failed to publish event", zap.Error(err), zap.String("type", ev.Type))
	}
}
