package gorm

import (
	"testing"

	"github.com/gofrs/uuid"

	"github.com/strandchat/strand/repository"
)

func TestGormRepository_CreateMessage(t *testing.T) {
	t.Parallel()
	repo, assert, _, user := setupWithUser(t, common)
	ch := mustMakeChannel(t, repo, user.ID)

	m, err := repo.CreateMessage(repository.CreateMessageArgs{
		ChannelID: ch.ID,
		UserID:    user.ID,
		Content:   "hello",
	})
	if assert.NoError(err) {
		assert.NotEqual(uuid.Nil, m.ID)
		assert.Equal("hello", m.Content)
		assert.False(m.ParentID.Valid)
	}

	// スレッド返信
	reply, err := repo.CreateMessage(repository.CreateMessageArgs{
		ChannelID: ch.ID,
		UserID:    user.ID,
		Content:   "reply",
		ParentID:  uuid.NullUUID{UUID: m.ID, Valid: true},
	})
	if assert.NoError(err) {
		assert.True(reply.ParentID.Valid)
		assert.Equal(m.ID, reply.ParentID.UUID)
	}

	t.Run("nil ids", func(t *testing.T) {
		t.Parallel()
		_, err := repo.CreateMessage(repository.CreateMessageArgs{})
		assert.ErrorIs(err, repository.ErrNilID)
	})
}

func TestGormRepository_GetMessage(t *testing.T) {
	t.Parallel()
	repo, assert, _, user := setupWithUser(t, common)
	ch := mustMakeChannel(t, repo, user.ID)
	msg := mustMakeMessage(t, repo, user.ID, ch.ID)

	m, err := repo.GetMessage(msg.ID)
	if assert.NoError(err) {
		assert.Equal(msg.ID, m.ID)
		assert.Equal(ch.ID, m.ChannelID)
	}

	_, err = repo.GetMessage(uuid.Must(uuid.NewV4()))
	assert.ErrorIs(err, repository.ErrNotFound)
}

func TestGormRepository_Reaction(t *testing.T) {
	t.Parallel()
	repo, assert, require, user := setupWithUser(t, common)
	ch := mustMakeChannel(t, repo, user.ID)
	msg := mustMakeMessage(t, repo, user.ID, ch.ID)

	require.NoError(repo.AddReaction(msg.ID, user.ID, "👍"))

	t.Run("duplicate", func(t *testing.T) {
		assert.ErrorIs(repo.AddReaction(msg.ID, user.ID, "👍"), repository.ErrAlreadyExists)
	})

	t.Run("empty emoji", func(t *testing.T) {
		assert.ErrorIs(repo.AddReaction(msg.ID, user.ID, ""), repository.ErrNilID)
	})

	assert.NoError(repo.RemoveReaction(msg.ID, user.ID, "👍"))

	t.Run("missing reaction", func(t *testing.T) {
		assert.ErrorIs(repo.RemoveReaction(msg.ID, user.ID, "👍"), repository.ErrNotFound)
	})
}
