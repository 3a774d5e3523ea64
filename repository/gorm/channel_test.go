package gorm

import (
	"testing"

	"github.com/gofrs/uuid"

	"github.com/strandchat/strand/repository"
)

func TestGormRepository_CreateChannel(t *testing.T) {
	t.Parallel()
	repo, assert, _ := setup(t, common)

	creator := mustMakeUser(t, repo, rand)
	member := mustMakeUser(t, repo, rand)

	// 作成者はメンバー指定に含まれていなくても自動で入る
	ch := mustMakeChannel(t, repo, creator.ID, member.ID)
	assert.False(ch.IsDM)

	ids, err := repo.GetMemberIDs(ch.ID)
	if assert.NoError(err) {
		assert.ElementsMatch([]uuid.UUID{creator.ID, member.ID}, ids)
	}

	t.Run("nil creator", func(t *testing.T) {
		t.Parallel()
		_, err := repo.CreateChannel("ch", uuid.Nil, false)
		assert.ErrorIs(err, repository.ErrNilID)
	})
}

func TestGormRepository_ChannelMembership(t *testing.T) {
	t.Parallel()
	repo, assert, require := setup(t, common)

	creator := mustMakeUser(t, repo, rand)
	member := mustMakeUser(t, repo, rand)
	outsider := mustMakeUser(t, repo, rand)
	ch := mustMakeChannel(t, repo, creator.ID, member.ID)

	ok, err := repo.IsMember(ch.ID, member.ID)
	require.NoError(err)
	assert.True(ok)

	ok, err = repo.IsMember(ch.ID, outsider.ID)
	require.NoError(err)
	assert.False(ok)

	// 脱退は論理削除で、メンバー一覧からも消える
	require.NoError(repo.RemoveMember(ch.ID, member.ID))
	ok, err = repo.IsMember(ch.ID, member.ID)
	require.NoError(err)
	assert.False(ok)
	ids, err := repo.GetMemberIDs(ch.ID)
	require.NoError(err)
	assert.ElementsMatch([]uuid.UUID{creator.ID}, ids)

	// 再参加で復活する
	require.NoError(repo.AddMember(ch.ID, member.ID))
	ok, err = repo.IsMember(ch.ID, member.ID)
	require.NoError(err)
	assert.True(ok)

	t.Run("re-add existing member", func(t *testing.T) {
		assert.ErrorIs(repo.AddMember(ch.ID, member.ID), repository.ErrAlreadyExists)
	})
}

func TestGormRepository_SetReadCursor(t *testing.T) {
	t.Parallel()
	repo, assert, require := setup(t, common)

	creator := mustMakeUser(t, repo, rand)
	member := mustMakeUser(t, repo, rand)
	outsider := mustMakeUser(t, repo, rand)
	ch := mustMakeChannel(t, repo, creator.ID, member.ID)
	other := mustMakeChannel(t, repo, creator.ID)
	msg := mustMakeMessage(t, repo, creator.ID, ch.ID)
	foreign := mustMakeMessage(t, repo, creator.ID, other.ID)

	assert.NoError(repo.SetReadCursor(ch.ID, member.ID, msg.ID))

	t.Run("message of other channel", func(t *testing.T) {
		assert.ErrorIs(repo.SetReadCursor(ch.ID, member.ID, foreign.ID), repository.ErrNotFound)
	})

	t.Run("not a member", func(t *testing.T) {
		assert.ErrorIs(repo.SetReadCursor(ch.ID, outsider.ID, msg.ID), repository.ErrNotMember)
	})

	t.Run("nil ids", func(t *testing.T) {
		assert.ErrorIs(repo.SetReadCursor(uuid.Nil, member.ID, msg.ID), repository.ErrNilID)
	})

	// 脱退済みメンバーはカーソルを更新できない
	require.NoError(repo.RemoveMember(ch.ID, member.ID))
	assert.ErrorIs(repo.SetReadCursor(ch.ID, member.ID, msg.ID), repository.ErrNotMember)
}
