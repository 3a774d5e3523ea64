package presence

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/guregu/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/repository"
)

type fakeRepo struct {
	users  map[uuid.UUID]*model.User
	counts map[uuid.UUID]int64
}

func (r *fakeRepo) GetUser(id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) CountUserConnections(userID uuid.UUID) (int64, error) {
	return r.counts[userID], nil
}

func makeFakeRepo() (*fakeRepo, *model.User) {
	u := &model.User{ID: uuid.Must(uuid.NewV4()), Name: "takashi"}
	return &fakeRepo{
		users:  map[uuid.UUID]*model.User{u.ID: u},
		counts: map[uuid.UUID]int64{},
	}, u
}

func TestAggregator_Snapshot(t *testing.T) {
	t.Parallel()

	t.Run("derived offline", func(t *testing.T) {
		t.Parallel()
		repo, u := makeFakeRepo()
		a := NewAggregator(repo)

		body, err := a.Snapshot(u.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PresenceOffline, body.Status)
		assert.Equal(t, u.Name, body.Username)
	})

	t.Run("derived online", func(t *testing.T) {
		t.Parallel()
		repo, u := makeFakeRepo()
		repo.counts[u.ID] = 3
		a := NewAggregator(repo)

		body, err := a.Snapshot(u.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PresenceOnline, body.Status)
	})

	t.Run("override wins over connections", func(t *testing.T) {
		t.Parallel()
		repo, u := makeFakeRepo()
		repo.counts[u.ID] = 3
		u.PresenceOverride = null.StringFrom(model.PresenceOffline)
		a := NewAggregator(repo)

		body, err := a.Snapshot(u.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PresenceOffline, body.Status)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		repo, _ := makeFakeRepo()
		a := NewAggregator(repo)

		_, err := a.Snapshot(uuid.Must(uuid.NewV4()))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestAggregator_Subscriptions(t *testing.T) {
	t.Parallel()
	repo, u := makeFakeRepo()
	a := NewAggregator(repo)

	_, err := a.Subscribe("conn1", u.ID)
	require.NoError(t, err)
	_, err = a.Subscribe("conn2", u.ID)
	require.NoError(t, err)

	watchers := a.Watchers(u.ID)
	assert.Equal(t, 2, watchers.Len())
	assert.True(t, watchers.Contains("conn1"))
	assert.True(t, watchers.Contains("conn2"))

	a.Unsubscribe("conn1", u.ID)
	watchers = a.Watchers(u.ID)
	assert.Equal(t, 1, watchers.Len())
	assert.False(t, watchers.Contains("conn1"))

	// 未登録の解除は何も起きない
	a.Unsubscribe("conn1", u.ID)
	a.Unsubscribe("unknown", uuid.Must(uuid.NewV4()))
	assert.Equal(t, 1, a.Watchers(u.ID).Len())
}

func TestAggregator_RemoveConnection(t *testing.T) {
	t.Parallel()
	repo, u := makeFakeRepo()
	other := &model.User{ID: uuid.Must(uuid.NewV4()), Name: "yuki"}
	repo.users[other.ID] = other
	a := NewAggregator(repo)

	_, err := a.Subscribe("conn1", u.ID)
	require.NoError(t, err)
	_, err = a.Subscribe("conn1", other.ID)
	require.NoError(t, err)
	_, err = a.Subscribe("conn2", u.ID)
	require.NoError(t, err)

	a.RemoveConnection("conn1")

	assert.False(t, a.Watchers(u.ID).Contains("conn1"))
	assert.True(t, a.Watchers(u.ID).Contains("conn2"))
	assert.Equal(t, 0, a.Watchers(other.ID).Len())

	// 購読の無い接続の削除は何も起きない
	a.RemoveConnection("unknown")
}

// gatedRepo CountUserConnectionsをテスト側の合図まで停止させる
type gatedRepo struct {
	*fakeRepo
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) CountUserConnections(userID uuid.UUID) (int64, error) {
	r.entered <- struct{}{}
	<-r.release
	return r.fakeRepo.CountUserConnections(userID)
}

func TestAggregator_SubscribeRegistersBeforeSnapshot(t *testing.T) {
	t.Parallel()
	inner, u := makeFakeRepo()
	repo := &gatedRepo{fakeRepo: inner, entered: make(chan struct{}), release: make(chan struct{})}
	a := NewAggregator(repo)

	type result struct {
		body *event.PresenceBody
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := a.Subscribe("conn1", u.ID)
		done <- result{body, err}
	}()

	// スナップショット読み出し中でも購読は既に見える。この間に発行された
	// プレゼンスイベントはconn1にも配送される
	<-repo.entered
	assert.True(t, a.Watchers(u.ID).Contains("conn1"))

	// 読み出し中に対象がオンラインになった場合、スナップショットは
	// 遷移後の値に収束する
	inner.counts[u.ID] = 1
	close(repo.release)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, model.PresenceOnline, r.body.Status)
}

func TestAggregator_SubscribeUnknownUser(t *testing.T) {
	t.Parallel()
	repo, _ := makeFakeRepo()
	a := NewAggregator(repo)

	target := uuid.Must(uuid.NewV4())
	_, err := a.Subscribe("conn1", target)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// 失敗した購読は登録されない
	assert.Equal(t, 0, a.Watchers(target).Len())
}
