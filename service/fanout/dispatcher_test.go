package fanout

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/leandro-lugaresi/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/strandchat/strand/bus"
	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/repository"
	"github.com/strandchat/strand/service/presence"
	"github.com/strandchat/strand/service/ws"
)

type stubSession struct {
	key    string
	userID uuid.UUID
}

func (s *stubSession) Key() string       { return s.key }
func (s *stubSession) UserID() uuid.UUID { return s.userID }

type writtenMessage struct {
	t    string
	body interface{}
	hits []string // targetFuncに該当したセッションキー
}

type fakeStreamer struct {
	sessions []*stubSession
	written  chan writtenMessage
}

func (f *fakeStreamer) WriteMessage(t string, body interface{}, targetFunc ws.TargetFunc) {
	m := writtenMessage{t: t, body: body}
	for _, s := range f.sessions {
		if targetFunc(s) {
			m.hits = append(m.hits, s.key)
		}
	}
	f.written <- m
}

type fakeRepo struct {
	users       map[uuid.UUID]*model.User
	connections map[uuid.UUID][]string // channelID → 接続キー
}

func (r *fakeRepo) GetUser(id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) CountUserConnections(uuid.UUID) (int64, error) { return 0, nil }

func (r *fakeRepo) GetChannelConnections(channelID, _ uuid.UUID) ([]string, error) {
	return r.connections[channelID], nil
}

func setupDispatcher(t *testing.T) (*fakeRepo, *fakeStreamer, *presence.Aggregator, bus.Bus) {
	t.Helper()

	repo := &fakeRepo{
		users:       map[uuid.UUID]*model.User{},
		connections: map[uuid.UUID][]string{},
	}
	streamer := &fakeStreamer{written: make(chan writtenMessage, 16)}
	agg := presence.NewAggregator(repo)
	b := bus.NewLocal(hub.New(), zap.NewNop())
	t.Cleanup(func() { _ = b.Close() })

	_, err := NewDispatcher(uuid.Must(uuid.NewV4()), repo, streamer, agg, b, zap.NewNop())
	require.NoError(t, err)
	return repo, streamer, agg, b
}

func receiveWritten(t *testing.T, streamer *fakeStreamer) writtenMessage {
	t.Helper()
	select {
	case m := <-streamer.written:
		return m
	case <-time.After(time.Second):
		t.Fatal("no message was written")
		return writtenMessage{}
	}
}

func TestDispatcher_ChannelEvent(t *testing.T) {
	t.Parallel()
	repo, streamer, _, b := setupDispatcher(t)

	cid := uuid.Must(uuid.NewV4())
	uid := uuid.Must(uuid.NewV4())
	repo.connections[cid] = []string{"conn1", "conn2"}
	streamer.sessions = []*stubSession{
		{key: "conn1", userID: uid},
		{key: "conn2", userID: uuid.Must(uuid.NewV4())},
		{key: "conn3", userID: uuid.Must(uuid.NewV4())},
	}

	require.NoError(t, b.Publish(context.Background(), &event.Envelope{
		Type: event.Typing,
		Body: &event.TypingBody{ChannelID: cid, UserID: uid, Username: "takashi"},
	}))

	m := receiveWritten(t, streamer)
	assert.Equal(t, event.Typing, m.t)
	assert.ElementsMatch(t, []string{"conn1", "conn2"}, m.hits)
}

func TestDispatcher_ChannelEventWithoutConnections(t *testing.T) {
	t.Parallel()
	repo, streamer, _, b := setupDispatcher(t)

	cid := uuid.Must(uuid.NewV4())
	other := uuid.Must(uuid.NewV4())
	repo.connections[other] = []string{"conn1"}

	// メンバーの接続が無いチャンネルのイベントは書き込まれない
	require.NoError(t, b.Publish(context.Background(), &event.Envelope{
		Type: event.NewMessage,
		Body: &event.MessageBody{
			ChannelID: cid,
			Message: event.MessagePayload{
				ID:       uuid.Must(uuid.NewV4()),
				UserID:   uuid.Must(uuid.NewV4()),
				Username: "takashi",
			},
		},
	}))

	select {
	case m := <-streamer.written:
		t.Fatalf("unexpected write: %+v", m)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcher_PresenceEvent(t *testing.T) {
	t.Parallel()
	repo, streamer, agg, b := setupDispatcher(t)

	target := &model.User{ID: uuid.Must(uuid.NewV4()), Name: "takashi"}
	repo.users[target.ID] = target
	streamer.sessions = []*stubSession{
		{key: "watcher", userID: uuid.Must(uuid.NewV4())},
		{key: "bystander", userID: uuid.Must(uuid.NewV4())},
	}

	_, err := agg.Subscribe("watcher", target.ID)
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), &event.Envelope{
		Type: event.Presence,
		Body: &event.PresenceBody{UserID: target.ID, Username: target.Name, Status: model.PresenceOnline},
	}))

	m := receiveWritten(t, streamer)
	assert.Equal(t, event.Presence, m.t)
	assert.Equal(t, []string{"watcher"}, m.hits)
}
