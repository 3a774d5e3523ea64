package bus

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/leandro-lugaresi/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/strandchat/strand/event"
)

func TestLocalPublishSubscribe(t *testing.T) {
	t.Parallel()

	b := NewLocal(hub.New(), zap.NewNop())

	received := make(chan *event.Envelope, 8)
	require.NoError(t, b.Subscribe(func(ev *event.Envelope) {
		received <- ev
	}))

	uid := uuid.Must(uuid.NewV4())
	err := b.Publish(context.Background(), &event.Envelope{
		Type: event.Presence,
		Body: &event.PresenceBody{UserID: uid, Username: "alice", Status: "online"},
	})
	require.NoError(t, err)

	select {
	case ev := <-received:
		assert.Equal(t, event.Presence, ev.Type)
		body := ev.Body.(*event.PresenceBody)
		assert.Equal(t, uid, body.UserID)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestLocalSubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	b := NewLocal(hub.New(), zap.NewNop())

	received := make(chan *event.Envelope, 8)
	require.NoError(t, b.Subscribe(func(ev *event.Envelope) {
		received <- ev
	}))
	// 2度目は何もしない
	require.NoError(t, b.Subscribe(func(_ *event.Envelope) {
		t.Error("second handler must not be installed")
	}))

	require.NoError(t, b.Publish(context.Background(), &event.Envelope{
		Type: event.Typing,
		Body: &event.TypingBody{ChannelID: uuid.Must(uuid.NewV4()), UserID: uuid.Must(uuid.NewV4())},
	}))

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestLocalClose(t *testing.T) {
	t.Parallel()

	b := NewLocal(hub.New(), zap.NewNop())
	require.NoError(t, b.Subscribe(func(_ *event.Envelope) {}))
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Close(), ErrAlreadyClosed)
	assert.ErrorIs(t, b.Subscribe(func(_ *event.Envelope) {}), ErrAlreadyClosed)
}
