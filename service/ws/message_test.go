package ws

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandchat/strand/event"
)

func TestDecodeClientMessage(t *testing.T) {
	t.Parallel()
	cid := uuid.Must(uuid.NewV4())
	mid := uuid.Must(uuid.NewV4())
	uid := uuid.Must(uuid.NewV4())

	t.Run("typing", func(t *testing.T) {
		t.Parallel()
		v, err := decodeClientMessage([]byte(`{"type":"typing","channelId":"` + cid.String() + `","isDM":true}`))
		require.NoError(t, err)
		req, ok := v.(*typingRequest)
		require.True(t, ok)
		assert.Equal(t, cid, req.ChannelID)
		assert.True(t, req.IsDM)
	})

	t.Run("mark_read", func(t *testing.T) {
		t.Parallel()
		v, err := decodeClientMessage([]byte(`{"type":"mark_read","channelId":"` + cid.String() + `","messageId":"` + mid.String() + `"}`))
		require.NoError(t, err)
		req, ok := v.(*markReadRequest)
		require.True(t, ok)
		assert.Equal(t, cid, req.ChannelID)
		assert.Equal(t, mid, req.MessageID)
	})

	t.Run("subscribe_to_presence", func(t *testing.T) {
		t.Parallel()
		v, err := decodeClientMessage([]byte(`{"type":"subscribe_to_presence","userId":"` + uid.String() + `"}`))
		require.NoError(t, err)
		req, ok := v.(*presenceSubscriptionRequest)
		require.True(t, ok)
		assert.Equal(t, uid, req.UserID)
		assert.False(t, req.unsubscribe)
	})

	t.Run("unsubscribe_from_presence", func(t *testing.T) {
		t.Parallel()
		v, err := decodeClientMessage([]byte(`{"type":"unsubscribe_from_presence","userId":"` + uid.String() + `"}`))
		require.NoError(t, err)
		req, ok := v.(*presenceSubscriptionRequest)
		require.True(t, ok)
		assert.True(t, req.unsubscribe)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		_, err := decodeClientMessage([]byte(`{"type":"dance"}`))
		assert.ErrorIs(t, err, ErrUnknownFrameType)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		_, err := decodeClientMessage([]byte(`{`))
		assert.Error(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()
		_, err := decodeClientMessage([]byte(`{"type":"typing"}`))
		assert.Error(t, err)

		_, err = decodeClientMessage([]byte(`{"type":"mark_read","channelId":"` + cid.String() + `"}`))
		assert.Error(t, err)

		_, err = decodeClientMessage([]byte(`{"type":"subscribe_to_presence"}`))
		assert.Error(t, err)
	})
}

func TestMakeServerMessage(t *testing.T) {
	t.Parallel()
	cid := uuid.Must(uuid.NewV4())
	uid := uuid.Must(uuid.NewV4())

	t.Run("connected", func(t *testing.T) {
		t.Parallel()
		data, err := makeServerMessage(ServerConnected, uid)
		require.NoError(t, err)

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, ServerConnected, m["type"])
		assert.Equal(t, uid.String(), m["userId"])
	})

	t.Run("typing flattens body", func(t *testing.T) {
		t.Parallel()
		data, err := makeServerMessage(event.Typing, &event.TypingBody{
			ChannelID: cid,
			UserID:    uid,
			Username:  "takashi",
		})
		require.NoError(t, err)

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, event.Typing, m["type"])
		assert.Equal(t, cid.String(), m["channelId"])
		assert.Equal(t, "takashi", m["username"])
		// 宛先解決用の入力がワイヤに漏れない
		assert.NotContains(t, m, "isDM")
	})

	t.Run("presence", func(t *testing.T) {
		t.Parallel()
		data, err := makeServerMessage(event.Presence, &event.PresenceBody{
			UserID:   uid,
			Username: "takashi",
			Status:   "online",
		})
		require.NoError(t, err)

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, "online", m["status"])
	})

	t.Run("wrong body type", func(t *testing.T) {
		t.Parallel()
		_, err := makeServerMessage(event.Typing, &event.PresenceBody{})
		assert.Error(t, err)
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()
		_, err := makeServerMessage(event.Presence, &event.PresenceBody{
			UserID: uid,
			Status: "sleeping",
		})
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		_, err := makeServerMessage("dance", nil)
		assert.ErrorIs(t, err, ErrUnknownFrameType)
	})
}

func TestMakeErrorMessage(t *testing.T) {
	t.Parallel()
	var m map[string]string
	require.NoError(t, json.Unmarshal(makeErrorMessage("bad frame"), &m))
	assert.Equal(t, map[string]string{"error": "bad frame"}, m)
}
