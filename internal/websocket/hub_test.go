package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"teamcollab-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func join(t *testing.T, hub *Hub, conversationId int64, buffer int) *Client {
	c := &Client{ID: uuid.New(), Hub: hub, UserID: 1, ConversationID: conversationId, Send: make(chan []byte, buffer)}
	before := hub.roomSize(conversationId)
	hub.register <- c
	require.Eventually(t, func() bool { return hub.roomSize(conversationId) == before+1 }, time.Second, 5*time.Millisecond)
	return c
}

func TestHub_PushReachesOnlyTheConversationRoom(t *testing.T) {
	hub := startHub(t)
	inRoom := join(t, hub, 10, 4)
	otherRoom := join(t, hub, 11, 4)

	hub.Push(10, TypeThinking, map[string]interface{}{"assistant_id": 7})

	select {
	case raw := <-inRoom.Send:
		var frame struct {
			Type           MessageType            `json:"type"`
			ConversationId int64                  `json:"conversation_id"`
			Data           map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, TypeThinking, frame.Type)
		assert.Equal(t, int64(10), frame.ConversationId)
		assert.Equal(t, float64(7), frame.Data["assistant_id"])
	case <-time.After(time.Second):
		t.Fatal("frame not delivered")
	}

	assert.Len(t, otherRoom.Send, 0)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := join(t, hub, 10, 1)

	hub.unregister <- c
	require.Eventually(t, func() bool { return hub.roomSize(10) == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_FullBufferDropsClient(t *testing.T) {
	hub := startHub(t)
	c := join(t, hub, 10, 1)

	hub.Push(10, TypeMessage, "first")
	hub.Push(10, TypeMessage, "second")

	require.Eventually(t, func() bool { return hub.roomSize(10) == 0 }, time.Second, 5*time.Millisecond)

	first, open := <-c.Send
	require.True(t, open)
	assert.Contains(t, string(first), `"first"`)
	_, open = <-c.Send
	assert.False(t, open)
}
