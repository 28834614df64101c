package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestClient 创建不带真实连接的测试客户端
func newTestClient(hub *Hub, userID uint) *Client {
	c := NewClient(hub, nil, userID)
	hub.registerClient(c)
	return c
}

// drain 丢弃客户端已收到的消息
func drain(c *Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}

// TestHub_NotifyMatch 测试对局事件只推送给订阅者
func TestHub_NotifyMatch(t *testing.T) {
	hub := NewHub(zap.NewNop())

	subscriber := newTestClient(hub, 1)
	outsider := newTestClient(hub, 2)
	drain(subscriber)
	drain(outsider)

	subscriber.Subscribe(100)

	hub.NotifyMatch(MessageTypeMatchResolved, 100, map[string]interface{}{
		"match_id": 100,
	})

	select {
	case data := <-subscriber.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeMatchResolved, msg.Type)
		assert.Equal(t, uint(100), msg.MatchID)
	default:
		t.Fatal("订阅者未收到对局事件")
	}

	select {
	case <-outsider.Send:
		t.Fatal("未订阅的客户端不应收到对局事件")
	default:
	}
}

// TestHub_SendToUser 测试按用户推送
func TestHub_SendToUser(t *testing.T) {
	hub := NewHub(zap.NewNop())

	client := newTestClient(hub, 1)
	drain(client)

	err := hub.SendToUser(1, &Message{Type: MessageTypeBalanceUpdate})
	assert.NoError(t, err)
	assert.Len(t, client.Send, 1)

	err = hub.SendToUser(99, &Message{Type: MessageTypeBalanceUpdate})
	assert.ErrorIs(t, err, ErrUserNotConnected)
}

// TestHub_UnregisterClient 测试注销后客户端不可达
func TestHub_UnregisterClient(t *testing.T) {
	hub := NewHub(zap.NewNop())

	client := newTestClient(hub, 1)
	assert.Equal(t, 1, hub.GetOnlineCount())

	hub.unregisterClient(client)
	assert.Equal(t, 0, hub.GetOnlineCount())
	assert.Empty(t, hub.GetOnlineUsers())

	err := hub.SendToClient(client.ID, &Message{Type: MessageTypePing})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

// TestParseMatchID 测试订阅消息的对局ID解析
func TestParseMatchID(t *testing.T) {
	id, ok := parseMatchID(json.RawMessage(`{"match_id":42}`))
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	id, ok = parseMatchID(json.RawMessage(`42`))
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = parseMatchID(json.RawMessage(`{}`))
	assert.False(t, ok)
}
