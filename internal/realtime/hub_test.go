package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case msg := <-c.send:
		var ev envelope
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	default:
		t.Fatal("expected a queued message")
		return envelope{}
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %s", msg)
	default:
	}
}

func TestPublishRoutesByChannel(t *testing.T) {
	h := NewHub()
	buyer := NewClient(nil)
	admin := NewClient(nil)
	other := NewClient(nil)
	h.Subscribe(buyer, UserChannel("buyer-1"))
	h.Subscribe(admin, AdminRoom)
	h.Subscribe(other, UserChannel("buyer-2"))

	h.Publish("order_updated", map[string]int{"currentStage": 3}, []string{AdminRoom, UserChannel("buyer-1")})

	ev := recv(t, buyer)
	assert.Equal(t, "order_updated", ev.Event)
	recv(t, admin)
	assertEmpty(t, other)
}

func TestPublishToUnknownChannelIsSilent(t *testing.T) {
	h := NewHub()
	c := NewClient(nil)
	h.Subscribe(c, UserChannel("u-1"))

	h.Publish("order_created", nil, []string{UserChannel("nobody")})
	assertEmpty(t, c)
}

func TestClientOnSeveralChannelsGetsRoomSemantics(t *testing.T) {
	h := NewHub()
	adminWithOrder := NewClient(nil)
	h.Subscribe(adminWithOrder, AdminRoom, UserChannel("u-1"))

	// published to both of the client's channels: delivered once per room
	h.Publish("order_updated", nil, []string{AdminRoom, UserChannel("u-1")})
	recv(t, adminWithOrder)
	recv(t, adminWithOrder)
	assertEmpty(t, adminWithOrder)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	c := NewClient(nil)
	h.Subscribe(c, UserChannel("u-1"), AdminRoom)

	h.Unsubscribe(c)
	h.Publish("order_deleted", nil, []string{UserChannel("u-1"), AdminRoom})

	_, open := <-c.send
	assert.False(t, open, "send queue closes on unsubscribe")

	// idempotent
	h.Unsubscribe(c)
}

func TestSlowConsumerIsSkipped(t *testing.T) {
	h := NewHub()
	slow := NewClient(nil)
	h.Subscribe(slow, AdminRoom)

	// fill the buffer past capacity; Publish must never block
	for i := 0; i < sendBuffer+5; i++ {
		h.Publish("order_updated", i, []string{AdminRoom})
	}

	for i := 0; i < sendBuffer; i++ {
		recv(t, slow)
	}
	assertEmpty(t, slow)
}
