package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"churrasco/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_Matches(t *testing.T) {
	record := map[string]any{"conversation_id": float64(12), "sender_id": float64(3)}

	assert.True(t, Subscription{Table: "messages"}.Matches("messages", record))
	assert.True(t, Subscription{Table: "messages", Column: "conversation_id", Value: "12"}.Matches("messages", record))
	assert.False(t, Subscription{Table: "messages", Column: "conversation_id", Value: "13"}.Matches("messages", record))
	assert.False(t, Subscription{Table: "bookings"}.Matches("messages", record))
	assert.False(t, Subscription{Table: "messages", Column: "missing", Value: "1"}.Matches("messages", record))
}

func TestNewEvent_DedupesAudience(t *testing.T) {
	ev, err := NewEvent(TableBookings, EventUpdate, map[string]int{"id": 1}, 5, 5, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 7}, ev.Audience)
}

func drain(c *client) []ServerFrame {
	var out []ServerFrame
	for {
		select {
		case raw := <-c.send:
			var f ServerFrame
			_ = json.Unmarshal(raw, &f)
			out = append(out, f)
		default:
			return out
		}
	}
}

func TestHub_DispatchOnlyToAudienceAndMatchingFilter(t *testing.T) {
	hub := NewHub(nil)

	member := newClient(1, nil)
	member.subscribe(Subscription{Table: TableMessages, Column: "conversation_id", Value: "9"})
	hub.register(member)

	otherConversation := newClient(1, nil)
	otherConversation.subscribe(Subscription{Table: TableMessages, Column: "conversation_id", Value: "10"})
	hub.register(otherConversation)

	outsider := newClient(2, nil)
	outsider.subscribe(Subscription{Table: TableMessages})
	hub.register(outsider)

	ev, err := NewEvent(TableMessages, EventInsert, map[string]any{"id": 1, "conversation_id": 9}, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, hub.Dispatch(ev))
	frames := drain(member)
	require.Len(t, frames, 1)
	assert.Equal(t, "change", frames[0].Kind)
	assert.Equal(t, TableMessages, frames[0].Event.Table)
	assert.Empty(t, frames[0].Event.Audience)

	assert.Empty(t, drain(otherConversation))
	assert.Empty(t, drain(outsider))
}

func TestHub_SlowClientIsSkipped(t *testing.T) {
	hub := NewHub(nil)
	c := newClient(1, nil)
	c.subscribe(Subscription{Table: TableBookings})
	hub.register(c)

	ev, err := NewEvent(TableBookings, EventUpdate, map[string]any{"id": 1}, 1)
	require.NoError(t, err)
	for i := 0; i < sendBuffer; i++ {
		hub.Dispatch(ev)
	}
	assert.Equal(t, 0, hub.Dispatch(ev))
}

func TestHub_UnregisterAndClose(t *testing.T) {
	hub := NewHub(nil)
	a := newClient(1, nil)
	b := newClient(1, nil)
	hub.register(a)
	hub.register(b)
	assert.Equal(t, 2, hub.OnlineCount())

	hub.unregister(a)
	hub.unregister(a)
	assert.True(t, hub.IsOnline(1))

	hub.Close()
	assert.False(t, hub.IsOnline(1))
	_, open := <-b.send
	assert.False(t, open)
}

func TestLocalBroker_Publish(t *testing.T) {
	hub := NewHub(nil)
	c := newClient(4, nil)
	c.subscribe(Subscription{Table: TableReviews})
	hub.register(c)

	Emit(context.Background(), NewLocalBroker(hub), nil, TableReviews, EventInsert, map[string]int{"id": 3}, 4)
	assert.Len(t, drain(c), 1)
}

func TestHandler_WebsocketRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.New("secret", time.Hour)
	hub := NewHub(nil)

	router := gin.New()
	NewHandler(hub, jwtService, nil, nil, nil).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	defer srv.Close()

	token, err := jwtService.GenerateToken(42, "client")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{
		"action": "subscribe", "table": TableBookings, "column": "id", "value": "5",
	}))

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ack ServerFrame
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "subscribed", ack.Kind)

	ev, err := NewEvent(TableBookings, EventUpdate, map[string]any{"id": 5, "status": "confirmed"}, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Dispatch(ev))

	var got ServerFrame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "change", got.Kind)
	assert.Equal(t, EventUpdate, got.Event.Type)
	assert.Contains(t, string(got.Event.Record), "confirmed")
}

func TestHandler_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(NewHub(nil), jwt.New("secret", time.Hour), nil, nil, nil).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_MISSING")
}
