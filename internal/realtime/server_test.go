package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosoxd3/f90-music/internal/engagement"
	"github.com/sosoxd3/f90-music/internal/storage"
)

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(msg, &out))
	return out
}

func TestEngagementEventReachesAllClients(t *testing.T) {
	store := engagement.NewStore(storage.NewMemStore(), engagement.NewBus())

	hub := NewHub()
	go hub.Run()

	srv := NewServer(hub, store.Bus(), log.New(os.Stderr))
	cancel := srv.RunBusSubscriber()
	defer cancel()

	httpSrv := httptest.NewServer(srv.Router())
	defer httpSrv.Close()

	// Two independent views of the same track.
	viewA := dialWS(t, httpSrv.URL)
	viewB := dialWS(t, httpSrv.URL)

	assert.Equal(t, "welcome", readEvent(t, viewA)["type"])
	assert.Equal(t, "welcome", readEvent(t, viewB)["type"])

	// Registration races the broadcast; give the hub a beat.
	time.Sleep(50 * time.Millisecond)

	store.ToggleLike("vid1")

	for _, conn := range []*websocket.Conn{viewA, viewB} {
		ev := readEvent(t, conn)
		assert.Equal(t, "engagement", ev["type"])
		assert.Equal(t, "vid1", ev["trackId"])
		assert.Equal(t, "liked", ev["field"])
		assert.Equal(t, true, ev["newValue"])
	}
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := NewServer(hub, engagement.NewBus(), log.New(os.Stderr))
	httpSrv := httptest.NewServer(srv.Router())
	defer httpSrv.Close()

	conn := dialWS(t, httpSrv.URL)
	_ = readEvent(t, conn) // welcome
	time.Sleep(50 * time.Millisecond)

	hub.broadcast <- []byte(`{"type":"engagement","trackId":"x"}`)
	ev := readEvent(t, conn)
	assert.Equal(t, "x", ev["trackId"])
}
