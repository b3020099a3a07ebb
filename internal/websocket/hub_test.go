package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakupscli/internal/config"
	"breakupscli/internal/operations"
	"breakupscli/pkg/contracts/domain"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Wait for the hub to register the connection.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg, &decoded))
	return decoded
}

func TestHub_BroadcastsRunLifecycle(t *testing.T) {
	hub := NewHub(nil, config.WebSocketConfig{})
	conn := dialHub(t, hub)

	hub.RunStarted("run-1", "Acme Client")
	started := readEvent(t, conn)
	assert.Equal(t, "run_started", started["type"])
	assert.Equal(t, "run-1", started["run_id"])
	assert.Equal(t, "Acme Client", started["client"])

	state := operations.NewRunState("run-1")
	state.StartStage(operations.StageParsing)
	hub.StageChanged(state.Snapshot())
	changed := readEvent(t, conn)
	assert.Equal(t, "stage_changed", changed["type"])
	snapshot, ok := changed["snapshot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "parsing", snapshot["stage"])

	hub.RunFinished("run-1", domain.RunResult{Success: true, FileName: "Breakups_Report_Acme_Client_2026-08-01.zip"})
	finished := readEvent(t, conn)
	assert.Equal(t, "run_finished", finished["type"])
	result, ok := finished["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["success"])
}

func TestHub_DisconnectedClientIsRemoved(t *testing.T) {
	hub := NewHub(nil, config.WebSocketConfig{})
	conn := dialHub(t, hub)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	// Broadcasting to an empty hub is a no-op, not a panic.
	hub.RunStarted("run-2", "Nobody Listening")
}
