package devpeer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/voice/protocol"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Options{
		APIKey:    "dev-key",
		Secret:    []byte("test-secret"),
		TicketTTL: time.Minute,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func mintTicketURL(t *testing.T, srv *httptest.Server, apiKey string) (string, int) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/voice/session",
		strings.NewReader(`{"privileged":false}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.URL, resp.StatusCode
}

func TestServer_MintTicket(t *testing.T) {
	_, srv := newTestServer(t)

	url, status := mintTicketURL(t, srv, "dev-key")

	require.Equal(t, http.StatusOK, status)
	require.Contains(t, url, "/ws/voice?token=")

	token := url[strings.Index(url, "token=")+len("token="):]
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
}

func TestServer_MintTicketRejectsBadKey(t *testing.T) {
	_, srv := newTestServer(t)

	_, status := mintTicketURL(t, srv, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, status)

	_, status = mintTicketURL(t, srv, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestServer_InvalidTokenGetsAuthClose(t *testing.T) {
	_, srv := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/voice?token=bogus"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "upgrade succeeds; rejection arrives as a close code")
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %v", err)
	assert.Equal(t, closeAuthRejected, closeErr.Code)
}

func TestServer_ScriptedTurn(t *testing.T) {
	_, srv := newTestServer(t)
	url, status := mintTicketURL(t, srv, "dev-key")
	require.Equal(t, http.StatusOK, status)

	require.True(t, strings.HasPrefix(url, "ws://"))
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	send := func(typ string) {
		data, err := protocol.EncodeControl(typ)
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
	}

	send(protocol.TypeStart)
	send(protocol.TypeStop)

	seen := map[string]bool{}
	binary := 0
	deadline := time.Now().Add(5 * time.Second)
	for !seen["idle"] {
		require.NoError(t, conn.SetReadDeadline(deadline))
		typ, data, err := conn.ReadMessage()
		require.NoError(t, err, "turn did not complete; saw %v", seen)
		if typ == websocket.BinaryMessage {
			binary++
			continue
		}
		msg, err := protocol.Decode(data)
		require.NoError(t, err)
		switch m := msg.(type) {
		case protocol.StateMessage:
			seen[m.State] = true
		case protocol.TranscriptMessage:
			seen[m.Type] = true
		case protocol.ToolCallMessage:
			seen[protocol.TypeToolCall] = true
			assert.Equal(t, "search_documents", m.Call.Name)
		case protocol.ToolResultMessage:
			seen[protocol.TypeToolResult] = true
			assert.True(t, m.Result.Success)
		case protocol.UIActionMessage:
			seen[protocol.TypeUIAction] = true
			assert.Equal(t, protocol.ActionOpenDocument, m.Action.Type)
		}
	}

	for _, want := range []string{
		"listening", "processing", "speaking", "idle",
		protocol.TypeASRFinal, protocol.TypeAgentTextFinal,
		protocol.TypeToolCall, protocol.TypeToolResult, protocol.TypeUIAction,
	} {
		assert.True(t, seen[want], "missing %s", want)
	}
	assert.Greater(t, binary, 0, "synthesized speech frames expected")
}
