package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/protocol"
	"github.com/cory-johannsen/warband/internal/transport"
)

// echoHandler answers every envelope with the same type and payload.
type echoHandler struct {
	mu           sync.Mutex
	sessions     []*session.Session
	disconnected chan string
}

func newEchoHandler() *echoHandler {
	return &echoHandler{disconnected: make(chan string, 8)}
}

func (h *echoHandler) Connect(sess *session.Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = append(h.sessions, sess)
	return nil
}

func (h *echoHandler) Handle(_ context.Context, sess *session.Session, env protocol.Envelope) {
	_ = sess.Send(env)
}

func (h *echoHandler) Disconnect(_ context.Context, sess *session.Session) {
	sess.Close()
	h.disconnected <- sess.ID()
}

func (h *echoHandler) session(t *testing.T) *session.Session {
	t.Helper()
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.sessions) > 0
	}, 2*time.Second, 5*time.Millisecond)
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[0]
}

func testConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		Host:            "127.0.0.1",
		Port:            0,
		Path:            "/ws",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    time.Second,
		MaxMessageBytes: 1024,
		SendBuffer:      16,
	}
}

func start(t *testing.T, h transport.Handler, health transport.HealthFunc) (*httptest.Server, string) {
	t.Helper()
	srv := transport.NewServer(testConfig(), h, health, zap.NewNop())
	hs := httptest.NewServer(srv.Routes())
	t.Cleanup(hs.Close)
	return hs, "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *ws.Conn {
	t.Helper()
	c, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readFrame(t *testing.T, c *ws.Conn) []protocol.Envelope {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := c.ReadMessage()
	require.NoError(t, err)
	envs, err := protocol.Decode(frame)
	require.NoError(t, err)
	return envs
}

func TestServer_FrameRoundTrip(t *testing.T) {
	h := newEchoHandler()
	_, url := start(t, h, nil)
	c := dial(t, url)

	frame, err := protocol.Encode([]protocol.Envelope{
		protocol.Must(protocol.TypeMapList, nil),
		protocol.Must(protocol.TypeChat, protocol.ChatRequest{Chat: "hi"}),
	})
	require.NoError(t, err)
	require.NoError(t, c.WriteMessage(ws.TextMessage, frame))

	var got []protocol.Envelope
	for len(got) < 2 {
		got = append(got, readFrame(t, c)...)
	}
	require.Len(t, got, 2)
	assert.Equal(t, protocol.TypeMapList, got[0].Type)
	assert.Equal(t, protocol.TypeChat, got[1].Type)
}

func TestServer_SessionSendsReachClientInOrder(t *testing.T) {
	h := newEchoHandler()
	_, url := start(t, h, nil)
	c := dial(t, url)
	sess := h.session(t)

	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		require.NoError(t, sess.Send(protocol.Must(protocol.TypeEntDelete, protocol.EntDelete{ID: id})))
	}
	var got []string
	for len(got) < len(ids) {
		for _, env := range readFrame(t, c) {
			var del protocol.EntDelete
			require.NoError(t, env.Decode(&del))
			got = append(got, del.ID)
		}
	}
	assert.Equal(t, ids, got)
}

func TestServer_MalformedFrameIsDropped(t *testing.T) {
	h := newEchoHandler()
	_, url := start(t, h, nil)
	c := dial(t, url)

	require.NoError(t, c.WriteMessage(ws.TextMessage, []byte("not json")))
	require.NoError(t, c.WriteMessage(ws.TextMessage, []byte(`{"type":"map-list"}`)))

	got := readFrame(t, c)
	require.Len(t, got, 1)
	assert.Equal(t, protocol.TypeMapList, got[0].Type)
}

func TestServer_ClientCloseDisconnectsSession(t *testing.T) {
	h := newEchoHandler()
	_, url := start(t, h, nil)
	c := dial(t, url)
	sess := h.session(t)

	require.NoError(t, c.Close())
	select {
	case id := <-h.disconnected:
		assert.Equal(t, sess.ID(), id)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not disconnected")
	}
}

func TestServer_ClosedSessionHangsUp(t *testing.T) {
	h := newEchoHandler()
	_, url := start(t, h, nil)
	c := dial(t, url)
	sess := h.session(t)

	require.NoError(t, sess.Send(protocol.Must(protocol.TypeChat, protocol.ChatMessage{Chat: "bye", From: "Server"})))
	sess.Close()

	got := readFrame(t, c)
	require.Len(t, got, 1)
	_, _, err := c.ReadMessage()
	var closeErr *ws.CloseError
	require.True(t, errors.As(err, &closeErr), "got %v", err)
	assert.Equal(t, ws.CloseNormalClosure, closeErr.Code)

	select {
	case <-h.disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("session was not disconnected")
	}
}

func TestServer_OversizedFrameClosesConnection(t *testing.T) {
	h := newEchoHandler()
	_, url := start(t, h, nil)
	c := dial(t, url)

	big := `{"type":"chat","data":{"chat":"` + strings.Repeat("a", 2048) + `"}}`
	require.NoError(t, c.WriteMessage(ws.TextMessage, []byte(big)))

	select {
	case <-h.disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("session was not disconnected")
	}
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name   string
		health transport.HealthFunc
		want   int
	}{
		{name: "no checker", want: http.StatusOK},
		{name: "healthy", health: func(context.Context) error { return nil }, want: http.StatusOK},
		{name: "unhealthy", health: func(context.Context) error { return errors.New("db down") }, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs, _ := start(t, newEchoHandler(), tt.health)
			resp, err := http.Get(hs.URL + transport.HealthPath)
			require.NoError(t, err)
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestServer_StopClosesConnections(t *testing.T) {
	h := newEchoHandler()
	srv := transport.NewServer(testConfig(), h, nil, zap.NewNop())
	hs := httptest.NewServer(srv.Routes())
	defer hs.Close()
	c := dial(t, "ws"+strings.TrimPrefix(hs.URL, "http")+"/ws")
	h.session(t)

	srv.Stop()

	select {
	case <-h.disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("session was not disconnected")
	}
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := c.ReadMessage()
	assert.Error(t, err)
}
