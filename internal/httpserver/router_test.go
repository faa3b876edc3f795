package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdlsagar677/Social-Media/internal/delivery"
	"github.com/pdlsagar677/Social-Media/internal/domain"
	"github.com/pdlsagar677/Social-Media/internal/httpserver"
	"github.com/pdlsagar677/Social-Media/internal/presence"
	"github.com/pdlsagar677/Social-Media/internal/security"
	"github.com/pdlsagar677/Social-Media/internal/service"
	"github.com/pdlsagar677/Social-Media/internal/store/sqlite"
	"github.com/pdlsagar677/Social-Media/internal/ws"
)

// socialGraph is an in-memory stand-in for the post and follow collaborators.
type socialGraph struct {
	mu      sync.Mutex
	authors map[string]string
	follows map[[2]string]bool
}

func (g *socialGraph) Like(_ context.Context, postID, _ string) (string, error) {
	return g.author(postID)
}

func (g *socialGraph) Dislike(_ context.Context, postID, _ string) (string, error) {
	return g.author(postID)
}

func (g *socialGraph) author(postID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.authors[postID]
	if !ok {
		return "", &domain.NotFoundError{Resource: "post", ID: postID}
	}
	return a, nil
}

func (g *socialGraph) Toggle(_ context.Context, follower, target string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := [2]string{follower, target}
	g.follows[k] = !g.follows[k]
	return g.follows[k], nil
}

func (g *socialGraph) Profile(_ context.Context, userID string) (*domain.UserDetails, error) {
	return &domain.UserDetails{Username: "name-" + userID, ProfilePicture: userID + ".png"}, nil
}

type app struct {
	tokens   *security.TokenService
	registry *presence.Registry
	server   *httptest.Server
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	tokens := security.NewTokenService("test-secret", time.Hour)
	reg := presence.NewRegistry()
	disp := delivery.NewDispatcher(reg)
	msgs := service.NewMessageService(sqlite.NewMessageRepo(db), nil, 5000)
	chat := service.NewChatService(service.NewConversationService(sqlite.NewConversationRepo(db), msgs), msgs, disp)
	graph := &socialGraph{authors: map[string]string{"post-a": "A", "post-b": "B"}, follows: map[[2]string]bool{}}
	realtime := ws.NewServer(reg, disp, tokens, ws.Options{CookieName: "token", SendBuffer: 16})

	router := httpserver.NewRouter(httpserver.Deps{
		AppName:        "test",
		CORSOrigins:    []string{"http://localhost:3000"},
		AuthCookieName: "token",
		Tokens:         tokens,
		Chat:           chat,
		Social:         service.NewSocialService(graph, graph, graph, disp),
		Registry:       reg,
		Realtime:       realtime,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = realtime.Shutdown(ctx)
		srv.Close()
	})
	return &app{tokens: tokens, registry: reg, server: srv}
}

func (a *app) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := a.tokens.CreateForUser(userID)
	require.NoError(t, err)
	return tok
}

func (a *app) do(t *testing.T, method, path, userID string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: a.token(t, userID)})
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *app) connect(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	prev, _ := a.registry.Lookup(userID)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+a.token(t, userID))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(a.server.URL, "http")+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool {
		h, ok := a.registry.Lookup(userID)
		return ok && h != prev
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

type event struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

// nextEvent returns the next frame named name, or false if none arrives in wait.
func nextEvent(t *testing.T, conn *websocket.Conn, name string, wait time.Duration) (event, bool) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return event{}, false
		}
		var raw struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &raw))
		if raw.Event != name {
			continue
		}
		ev := event{Event: raw.Event}
		require.NoError(t, json.Unmarshal(raw.Payload, &ev.Payload))
		return ev, true
	}
}

func messageBodies(t *testing.T, resp map[string]any) []string {
	t.Helper()
	list, ok := resp["messages"].([]any)
	require.True(t, ok, "messages should be an array: %v", resp)
	var res []string
	for _, m := range list {
		res = append(res, m.(map[string]any)["message"].(string))
	}
	return res
}

func TestRequiresAuthentication(t *testing.T) {
	a := newApp(t)

	for _, path := range []string{"/api/v1/message/all/B", "/api/v1/message/online"} {
		status, body := a.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, map[string]any{"message": "User not authenticated", "success": false}, body)
	}

	status, _ := a.do(t, http.MethodPost, "/api/v1/message/send/B", "", map[string]string{"textMessage": "hi"})
	assert.Equal(t, http.StatusUnauthorized, status)

	t.Run("bearer header works too", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, a.server.URL+"/api/v1/message/all/B", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+a.token(t, "A"))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestFirstMessageStartsThread(t *testing.T) {
	a := newApp(t)

	status, body := a.do(t, http.MethodGet, "/api/v1/message/all/B", "A", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, messageBodies(t, body))

	status, body = a.do(t, http.MethodPost, "/api/v1/message/send/B", "A", map[string]string{"textMessage": "hello"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	created := body["newMessage"].(map[string]any)
	assert.Equal(t, "A", created["senderId"])
	assert.Equal(t, "B", created["receiverId"])
	assert.Equal(t, "hello", created["message"])
	assert.NotEmpty(t, created["_id"])
	assert.NotEmpty(t, created["createdAt"])

	_, body = a.do(t, http.MethodGet, "/api/v1/message/all/B", "A", nil)
	assert.Equal(t, []string{"hello"}, messageBodies(t, body))
}

func TestThreadKeepsOrderAcrossDirections(t *testing.T) {
	a := newApp(t)

	a.do(t, http.MethodPost, "/api/v1/message/send/B", "A", map[string]string{"textMessage": "one"})
	a.do(t, http.MethodPost, "/api/v1/message/send/C", "A", map[string]string{"textMessage": "elsewhere"})
	a.do(t, http.MethodPost, "/api/v1/message/send/B", "A", map[string]string{"textMessage": "two"})
	a.do(t, http.MethodPost, "/api/v1/message/send/A", "B", map[string]string{"textMessage": "three"})

	_, fromA := a.do(t, http.MethodGet, "/api/v1/message/all/B", "A", nil)
	_, fromB := a.do(t, http.MethodGet, "/api/v1/message/all/A", "B", nil)
	assert.Equal(t, []string{"one", "two", "three"}, messageBodies(t, fromA))
	assert.Equal(t, messageBodies(t, fromA), messageBodies(t, fromB))
}

func TestSendValidation(t *testing.T) {
	a := newApp(t)

	status, body := a.do(t, http.MethodPost, "/api/v1/message/send/B", "A", map[string]string{"textMessage": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, _ = a.do(t, http.MethodPost, "/api/v1/message/send/A", "A", map[string]string{"textMessage": "me"})
	assert.Equal(t, http.StatusBadRequest, status)

	_, body = a.do(t, http.MethodGet, "/api/v1/message/all/B", "A", nil)
	assert.Empty(t, messageBodies(t, body))
}

func TestNewMessagePushedOnlyWhileConnected(t *testing.T) {
	a := newApp(t)
	conn := a.connect(t, "B")

	_, body := a.do(t, http.MethodPost, "/api/v1/message/send/B", "A", map[string]string{"textMessage": "ping"})
	created := body["newMessage"].(map[string]any)

	ev, ok := nextEvent(t, conn, delivery.EventNewMessage, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, created, ev.Payload)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		_, ok := a.registry.Lookup("B")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	status, _ := a.do(t, http.MethodPost, "/api/v1/message/send/B", "A", map[string]string{"textMessage": "still there?"})
	assert.Equal(t, http.StatusCreated, status)

	_, body = a.do(t, http.MethodGet, "/api/v1/message/all/A", "B", nil)
	assert.Equal(t, []string{"ping", "still there?"}, messageBodies(t, body))
}

func TestLikeNotifications(t *testing.T) {
	a := newApp(t)
	conn := a.connect(t, "A")

	t.Run("own post is silent", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/v1/post/post-a/like", "A", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Post liked", body["message"])

		_, ok := nextEvent(t, conn, delivery.EventNotification, 300*time.Millisecond)
		assert.False(t, ok)
	})

	// the read deadline above poisons the socket, so reconnect
	conn = a.connect(t, "A")

	t.Run("someone else's like reaches the owner", func(t *testing.T) {
		status, _ := a.do(t, http.MethodGet, "/api/v1/post/post-a/like", "B", nil)
		require.Equal(t, http.StatusOK, status)

		ev, ok := nextEvent(t, conn, delivery.EventNotification, 2*time.Second)
		require.True(t, ok)
		assert.Equal(t, map[string]any{
			"type":        "like",
			"userId":      "B",
			"userDetails": map[string]any{"username": "name-B", "profilePicture": "B.png"},
			"postId":      "post-a",
			"message":     "Your post was liked",
		}, ev.Payload)
	})

	t.Run("unknown post", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/v1/post/missing/dislike", "B", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, false, body["success"])
	})
}

func TestFollowOrUnfollow(t *testing.T) {
	a := newApp(t)

	status, body := a.do(t, http.MethodPost, "/api/v1/user/followorunfollow/A", "A", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You cannot follow/unfollow yourself", body["message"])

	_, body = a.do(t, http.MethodPost, "/api/v1/user/followorunfollow/B", "A", nil)
	assert.Equal(t, "Followed successfully", body["message"])
	_, body = a.do(t, http.MethodPost, "/api/v1/user/followorunfollow/B", "A", nil)
	assert.Equal(t, "Unfollowed successfully", body["message"])
}

func TestOnlineUsersEndpoint(t *testing.T) {
	a := newApp(t)
	a.connect(t, "B")
	a.connect(t, "C")

	status, body := a.do(t, http.MethodGet, "/api/v1/message/online", "A", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"B", "C"}, body["onlineUsers"])
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	resp, err := http.Get(a.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
