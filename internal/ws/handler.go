package ws

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/pdlsagar677/Social-Media/internal/delivery"
	"github.com/pdlsagar677/Social-Media/internal/presence"
)

// Authenticator resolves a session token to a user id.
type Authenticator interface {
	UserID(token string) (string, error)
}

type Options struct {
	AllowedOrigins []string
	CookieName     string
	SendBuffer     int
}

// Server upgrades authenticated requests to websocket connections and feeds
// their lifecycle into the presence registry.
type Server struct {
	registry   *presence.Registry
	dispatcher *delivery.Dispatcher
	auth       Authenticator
	upgrader   websocket.Upgrader
	cookieName string
	sendBuffer int

	mu    sync.Mutex
	conns map[*Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(registry *presence.Registry, dispatcher *delivery.Dispatcher, auth Authenticator, opts Options) *Server {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	return &Server{
		registry:   registry,
		dispatcher: dispatcher,
		auth:       auth,
		upgrader: websocket.Upgrader{
			CheckOrigin:  makeCheckOrigin(opts.AllowedOrigins),
			Subprotocols: []string{"bearer"},
		},
		cookieName: opts.CookieName,
		sendBuffer: opts.SendBuffer,
		conns:      make(map[*Conn]struct{}),
	}
}

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

// makeCheckOrigin admits requests without an Origin header (non-browser
// clients) and browser requests whose origin is allow-listed.
func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	_, wildcard := allowed["*"]

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" || wildcard {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractToken(r *http.Request, cookieName string) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], nil
		}
	}

	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value, nil
		}
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.upgrader.CheckOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	tokenStr, err := extractToken(r, s.cookieName)
	if err != nil {
		if authErr, ok := err.(wsAuthError); ok {
			http.Error(w, authErr.msg, authErr.status)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := s.auth.UserID(tokenStr)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}

	c := newConn(wsConn, userID, s.sendBuffer)
	s.track(c)
	s.registry.Register(userID, c)
	log.Info("ws: connected", "user", userID, "conn", c.ID, "online", s.registry.Len())
	s.dispatcher.BroadcastOnlineUsers()

	go c.writePump()
	go func() {
		defer s.wg.Done()
		c.readPump(func(f Frame) { s.handleFrame(c, f) })
		s.disconnect(c)
	}()
}

func (s *Server) handleFrame(c *Conn, f Frame) {
	switch f.Event {
	case delivery.EventOnlineUsers:
		c.Send(delivery.EventOnlineUsers, s.registry.Online())
	default:
		sendError(c, "unsupported event: "+f.Event)
	}
}

func sendError(c *Conn, msg string) {
	c.Send("error", map[string]string{"message": msg})
}

func (s *Server) track(c *Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	s.wg.Add(1)
}

func (s *Server) disconnect(c *Conn) {
	c.Close()
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	// a replaced connection no longer owns the registry entry
	if _, ok := s.registry.Unregister(c); ok {
		s.dispatcher.BroadcastOnlineUsers()
	}
	log.Info("ws: disconnected", "user", c.UserID, "conn", c.ID)
}

// Shutdown closes every live connection and waits for their readers to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.conns {
		c.closeWith(websocket.CloseGoingAway)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
