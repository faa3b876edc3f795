// Package delivery pushes best-effort events to users that are online.
package delivery

import (
	"github.com/pdlsagar677/Social-Media/internal/domain"
	"github.com/pdlsagar677/Social-Media/internal/presence"
)

// Event names on the wire.
const (
	EventNewMessage   = "newMessage"
	EventNotification = "notification"
	EventOnlineUsers  = "getOnlineUsers"
)

// Directory resolves live connections. *presence.Registry satisfies it.
type Directory interface {
	Lookup(userID string) (presence.Handle, bool)
	Online() []string
	Handles() []presence.Handle
}

// Dispatcher delivers events to the live connection of a user, or drops them.
// It never blocks on the network and never reports an offline target as an error.
type Dispatcher struct {
	dir Directory
}

func NewDispatcher(dir Directory) *Dispatcher {
	return &Dispatcher{dir: dir}
}

// DeliverMessage pushes a newMessage event to userID. It reports whether the
// event was queued on a live connection.
func (d *Dispatcher) DeliverMessage(userID string, msg *domain.Message) bool {
	return d.deliver(userID, EventNewMessage, msg)
}

// DeliverNotification pushes a notification event to userID.
// Callers skip self-actions; no identity check happens here.
func (d *Dispatcher) DeliverNotification(userID string, n *domain.Notification) bool {
	return d.deliver(userID, EventNotification, n)
}

// BroadcastOnlineUsers sends the current online list to every connection and
// returns how many connections accepted it.
func (d *Dispatcher) BroadcastOnlineUsers() int {
	online := d.dir.Online()
	sent := 0
	for _, h := range d.dir.Handles() {
		if h.Send(EventOnlineUsers, online) {
			sent++
		}
	}
	return sent
}

func (d *Dispatcher) deliver(userID, event string, payload any) bool {
	h, ok := d.dir.Lookup(userID)
	if !ok {
		return false
	}
	return h.Send(event, payload)
}
