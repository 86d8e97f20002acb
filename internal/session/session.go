// Package session broadcasts session lifecycle events. It replaces navigation side effects:
// the HTTP client reports that the session ended and the surrounding application decides
// what to do (prompt for login, exit, switch screens).
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultTopic is the topic invalidation events are published on.
const DefaultTopic = "stackit.session.invalidated"

// Reason explains why the session ended.
type Reason string

const (
	// ReasonRefreshFailed means the refresh endpoint rejected the refresh credential or
	// could not be reached.
	ReasonRefreshFailed Reason = "refresh_failed"
	// ReasonNoRefreshToken means a 401 arrived while no refresh credential was stored.
	ReasonNoRefreshToken Reason = "no_refresh_token"
	// ReasonLogout means the user logged out explicitly.
	ReasonLogout Reason = "logout"
)

// Invalidated is emitted once the credential store has been cleared.
type Invalidated struct {
	Profile string    `json:"profile"`
	Reason  Reason    `json:"reason"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// Listener receives invalidation events synchronously.
type Listener func(Invalidated)

// Notifier fans invalidation events out to in-process listeners and, optionally, a
// watermill publisher.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
	publisher message.Publisher
	topic     string
}

// NewNotifier returns a Notifier with no listeners.
func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[uint64]Listener)}
}

// Subscribe registers l and returns a function that removes it.
func (n *Notifier) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

// AttachPublisher forwards every event to publisher on topic. An empty topic uses DefaultTopic;
// a nil publisher detaches.
func (n *Notifier) AttachPublisher(publisher message.Publisher, topic string) {
	if topic == "" {
		topic = DefaultTopic
	}
	n.mu.Lock()
	n.publisher = publisher
	n.topic = topic
	n.mu.Unlock()
}

// Notify delivers ev to every listener in subscription order and then to the attached publisher. Publish failures
// are logged; listeners always run.
func (n *Notifier) Notify(_ context.Context, ev Invalidated) {
	if n == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, n.listeners[id])
	}
	publisher, topic := n.publisher, n.topic
	n.mu.RUnlock()

	log.WithFields(log.Fields{"profile": ev.Profile, "reason": ev.Reason}).Info("session invalidated")
	for _, l := range listeners {
		l(ev)
	}
	if publisher == nil {
		return
	}
	if err := Publish(publisher, topic, ev); err != nil {
		log.WithError(err).Warn("session: publish invalidation event")
	}
}

// Publish marshals ev and publishes it on topic.
func Publish(publisher message.Publisher, topic string, ev Invalidated) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("session: marshal event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("reason", string(ev.Reason))
	if err = publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("session: publish event: %w", err)
	}
	return nil
}

// Decode parses an event produced by Publish.
func Decode(msg *message.Message) (Invalidated, error) {
	var ev Invalidated
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return Invalidated{}, fmt.Errorf("session: decode event %s: %w", msg.UUID, err)
	}
	return ev, nil
}
