package broadcast

import (
    "log"
    "sync"
)

// Subscriber receives events for the scopes it joined.  Send must not
// block indefinitely: the hub drops a subscriber whose Send fails so
// one dead connection can never stall delivery to the rest.
type Subscriber interface {
    Send(Event) error
    Close()
}

// Hub is the in-process broadcaster.  It keeps a set of subscribers
// per scope, guarded by a single mutex; membership exists only between
// Join and Leave, which the WebSocket transport ties to the lifetime
// of a connection.
type Hub struct {
    mu     sync.RWMutex
    scopes map[string]map[Subscriber]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
    return &Hub{scopes: make(map[string]map[Subscriber]struct{})}
}

// Join registers the subscriber under each of the given scopes.
func (h *Hub) Join(sub Subscriber, scopes ...string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    for _, s := range scopes {
        set := h.scopes[s]
        if set == nil {
            set = make(map[Subscriber]struct{})
            h.scopes[s] = set
        }
        set[sub] = struct{}{}
    }
}

// Leave removes the subscriber from every scope.  Safe to call more
// than once.
func (h *Hub) Leave(sub Subscriber) {
    h.mu.Lock()
    defer h.mu.Unlock()
    h.remove(sub)
}

func (h *Hub) remove(sub Subscriber) {
    for s, set := range h.scopes {
        delete(set, sub)
        if len(set) == 0 {
            delete(h.scopes, s)
        }
    }
}

// Publish fans the event out to every subscriber of the event's scopes.
// A subscriber that belongs to several matching scopes receives the
// event once.  Failed subscribers are dropped and closed; Publish
// itself never fails, because broadcast failure must not fail the
// command that triggered it.
func (h *Hub) Publish(ev Event) {
    scopes := ev.Scopes()

    h.mu.RLock()
    seen := make(map[Subscriber]struct{})
    targets := make([]Subscriber, 0)
    for _, s := range scopes {
        for sub := range h.scopes[s] {
            if _, dup := seen[sub]; dup {
                continue
            }
            seen[sub] = struct{}{}
            targets = append(targets, sub)
        }
    }
    h.mu.RUnlock()

    var dead []Subscriber
    for _, sub := range targets {
        if err := sub.Send(ev); err != nil {
            log.Printf("broadcast: dropping subscriber: %v", err)
            dead = append(dead, sub)
        }
    }
    if len(dead) > 0 {
        h.mu.Lock()
        for _, sub := range dead {
            h.remove(sub)
        }
        h.mu.Unlock()
        for _, sub := range dead {
            sub.Close()
        }
    }
}

// SubscriberCount reports how many subscribers a scope currently has.
func (h *Hub) SubscriberCount(scope string) int {
    h.mu.RLock()
    defer h.mu.RUnlock()
    return len(h.scopes[scope])
}
