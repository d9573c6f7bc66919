// Package router fans events out to local observers. Every occurrence of
// an event reaches every currently-registered observer exactly once,
// whether it arrived from the wire or originated locally (loopback).
package router

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/voco-chat/bridge/internal/contract"
	"github.com/voco-chat/bridge/internal/domain"
)

// Observer receives one event payload. Observers for the same event run
// in subscription order.
type Observer func(payload any)

// peerCarrier is implemented by payloads that must open a conversation
// surface keyed by the other participant, regardless of focus.
type peerCarrier interface {
	PeerID() domain.UserID
}

type entry struct {
	id uint64
	fn Observer
}

type Router struct {
	mu        sync.RWMutex
	nextID    uint64
	observers map[string][]entry

	// OpenConversation, when set, is called for shakeWindow and
	// directMessage occurrences in addition to the plain fan-out.
	openConversation func(peer domain.UserID)
}

func New() *Router {
	return &Router{observers: make(map[string][]entry)}
}

// SetConversationOpener installs the surface-opening side effect.
func (r *Router) SetConversationOpener(fn func(peer domain.UserID)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openConversation = fn
}

// OnPublish registers an observer for a named event and returns its
// unsubscribe function.
func (r *Router) OnPublish(event string, fn Observer) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.observers[event] = append(r.observers[event], entry{id: id, fn: fn})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		list := r.observers[event]
		for i, e := range list {
			if e.id == id {
				r.observers[event] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to every observer of event. A panicking
// observer is logged and skipped; delivery to the rest continues.
func (r *Router) Publish(event string, payload any) {
	r.mu.RLock()
	list := make([]entry, len(r.observers[event]))
	copy(list, r.observers[event])
	opener := r.openConversation
	r.mu.RUnlock()

	for _, e := range list {
		r.invoke(event, e, payload)
	}

	if event == contract.EventShakeWindow || event == contract.EventDirectMessage {
		if pc, ok := payload.(peerCarrier); ok && opener != nil {
			opener(pc.PeerID())
		}
	}
}

func (r *Router) invoke(event string, e entry, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("module", "router").Str("event", event).Any("panic", rec).Msg("observer panicked")
		}
	}()
	e.fn(payload)
}

// ObserverCount reports how many observers are registered for event.
func (r *Router) ObserverCount(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers[event])
}
