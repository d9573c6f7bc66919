// Package service orchestrates one mutation at a time: load the entities
// the rule needs, ask the authorization engine, write through the
// Database, reload the affected views and hand back the deltas to
// broadcast. Services are pure functions over an explicit request struct
// and an explicit collaborator context; no instance state.
package service

import (
	"errors"
	"time"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/storage"
)

// Deps is the collaborator context every operation receives: the Database
// handle and the clock. Tests substitute both.
type Deps struct {
	DB  storage.Database
	Now func() time.Time
}

// Update is one named event to broadcast after a successful mutation.
type Update struct {
	Event   string
	Payload any
}

// Bundle pairs the operator-facing deltas with the target-facing ones.
type Bundle struct {
	Primary   []Update
	Secondary []Update
}

// boundary guarantees that every error leaving a service is an
// ErrorEnvelope: denials and validation failures pass through, anything
// else is re-wrapped as a ServerError for the operation's part. Raw
// storage errors never cross this line.
func boundary(part string, op func() (*Bundle, error)) (*Bundle, error) {
	b, err := op()
	if err != nil {
		return nil, apperr.Coerce(part, err)
	}
	return b, nil
}

// notFound reports whether err is the store's missing-entity sentinel.
func notFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
