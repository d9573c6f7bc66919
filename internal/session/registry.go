// Package session tracks the ephemeral socket↔user↔session binding and
// mints the tokens the bridge presents on the websocket handshake.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/voco-chat/bridge/internal/domain"
)

// Registry owns the live Connection bindings. A binding exists only
// while its bridge connection is live and is destroyed on disconnect.
type Registry struct {
	mu          sync.RWMutex
	bySocket    map[domain.SocketID]*domain.Connection
	socketOfUsr map[domain.UserID]domain.SocketID
}

func NewRegistry() *Registry {
	return &Registry{
		bySocket:    make(map[domain.SocketID]*domain.Connection),
		socketOfUsr: make(map[domain.UserID]domain.SocketID),
	}
}

// Bind creates a fresh Connection for user under session, minting the
// socket id.
func (r *Registry) Bind(userID domain.UserID, sessionID domain.SessionID) *domain.Connection {
	conn := &domain.Connection{
		SocketID:  domain.SocketID(uuid.NewString()),
		UserID:    userID,
		SessionID: sessionID,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySocket[conn.SocketID] = conn
	r.socketOfUsr[userID] = conn.SocketID
	log.Info().Str("module", "session").Str("socket", string(conn.SocketID)).
		Str("user", string(userID)).Msg("bound connection")
	return conn
}

func (r *Registry) Lookup(socketID domain.SocketID) (*domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.bySocket[socketID]
	return c, ok
}

func (r *Registry) SocketOf(userID domain.UserID) (domain.SocketID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.socketOfUsr[userID]
	return sid, ok
}

// Unbind destroys the binding for socketID.
func (r *Registry) Unbind(socketID domain.SocketID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.bySocket[socketID]; ok {
		delete(r.socketOfUsr, c.UserID)
		delete(r.bySocket, socketID)
		log.Info().Str("module", "session").Str("socket", string(socketID)).Msg("unbound connection")
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySocket)
}
