package domain

type (
	SocketID  string
	SessionID string
)

// Connection is the ephemeral socket↔user↔session binding. It exists only
// while a bridge connection is live and is destroyed on disconnect.
type Connection struct {
	SocketID  SocketID  `json:"socketId"`
	UserID    UserID    `json:"userId"`
	SessionID SessionID `json:"sessionId"`
}
