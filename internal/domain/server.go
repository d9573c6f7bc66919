package domain

type (
	ServerID  string
	ChannelID string
)

type Server struct {
	ID      ServerID `json:"id"`
	OwnerID UserID   `json:"ownerId"`
	Name    string   `json:"name"`
}

type Channel struct {
	ID       ChannelID `json:"id"`
	ServerID ServerID  `json:"serverId"`
	Name     string    `json:"name"`
}
