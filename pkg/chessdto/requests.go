package chessdto

// WebSocket message types.
const (
	MsgMove    = "move"
	MsgRestart = "restart"
	MsgState   = "state"
	MsgError   = "error"
)

// ClientMessage is sent by the browser over /ws.
type ClientMessage struct {
	Type string `json:"type"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// ServerMessage is pushed to the browser over /ws.
type ServerMessage struct {
	Type  string       `json:"type"`
	State *GameState   `json:"state,omitempty"`
	Error *DomainError `json:"error,omitempty"`
}
