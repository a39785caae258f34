package chessdto

type HistoryEntry struct {
	Ply     int    `json:"ply"`
	Color   string `json:"color"`
	SAN     string `json:"san"`
	UCI     string `json:"uci"`
	Capture bool   `json:"capture,omitempty"`
}

type PGNResponse struct {
	GameID  string         `json:"game_id"`
	PGN     string         `json:"pgn"`
	History []HistoryEntry `json:"history"`
}
