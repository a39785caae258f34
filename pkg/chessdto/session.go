package chessdto

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// CapturedPieces lists piece names taken by each side, most valuable first.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

// GameState is everything a client needs to draw the board and its status line.
type GameState struct {
	SessionID   string         `json:"session_id"`
	Nickname    string         `json:"nickname,omitempty"`
	GameID      string         `json:"game_id"`
	Seq         uint64         `json:"seq"`
	FEN         string         `json:"fen"`
	Turn        string         `json:"turn"`
	Orientation string         `json:"orientation"`
	Over        bool           `json:"over"`
	Outcome     string         `json:"outcome,omitempty"`
	OutcomeText string         `json:"outcome_text,omitempty"`
	Header      string         `json:"header"`
	Thinking    bool           `json:"thinking"`
	LastMove    *LastMove      `json:"last_move,omitempty"`
	MovesSAN    []string       `json:"moves_san"`
	LegalUCI    []string       `json:"legal_uci,omitempty"`
	Material    MaterialScore  `json:"material"`
	Captured    CapturedPieces `json:"captured"`
	Opening     string         `json:"opening,omitempty"`
}
