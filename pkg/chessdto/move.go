package chessdto

type LastMove struct {
	From  string `json:"from"`
	To    string `json:"to"`
	SAN   string `json:"san"`
	UCI   string `json:"uci"`
	Color string `json:"color"`
}

// MoveRequest is the body of POST /api/move.
type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}
