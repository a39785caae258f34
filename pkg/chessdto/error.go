package chessdto

// Error codes carried in DomainError.Code.
const (
	CodeGameOver         = "game_over"
	CodeIllegalMove      = "illegal_move"
	CodeInvalidSquare    = "invalid_square"
	CodeAwaitingOpponent = "awaiting_opponent"
	CodeClosed           = "closed"
	CodeBadRequest       = "bad_request"
	CodeInternal         = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess error"
}
