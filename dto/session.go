package dto

import "time"

// AddGameSessionRequest appends one immutable session record. The session ID
// is caller-generated; the server only assigns the timestamp.
type AddGameSessionRequest struct {
	SessionID      string  `json:"session_id" validate:"required,min=1,max=192"`
	Score          int     `json:"score" validate:"gte=0"`
	CorrectAnswers int     `json:"correct_answers" validate:"gte=0,ltefield=TotalQuestions"`
	TotalQuestions int     `json:"total_questions" validate:"gte=0"`
	ResponseTime   float64 `json:"response_time" validate:"gte=0"`
	GameMode       string  `json:"game_mode" validate:"omitempty,max=50"`
}

func (r AddGameSessionRequest) Validate() error {
	return validate.Struct(r)
}

type GameSessionResponse struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	ResponseTime   float64   `json:"response_time"`
	GameMode       string    `json:"game_mode"`
	Timestamp      time.Time `json:"timestamp"`
}

type SessionListResponse struct {
	Sessions []GameSessionResponse `json:"sessions"`
}
