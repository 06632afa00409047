package dto

import "time"

// UpdateUserStatsRequest is one completed round folded into the caller's
// aggregate. correct_answers may never exceed total_questions.
type UpdateUserStatsRequest struct {
	Username       string  `json:"username" validate:"required,min=1,max=30"`
	Score          int     `json:"score" validate:"gte=0"`
	CorrectAnswers int     `json:"correct_answers" validate:"gte=0,ltefield=TotalQuestions"`
	TotalQuestions int     `json:"total_questions" validate:"gte=0"`
	ResponseTime   float64 `json:"response_time" validate:"gte=0"`
}

func (r UpdateUserStatsRequest) Validate() error {
	return validate.Struct(r)
}

type UserStatsResponse struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	BestScore     int       `json:"best_score"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	TotalGames    int       `json:"total_games"`
	AverageScore  int       `json:"average_score"`
	ResponseTime  float64   `json:"response_time"`
	LastPlayed    time.Time `json:"last_played"`
}

type LeaderboardEntry struct {
	Rank          int       `json:"rank"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	BestScore     int       `json:"best_score"`
	TotalGames    int       `json:"total_games"`
	LongestStreak int       `json:"longest_streak"`
	LastPlayed    time.Time `json:"last_played"`
}

type LeaderboardResponse struct {
	Limit   int                `json:"limit"`
	Entries []LeaderboardEntry `json:"entries"`
}
