package model

import "time"

// GameSession is the immutable record of one completed round. Rows are only
// ever inserted; Timestamp is assigned server-side at insert.
type GameSession struct {
	ID             string    `json:"-" gorm:"primaryKey"`
	UserID         string    `json:"user_id" gorm:"index;not null"`
	SessionID      string    `json:"session_id" gorm:"not null"`
	Score          int       `json:"score" gorm:"not null"`
	CorrectAnswers int       `json:"correct_answers" gorm:"not null"`
	TotalQuestions int       `json:"total_questions" gorm:"not null"`
	ResponseTime   float64   `json:"response_time" gorm:"not null"`
	GameMode       string    `json:"game_mode" gorm:"not null"`
	Timestamp      time.Time `json:"timestamp" gorm:"index;not null"`
	CreatedAt      time.Time `json:"created_at"`
}
