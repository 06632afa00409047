package model

import (
	"math"
	"time"
)

// UserStats is the running aggregate over every session a user has submitted.
// One row per user, mutated in place on each submission.
//
// Version backs the optimistic-concurrency write in the stats repository:
// the row may only be written when the version read is still current.
type UserStats struct {
	ID            string    `json:"-" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Username      string    `json:"username" gorm:"not null"`
	BestScore     int       `json:"best_score" gorm:"not null"`
	CurrentStreak int       `json:"current_streak" gorm:"not null"`
	LongestStreak int       `json:"longest_streak" gorm:"not null"`
	TotalGames    int       `json:"total_games" gorm:"not null"`
	AverageScore  int       `json:"average_score" gorm:"not null"`
	ResponseTime  float64   `json:"response_time" gorm:"not null"`
	LastPlayed    time.Time `json:"last_played" gorm:"not null"`
	Version       int64     `json:"-" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUserStats builds the aggregate for a user's first session. The first
// session seeds every running value directly.
func NewUserStats(userID, username string, score, correctAnswers, totalQuestions int, responseTime float64, now time.Time) *UserStats {
	streak := 0
	if correctAnswers == totalQuestions {
		streak = 1
	}

	return &UserStats{
		UserID:        userID,
		Username:      username,
		BestScore:     score,
		CurrentStreak: streak,
		LongestStreak: streak,
		TotalGames:    1,
		AverageScore:  score,
		ResponseTime:  responseTime,
		LastPlayed:    now,
	}
}

// Apply folds one completed session into the aggregate.
//
// The running average is recomputed from the previous average and game count,
// not from history. A perfect session (correctAnswers == totalQuestions)
// extends the streak regardless of score; anything else resets it.
// ResponseTime is the latest session's value, not an average.
func (s *UserStats) Apply(username string, score, correctAnswers, totalQuestions int, responseTime float64, now time.Time) {
	newTotal := s.TotalGames + 1
	s.AverageScore = int(math.Round(float64(s.AverageScore*s.TotalGames+score) / float64(newTotal)))
	s.TotalGames = newTotal

	if score > s.BestScore {
		s.BestScore = score
	}

	if correctAnswers == totalQuestions {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 0
	}
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}

	s.Username = username
	s.ResponseTime = responseTime
	s.LastPlayed = now
}
