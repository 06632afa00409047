package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colortap-studio/colortap_api/model"
)

// StatsRepository handles the per-user aggregate rows. Writes go through a
// version check so concurrent read-modify-write cycles for the same user
// cannot silently overwrite each other.
type StatsRepository struct {
	BaseRepository
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *StatsRepository) GetByUserID(userID string) (*model.UserStats, error) {
	var stats model.UserStats
	if err := ds.db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (ds *StatsRepository) Create(stats *model.UserStats) error {
	id, _ := uuid.NewV7()
	stats.ID = id.String()
	stats.Version = 0
	return ds.db.Create(stats).Error
}

// UpdateVersioned writes the aggregate back only if the row still carries
// prevVersion. Returns false when another writer got there first.
func (ds *StatsRepository) UpdateVersioned(stats *model.UserStats, prevVersion int64) (bool, error) {
	now := time.Now()
	res := ds.db.Model(&model.UserStats{}).
		Where("user_id = ? AND version = ?", stats.UserID, prevVersion).
		Updates(map[string]interface{}{
			"username":       stats.Username,
			"best_score":     stats.BestScore,
			"current_streak": stats.CurrentStreak,
			"longest_streak": stats.LongestStreak,
			"total_games":    stats.TotalGames,
			"average_score":  stats.AverageScore,
			"response_time":  stats.ResponseTime,
			"last_played":    stats.LastPlayed,
			"version":        prevVersion + 1,
			"updated_at":     now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (ds *StatsRepository) TopByBestScore(limit int) ([]model.UserStats, error) {
	var stats []model.UserStats
	err := ds.db.Order("best_score DESC").Limit(limit).Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
