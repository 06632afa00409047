package services

import (
	goContext "context"
	"errors"
	"fmt"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/colortap-studio/colortap_api/dto"
	"github.com/colortap-studio/colortap_api/model"
	"github.com/colortap-studio/colortap_api/services/repositories"
	"github.com/colortap-studio/colortap_api/shared"
)

// StatsStore is the persistence surface the aggregator needs. Implemented by
// repositories.StatsRepository; tests substitute a mock.
type StatsStore interface {
	GetByUserID(userID string) (*model.UserStats, error)
	Create(stats *model.UserStats) error
	UpdateVersioned(stats *model.UserStats, prevVersion int64) (bool, error)
	TopByBestScore(limit int) ([]model.UserStats, error)
}

// UserDirectory resolves user ids to profiles for leaderboard decoration.
type UserDirectory interface {
	GetByIDs(userIDs []string) ([]model.User, error)
}

// StatsService folds completed rounds into each user's running aggregate and
// answers stats and leaderboard queries.
//
// Per-user serialization: every update re-reads the current row and writes it
// back conditioned on the version it read. A lost race re-reads and retries,
// so concurrent updates for one user always both land.
type StatsService struct {
	context.DefaultService

	sqlSvc   SqlService
	redisSvc *RedisService

	store StatsStore
	users UserDirectory
}

const STATS_SVC = "stats_svc"

// A conflict means another submission for the same user landed between our
// read and write. Retries re-read, so a handful is always enough.
const maxUpdateAttempts = 5

const leaderboardCacheTTL = 30 * time.Second

func (svc StatsService) Id() string {
	return STATS_SVC
}

func (svc *StatsService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *StatsService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(SqlService)
	if redisSvc, ok := svc.Service(REDIS_SVC).(*RedisService); ok {
		svc.redisSvc = redisSvc
	}

	db := svc.sqlSvc.Db()
	svc.store = repositories.NewStatsRepository(db)
	svc.users = repositories.NewUserRepository(db)
	return nil
}

// UpdateUserStats accepts one session's outcome and atomically folds it into
// the user's aggregate. Each call counts as a new session; there is no
// deduplication at this layer.
func (svc *StatsService) UpdateUserStats(userID string, req dto.UpdateUserStatsRequest) (*dto.UserStatsResponse, error) {
	if userID == "" {
		return nil, shared.NewBadRequestError(fmt.Errorf("empty user id"), "User ID is required")
	}
	if err := req.Validate(); err != nil {
		appErr := shared.NewBadRequestError(err, "Validation failed")
		appErr.Data = dto.FormatValidationErrors(err)
		return nil, appErr
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		prev, err := svc.store.GetByUserID(userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, translateSqlError(err)
			}

			stats := model.NewUserStats(userID, req.Username, req.Score, req.CorrectAnswers, req.TotalQuestions, req.ResponseTime, time.Now())
			createErr := svc.store.Create(stats)
			if createErr == nil {
				svc.afterUpdate(stats, true)
				return statsToResponse(stats), nil
			}
			if repositories.IsDuplicateKey(createErr) {
				// Lost the first-session race; fold into the winner's row.
				statsUpdateConflictsTotal.Inc()
				continue
			}
			return nil, translateSqlError(createErr)
		}

		next := *prev
		next.Apply(req.Username, req.Score, req.CorrectAnswers, req.TotalQuestions, req.ResponseTime, time.Now())

		ok, err := svc.store.UpdateVersioned(&next, prev.Version)
		if err != nil {
			return nil, translateSqlError(err)
		}
		if ok {
			svc.afterUpdate(&next, next.BestScore > prev.BestScore)
			return statsToResponse(&next), nil
		}

		statsUpdateConflictsTotal.Inc()
	}

	return nil, shared.NewInternalError(
		fmt.Errorf("update conflict for user %s unresolved after %d attempts", userID, maxUpdateAttempts),
		"Storage conflict")
}

func (svc *StatsService) afterUpdate(stats *model.UserStats, bestScoreChanged bool) {
	statsUpdatesTotal.Inc()

	// A new best score can reorder the board; drop the cached copies early
	// rather than waiting out the TTL.
	if bestScoreChanged && svc.redisSvc != nil {
		ctx := goContext.Background()
		keys, err := svc.redisSvc.GetClient().Keys(ctx, "leaderboard:*").Result()
		if err == nil && len(keys) > 0 {
			if err := svc.redisSvc.Delete(ctx, keys...); err != nil {
				log.Printf("Failed to invalidate leaderboard cache: %v", err)
			}
		}
	}
}

// GetUserStats returns the aggregate for userID. A user with no submitted
// sessions yet is a 404, not a zero-valued record.
func (svc *StatsService) GetUserStats(userID string) (*dto.UserStatsResponse, error) {
	stats, err := svc.store.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "No stats recorded yet")
		}
		return nil, translateSqlError(err)
	}

	return statsToResponse(stats), nil
}

// GetLeaderboard returns the top records by best score. limit defaults to 10
// and is capped at 100; responses are cached briefly in Redis.
func (svc *StatsService) GetLeaderboard(limit int) (*dto.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = shared.DefaultLeaderboardLimit
	}
	if limit > shared.MaxLeaderboardLimit {
		limit = shared.MaxLeaderboardLimit
	}

	cacheKey := fmt.Sprintf("leaderboard:%d", limit)
	if svc.redisSvc != nil {
		var cached dto.LeaderboardResponse
		hit, err := svc.redisSvc.GetJSON(goContext.Background(), cacheKey, &cached)
		if err != nil {
			log.Printf("Leaderboard cache read failed: %v", err)
		} else if hit {
			leaderboardCacheHitsTotal.Inc()
			return &cached, nil
		}
		leaderboardCacheMissesTotal.Inc()
	}

	rows, err := svc.store.TopByBestScore(limit)
	if err != nil {
		return nil, translateSqlError(err)
	}

	resp := svc.buildLeaderboardResponse(limit, rows)

	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(goContext.Background(), cacheKey, resp, leaderboardCacheTTL); err != nil {
			log.Printf("Leaderboard cache write failed: %v", err)
		}
	}

	return resp, nil
}

func (svc *StatsService) buildLeaderboardResponse(limit int, rows []model.UserStats) *dto.LeaderboardResponse {
	avatars := map[string]string{}
	if len(rows) > 0 && svc.users != nil {
		ids := make([]string, len(rows))
		for i, row := range rows {
			ids[i] = row.UserID
		}
		users, err := svc.users.GetByIDs(ids)
		if err != nil {
			log.Printf("Failed to resolve leaderboard users: %v", err)
		} else {
			for _, user := range users {
				avatars[user.ID] = user.AvatarURL
			}
		}
	}

	entries := make([]dto.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = dto.LeaderboardEntry{
			Rank:          i + 1,
			UserID:        row.UserID,
			Username:      row.Username,
			AvatarURL:     avatars[row.UserID],
			BestScore:     row.BestScore,
			TotalGames:    row.TotalGames,
			LongestStreak: row.LongestStreak,
			LastPlayed:    row.LastPlayed,
		}
	}

	return &dto.LeaderboardResponse{
		Limit:   limit,
		Entries: entries,
	}
}

func statsToResponse(stats *model.UserStats) *dto.UserStatsResponse {
	return &dto.UserStatsResponse{
		UserID:        stats.UserID,
		Username:      stats.Username,
		BestScore:     stats.BestScore,
		CurrentStreak: stats.CurrentStreak,
		LongestStreak: stats.LongestStreak,
		TotalGames:    stats.TotalGames,
		AverageScore:  stats.AverageScore,
		ResponseTime:  stats.ResponseTime,
		LastPlayed:    stats.LastPlayed,
	}
}
