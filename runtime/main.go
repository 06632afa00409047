package main

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/colortap-studio/colortap_api/services"
)

// @title ColorTap API
// @version 1.0
// @description Backend for the ColorTap color-reaction game: device auth, per-user stats aggregation, session log and global leaderboard.
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	var sqlSvc context.Service = &services.PostgresService{}
	if os.Getenv("DB_DRIVER") == "sqlite" {
		sqlSvc = &services.SqliteService{}
	}

	ctx, err := context.NewCtx(
		&services.JWTService{},
		sqlSvc,
		&services.RedisService{},
		&services.MinioService{},
		&services.MonitoringService{},
		&services.RateLimitService{},
		&services.AuthService{},
		&services.StatsService{},
		&services.SessionService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
