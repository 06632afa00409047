package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"

	_ "github.com/colortap-studio/colortap_api/docs"
	"github.com/colortap-studio/colortap_api/services/handlers"
	"github.com/colortap-studio/colortap_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc      *AuthService
	statsSvc     *StatsService
	sessionSvc   *SessionService
	rateLimitSvc *RateLimitService
	minioSvc     *MinioService
	monitoring   *MonitoringService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.statsSvc = svc.Service(STATS_SVC).(*StatsService)
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinioService)
	svc.monitoring = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.app = fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		JSONEncoder:  shared.JSONEncoder,
		JSONDecoder:  shared.JSONDecoder,
		ErrorHandler: shared.ErrorHandler,
	})

	svc.app.Use(recover.New())
	svc.app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	svc.app.Use(MonitoringMiddleware(svc.monitoring))

	svc.registerRoutes()

	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) registerRoutes() {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	statsHandler := handlers.NewStatsHandler(svc.statsSvc)
	sessionHandler := handlers.NewSessionHandler(svc.sessionSvc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.statsSvc)
	userHandler := handlers.NewUserHandler(svc.authSvc, svc.minioSvc)

	svc.app.Get("/ping", svc.ping)
	svc.app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	v1 := svc.app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	auth := v1.Group("/auth")
	auth.Post("/device", svc.rateLimitSvc.Middleware("device_auth"), authHandler.DeviceAuth)

	v1.Get("/leaderboard", svc.rateLimitSvc.Middleware("leaderboard"), leaderboardHandler.GetLeaderboard)

	protected := v1.Group("", svc.authSvc.RequiredAuth())
	protected.Post("/stats", svc.rateLimitSvc.Middleware("submit"), statsHandler.UpdateUserStats)
	protected.Get("/stats", statsHandler.GetUserStats)
	protected.Post("/sessions", svc.rateLimitSvc.Middleware("submit"), sessionHandler.AddGameSession)
	protected.Get("/sessions", sessionHandler.GetRecentSessions)
	protected.Get("/user/profile", userHandler.GetUserProfile)
	protected.Post("/user/avatar", userHandler.UploadAvatar)
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}
