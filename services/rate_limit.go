package services

import (
	goContext "context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/colortap-studio/colortap_api/shared"
)

// RateLimitService throttles abuse-prone endpoints with fixed windows kept in
// Redis, so limits hold across instances.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redisSvc *RedisService
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"device_auth": {
			EndpointType: "device_auth",
			MaxRequests:  10,
			WindowSize:   time.Minute,
			Description:  "Device token exchange rate limit",
			IsActive:     true,
		},
		// A round lasts tens of seconds, so a real client cannot come close
		// to this.
		"submit": {
			EndpointType: "submit",
			MaxRequests:  30,
			WindowSize:   time.Minute,
			Description:  "Stats update and session append rate limit",
			IsActive:     true,
		},
		"leaderboard": {
			EndpointType: "leaderboard",
			MaxRequests:  60,
			WindowSize:   time.Minute,
			Description:  "Leaderboard query rate limit",
			IsActive:     true,
		},
	}
}

func (svc *RateLimitService) getConfig(endpointType string) *RateLimitConfig {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	return svc.configs[endpointType]
}

// Allow counts one request against the window for (endpointType, clientKey)
// and reports whether it is within the limit.
func (svc *RateLimitService) Allow(endpointType, clientKey string) (bool, error) {
	cfg := svc.getConfig(endpointType)
	if cfg == nil || !cfg.IsActive {
		return true, nil
	}

	ctx := goContext.Background()
	key := fmt.Sprintf("ratelimit:%s:%s", endpointType, clientKey)

	count, err := svc.redisSvc.Increment(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, key, cfg.WindowSize); err != nil {
			log.Printf("Failed to set rate limit window for %s: %v", key, err)
		}
	}

	return count <= int64(cfg.MaxRequests), nil
}

// Middleware enforces the named limit. Authenticated requests are keyed by
// user id, anonymous ones by client IP. Redis being down never blocks
// requests.
func (svc *RateLimitService) Middleware(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientKey := c.IP()
		if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
			clientKey = userID
		}

		allowed, err := svc.Allow(endpointType, clientKey)
		if err != nil {
			log.Printf("Rate limit check failed for %s: %v", endpointType, err)
			return c.Next()
		}
		if !allowed {
			return shared.NewAppError(http.StatusTooManyRequests, fmt.Errorf("rate limit exceeded for %s", endpointType), "Too Many Requests")
		}

		return c.Next()
	}
}
