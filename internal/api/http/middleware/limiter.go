package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/simorq_portal/config"
)

// NewLimiterWithRedis is a sliding-window limiter keyed by client IP. The
// prefix keeps separate limiters from sharing counters.
func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimitConfig, prefix string) fiber.Handler {
	storage := fiberredis.NewFromConnection(rdb)

	limit := cfg.Max
	if limit <= 0 {
		limit = 20
	}
	exp := time.Duration(cfg.ExpirationSeconds) * time.Second
	if exp <= 0 {
		exp = 30 * time.Second
	}

	return limiter.New(limiter.Config{
		Storage: storage,
		KeyGenerator: func(c fiber.Ctx) string {
			return prefix + c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		},

		// sliding window
		Max:               limit,
		Expiration:        exp,
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
