package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a fixed-window rate limiter over Redis for the
// booking write endpoints. Each (actor, route) pair gets `limit`
// requests per `window`; the 429 response carries a Retry-After
// header with the seconds remaining in the window. When rdb is nil
// (Redis unreachable at startup) the middleware is a no-op — slot
// correctness never depends on it, only fairness under load does.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, _ := c.Get("actor").(string)
			if actor == "" {
				actor = c.RealIP()
			}
			ctx := c.Request().Context()
			windowID := time.Now().Unix() / int64(window.Seconds())
			key := fmt.Sprintf("rl:%s:%s:%d", actor, c.Path(), windowID)

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis trouble must not block bookings.
				return next(c)
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, window).Err()
			}
			if count > int64(limit) {
				remaining := window - time.Duration(time.Now().Unix()%int64(window.Seconds()))*time.Second
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
