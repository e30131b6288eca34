package middleware

import (
	"fmt"
	"time"

	"lendbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader   = "Idempotency-Key"
	idempotencyTTL      = 24 * time.Hour
	idempotencyLockTTL  = 30 * time.Second
	idempotencyLockBusy = "Request with this idempotency key is already being processed"
)

// Idempotency replays the stored response when a request carries an
// Idempotency-Key header it has seen before. Used on the payment
// endpoint so a retried request cannot record the same EMI twice.
// A nil redis client disables the middleware.
func Idempotency(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(idempotencyHeader)
		if rdb == nil || key == "" {
			return c.Next()
		}

		userID, _ := c.Locals("userID").(string)
		storeKey := fmt.Sprintf("idempotency:%s:%s:%s", userID, c.Path(), key)
		lockKey := storeKey + ":lock"

		// Replay a finished request
		if body, err := rdb.Get(c.Context(), storeKey).Bytes(); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}

		// Only one in-flight request per key
		ok, err := rdb.SetNX(c.Context(), lockKey, "1", idempotencyLockTTL).Result()
		if err == nil && !ok {
			return response.Conflict(c, idempotencyLockBusy)
		}

		if err := c.Next(); err != nil {
			rdb.Del(c.Context(), lockKey)
			return err
		}

		// Store only successful outcomes so a failed attempt can be retried
		if c.Response().StatusCode() < fiber.StatusBadRequest {
			rdb.Set(c.Context(), storeKey, c.Response().Body(), idempotencyTTL)
		}
		rdb.Del(c.Context(), lockKey)

		return nil
	}
}
