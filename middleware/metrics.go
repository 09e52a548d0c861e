package middleware

import (
	"errors"
	"memo-app/metrics"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency by route pattern, so
// /api/memos/1 and /api/memos/2 share a series.
func Metrics(collector *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		collector.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
