package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type errorAnnotation struct {
	code string
	err  error
}

const errorAnnotationKey = "observability.error"

// AnnotateError attaches a handled error to the request so RequestLogger can report it.
func AnnotateError(c *fiber.Ctx, code string, err error) {
	c.Locals(errorAnnotationKey, errorAnnotation{code: code, err: err})
}

// RequestLogger logs every request and feeds the request histogram.
// Paths are labelled by route pattern to keep metric cardinality bounded.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		path := c.Route().Path

		metrics.RecordRequest(path, c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
			zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		}
		if handled, ok := c.Locals(errorAnnotationKey).(errorAnnotation); ok {
			fields = append(fields, zap.String("code", handled.code), zap.Error(handled.err))
		} else if err != nil {
			fields = append(fields, zap.Error(err))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("client error", fields...)
		default:
			logger.Info("request processed", fields...)
		}
		return err
	}
}
