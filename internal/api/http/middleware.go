package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/observability"
	apperrors "github.com/spec-kit/user-directory/pkg/util"
)

// RegisterMiddlewares installs the global chain, outermost first:
// request id, request logging, error envelope, panic recovery, request timeout.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestid.New())
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorEnvelope(metrics))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.Error("panic recovered",
				zap.Any("panic", e),
				zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				zap.Stack("stack"))
		},
	}))
	if timeout > 0 {
		app.Use(requestTimeout(timeout))
	}
}

func requestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelope renders any error returned further down the chain as
// {"error":{"code","message","details"}} and swallows it.
// The request logger reports the error from the annotation it leaves.
func errorEnvelope(metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		appErr := apperrors.ToDomainError(err)
		metrics.RecordError(c.Route().Path, c.Method(), appErr.Code)
		observability.AnnotateError(c, appErr.Code, appErr)

		body := fiber.Map{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		return c.Status(appErr.HTTPStatus).JSON(fiber.Map{"error": body})
	}
}
