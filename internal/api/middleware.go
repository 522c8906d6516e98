package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"task-service/internal/model"
	"task-service/internal/service"
)

const (
	localsUser  = "user"
	localsToken = "token"
)

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

// AuthMiddleware resolves the acting user from the bearer token and binds the
// user and the raw token to the request. Every rejection looks the same.
func AuthMiddleware(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		user, err := authService.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
			}
			return respondError(c, err)
		}

		c.Locals(localsUser, user)
		c.Locals(localsToken, token)

		return c.Next()
	}
}

// CurrentUser returns the user bound by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(localsUser).(*model.User)
	return user
}

func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localsToken).(string)
	return token
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()

		if err != nil {
			var e *fiber.Error

			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		// Route templates keep the label set bounded.
		path := c.Route().Path
		statusStr := strconv.Itoa(statusCode)

		httpRequestTotal.WithLabelValues(c.Method(), path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path, statusStr).Observe(duration)

		return err
	}
}
