package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stanhub_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ModerationActions counts moderation queue actions by entity and verdict.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stanhub_moderation_actions_total",
		Help: "Total moderation actions by entity and verdict",
	}, []string{"entity", "verdict"})

	// LikeToggles counts like toggles by direction.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stanhub_like_toggles_total",
		Help: "Total like toggles by direction",
	}, []string{"direction"})

	// UploadFailures counts blob-storage upload failures by bucket.
	UploadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stanhub_upload_failures_total",
		Help: "Total blob upload failures by bucket",
	}, []string{"bucket"})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
