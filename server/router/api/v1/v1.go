package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/calassist/internal/profile"
	ratelimit "github.com/hrygo/calassist/server/middleware"
	apiai "github.com/hrygo/calassist/server/router/api/v1/ai"
	"github.com/hrygo/calassist/server/service/assistant"
)

const (
	ipRateDefault  = profile.DefaultIPRateLimit
	ipBurstDefault = profile.DefaultIPRateBurst
)

type APIV1Service struct {
	Profile *profile.Profile

	// chatHandler is the assistant wrapped with validation and rate limiting.
	chatHandler apiai.Handler
	// ipLimiter bounds chat traffic per client IP, whatever session ids it uses.
	ipLimiter *ratelimit.RateLimiter
	gatherer  prometheus.Gatherer
}

func NewAPIV1Service(profile *profile.Profile, assistantHandler assistant.Handler, gatherer prometheus.Gatherer) *APIV1Service {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	limiter := ratelimit.NewRateLimiter(profile.RateLimit, profile.RateBurst)

	ipRate, ipBurst := profile.IPRateLimit, profile.IPRateBurst
	if ipRate <= 0 {
		ipRate = float64(ipRateDefault)
	}
	if ipBurst <= 0 {
		ipBurst = ipBurstDefault
	}

	return &APIV1Service{
		Profile: profile,
		chatHandler: apiai.Chain(
			apiai.NewAssistantHandler(assistantHandler),
			apiai.NewValidationMiddleware(),
			apiai.NewRateLimitMiddleware(limiter),
		),
		ipLimiter: ratelimit.NewRateLimiter(ipRate, ipBurst),
		gatherer:  gatherer,
	}
}

// RegisterRoutes registers the chat, health and metrics endpoints with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	group := echoServer.Group("")
	group.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	perIP := s.ipLimiter.Middleware(nil)
	group.POST("/chat/", s.Chat, perIP)
	group.POST("/chat", s.Chat, perIP)
	group.GET("/healthz", s.Health)
	group.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}
