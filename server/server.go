// Package server assembles the calendar assistant and serves it over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/calassist/internal/profile"
	"github.com/hrygo/calassist/plugin/ai"
	"github.com/hrygo/calassist/plugin/ai/aitime"
	"github.com/hrygo/calassist/plugin/ai/router"
	"github.com/hrygo/calassist/plugin/ai/session"
	"github.com/hrygo/calassist/plugin/ai/timeout"
	"github.com/hrygo/calassist/plugin/calendar"
	"github.com/hrygo/calassist/server/internal/observability"
	apiv1 "github.com/hrygo/calassist/server/router/api/v1"
	"github.com/hrygo/calassist/server/service/assistant"
	"github.com/hrygo/calassist/server/timezone"
)

type Server struct {
	Profile *profile.Profile

	echoServer  *echo.Echo
	listener    net.Listener
	sessions    *session.MemoryStore
	cleanupJob  *session.SessionCleanupJob
	assistant   *assistant.Service
	calendarGW  calendar.Gateway
	chatService ai.LLMService
}

// Option overrides a collaborator built from the profile.
type Option func(*Server)

// WithCalendar replaces the calendar gateway.
func WithCalendar(gw calendar.Gateway) Option {
	return func(s *Server) { s.calendarGW = gw }
}

// WithChat replaces the chat model.
func WithChat(chat ai.LLMService) Option {
	return func(s *Server) { s.chatService = chat }
}

func NewServer(ctx context.Context, profile *profile.Profile, opts ...Option) (*Server, error) {
	s := &Server{Profile: profile}
	for _, opt := range opts {
		opt(s)
	}

	loc, err := timezone.ParseTimezone(profile.Timezone)
	if err != nil {
		return nil, err
	}

	if s.calendarGW == nil {
		s.calendarGW, err = newCalendarGateway(ctx, profile, loc)
		if err != nil {
			return nil, err
		}
	}
	if s.chatService == nil {
		s.chatService, err = ai.NewLLMService(ai.NewConfigFromProfile(profile))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create chat model")
		}
	}

	s.sessions, err = session.NewMemoryStore(profile.SessionCapacity)
	if err != nil {
		return nil, err
	}
	s.cleanupJob = session.NewSessionCleanupJob(s.sessions, session.CleanupConfig{IdleTTL: profile.SessionIdleTTL})

	s.assistant, err = assistant.NewService(assistant.Config{
		Extractor:      aitime.NewService(profile.Timezone),
		Router:         router.NewService(),
		Sessions:       s.sessions,
		Calendar:       s.calendarGW,
		Chat:           s.chatService,
		Location:       loc,
		BookingWorkers: profile.BookingWorkers,
		Metrics:        observability.DefaultMetrics(),
	})
	if err != nil {
		return nil, err
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestID())
	echoServer.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Debug("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds())
			return nil
		},
	}))
	s.echoServer = echoServer

	apiv1.NewAPIV1Service(profile, s.assistant, prometheus.DefaultGatherer).RegisterRoutes(echoServer)

	return s, nil
}

func newCalendarGateway(ctx context.Context, p *profile.Profile, loc *time.Location) (calendar.Gateway, error) {
	switch p.CalendarBackend {
	case profile.BackendICS:
		return calendar.NewICSGateway(p.ICSPath, loc), nil
	case profile.BackendGoogle:
		return calendar.NewGoogleGateway(ctx, p.CredentialsFile, p.CalendarID)
	default:
		return nil, errors.Errorf("unsupported calendar backend %q", p.CalendarBackend)
	}
}

// Start binds the listen address. Serving begins with Run.
func (s *Server) Start() error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.listener = listener
	slog.Info("server listening", "address", listener.Addr().String())
	return nil
}

// Run serves requests and the session cleanup job until ctx is canceled,
// then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Start(); err != nil {
			return err
		}
	}

	s.cleanupJob.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.echoServer.Listener = s.listener
		if err := s.echoServer.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server stopped")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Shutdown(context.Background())
		return nil
	})
	return g.Wait()
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, timeout.ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	s.cleanupJob.Stop()

	slog.Info("server stopped properly")
}
