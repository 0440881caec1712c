package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	mw "github.com/tphakala/graphing-app/internal/api/middleware"
	"github.com/tphakala/graphing-app/internal/api/resources"
	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/datastore"
	"github.com/tphakala/graphing-app/internal/errors"
	"github.com/tphakala/graphing-app/internal/logger"
	"github.com/tphakala/graphing-app/internal/observability"
)

// Server is the HTTP server for the graphing API.
type Server struct {
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	log      logger.Logger

	dataStore  datastore.Interface
	metrics    *observability.Metrics
	controller *resources.Controller

	startTime time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithDataStore sets the datastore for the server.
func WithDataStore(ds datastore.Interface) ServerOption {
	return func(s *Server) {
		s.dataStore = ds
	}
}

// WithMetrics sets the metrics registry. HTTP requests are recorded on it
// and it is exposed on the configured metrics path.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger overrides the api module logger.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Server with routes and middleware installed. A datastore is required.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	s := &Server{
		config:    ConfigFromSettings(settings),
		settings:  settings,
		log:       GetLogger(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dataStore == nil {
		return nil, errors.Newf("api server requires a datastore").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = s.config.Debug
	s.echo.Server.ReadTimeout = s.config.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.IdleTimeout
	s.echo.HTTPErrorHandler = s.handleError

	s.controller = resources.New(s.dataStore, resources.WithLogger(s.log.Module("resources")))

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures the middleware stack. Order matters: the
// request ID must exist before anything logs.
func (s *Server) setupMiddleware() {
	secCfg := mw.DefaultSecurityConfig()
	secCfg.AllowedOrigins = s.config.AllowedOrigins

	s.echo.Pre(mw.NewTrailingSlash(s.config.APIPrefix))

	s.echo.Use(echomw.Recover())
	s.echo.Use(mw.NewRequestID())
	s.echo.Use(mw.NewRequestLogger(logger.Global().Module("access")))
	if s.metrics != nil {
		s.echo.Use(mw.NewMetrics(s.metrics.HTTP))
	}
	s.echo.Use(mw.NewCORS(secCfg))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	if s.config.RateLimit {
		s.echo.Use(mw.NewRateLimiter(s.config.RequestsPerSec, s.config.RateBurst))
	}
	if s.config.Gzip {
		s.echo.Use(echomw.Gzip())
	}
	s.echo.Use(mw.NewSecureHeaders(secCfg))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	if s.metrics != nil && s.config.MetricsPath != "" {
		s.echo.GET(s.config.MetricsPath, echo.WrapHandler(s.metrics.Handler()))
	}
	s.controller.Register(s.echo.Group(s.config.APIPrefix))
}

func (s *Server) handleError(err error, c echo.Context) {
	resources.WriteError(c, err, s.log)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return errors.New(fmt.Errorf("listen on %s: %w", s.config.Address(), err)).
			Component("api").
			Category(errors.CategorySystem).
			Build()
	}
	s.echo.Listener = ln

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("HTTP server listening",
			logger.String("address", ln.Addr().String()),
			logger.String("api_prefix", s.config.APIPrefix))
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown()
	})
	return g.Wait()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.log.Info("shutting down HTTP server")
	if err := s.echo.Shutdown(ctx); err != nil {
		return errors.New(err).
			Component("api").
			Category(errors.CategoryTimeout).
			Context("operation", "shutdown").
			Build()
	}
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Addr returns the bound listener address once Run has started.
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}
