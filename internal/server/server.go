package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sxastarter/lastmod-proxy/internal/contentgraph"
	"github.com/sxastarter/lastmod-proxy/internal/metrics"
)

const (
	shutdownTimeout = 10 * time.Second
	healthCheckPath = "/up"
)

type Server struct {
	config          *Config
	httpListener    net.Listener
	httpServer      *http.Server
	metricsListener net.Listener
	metricsServer   *http.Server
	upstream        *Upstream
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() error {
	handler, err := s.buildHandler()
	if err != nil {
		return err
	}

	err = s.startHTTPServer(handler)
	if err != nil {
		return err
	}

	err = s.startMetricsServer()
	if err != nil {
		s.httpListener.Close()
		return err
	}

	s.upstream.BeginHealthChecks(s.config.HealthCheck)

	slog.Info("Server started", "http", s.HttpPort(), "upstream", s.config.UpstreamURL, "last_modified_disabled", s.config.LastModifiedDisabled)
	return nil
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownConcurrently(ctx, s.httpServer, s.metricsServer)
	s.upstream.StopHealthChecks()

	slog.Info("Server stopped")
}

func (s *Server) HttpPort() int {
	return s.httpListener.Addr().(*net.TCPAddr).Port
}

// Private

func (s *Server) startHTTPServer(handler http.Handler) error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.HttpPort)

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.httpListener = l
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go s.httpServer.Serve(s.httpListener)

	return nil
}

func (s *Server) startMetricsServer() error {
	if s.config.MetricsPort == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.MetricsPort)

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.metricsListener = l
	s.metricsServer = &http.Server{
		Addr:    addr,
		Handler: metrics.Enable(),
	}

	go s.metricsServer.Serve(s.metricsListener)

	slog.Info("Metrics enabled", "port", s.config.MetricsPort)
	return nil
}

func (s *Server) buildHandler() (http.Handler, error) {
	sitesConfig, err := LoadSitesConfig(s.config.SitesPath)
	if err != nil {
		return nil, err
	}

	options, err := sitesConfig.LastModifiedOptions(s.config.LastModifiedDisabled)
	if err != nil {
		return nil, err
	}

	client, err := contentgraph.NewClient(s.config.ContentGraph)
	if err != nil {
		return nil, err
	}

	upstream, err := NewUpstream(s.config.UpstreamURL, s.config.UpstreamTimeout)
	if err != nil {
		return nil, err
	}

	s.upstream = upstream

	var handler http.Handler

	handler = upstream
	handler = WithLastModifiedMiddleware(options, client, sitesConfig.SiteResolver(), handler)
	handler = WithLoggingMiddleware(slog.Default(), handler)
	handler = WithRequestIDMiddleware(handler)
	handler = withHealthCheck(upstream, handler)

	return handler, nil
}

func shutdownConcurrently(ctx context.Context, servers ...*http.Server) {
	var wg sync.WaitGroup

	for _, srv := range servers {
		if srv != nil {
			wg.Go(func() { srv.Shutdown(ctx) })
		}
	}

	wg.Wait()
}

// withHealthCheck answers /up itself, reporting the rendering host's health
// when upstream checks are enabled.
func withHealthCheck(upstream *Upstream, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthCheckPath && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
			if !upstream.Healthy() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
