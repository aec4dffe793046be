package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"regexp"
	"sync/atomic"
	"time"
)

const DefaultUpstreamTimeout = time.Second * 30

var (
	ErrorNoUpstream            = errors.New("no upstream configured")
	ErrorInvalidUpstreamTarget = errors.New("invalid upstream target")

	hostRegex = regexp.MustCompile(`^(\w[-_.\w+]+)(:\d+)?$`)
)

// Upstream proxies requests to the rendering host.
type Upstream struct {
	targetURL   *url.URL
	proxy       *httputil.ReverseProxy
	healthy     atomic.Bool
	healthCheck *HealthCheck
}

func NewUpstream(target string, responseTimeout time.Duration) (*Upstream, error) {
	uri, err := parseUpstreamURL(target)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = responseTimeout

	upstream := &Upstream{targetURL: uri}
	upstream.healthy.Store(true)
	upstream.proxy = &httputil.ReverseProxy{
		Rewrite:      upstream.Rewrite,
		ErrorHandler: upstream.handleProxyError,
		Transport:    transport,
		BufferPool:   sharedProxyBufferPool,
	}

	return upstream, nil
}

func (u *Upstream) Target() string {
	return u.targetURL.String()
}

// BeginHealthChecks marks the upstream unhealthy until the first check
// passes. It is a no-op when checks are disabled.
func (u *Upstream) BeginHealthChecks(config HealthCheckConfig) {
	if !config.Enabled() {
		return
	}

	interval := config.Interval
	if interval <= 0 {
		interval = DefaultHealthCheckInterval
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultHealthCheckTimeout
	}

	u.healthy.Store(false)
	u.healthCheck = NewHealthCheck(u, u.targetURL.JoinPath(config.Path), interval, timeout)
}

func (u *Upstream) StopHealthChecks() {
	if u.healthCheck != nil {
		u.healthCheck.Close()
		u.healthCheck = nil
	}
}

func (u *Upstream) HealthCheckCompleted(success bool) {
	if u.healthy.Swap(success) != success {
		slog.Info("Upstream health changed", "target", u.Target(), "healthy", success)
	}
}

func (u *Upstream) Healthy() bool {
	return u.healthy.Load()
}

func (u *Upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.proxy.ServeHTTP(w, r)
}

func (u *Upstream) Rewrite(req *httputil.ProxyRequest) {
	// Preserve & append X-Forwarded-For
	req.Out.Header["X-Forwarded-For"] = req.In.Header["X-Forwarded-For"]
	req.SetXForwarded()

	req.SetURL(u.targetURL)
	req.Out.Host = req.In.Host
}

// Private

func (u *Upstream) handleProxyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(r.Context().Err(), context.Canceled):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		slog.Warn("Upstream timed out", "target", u.Target(), "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusGatewayTimeout)
	default:
		slog.Error("Error while proxying", "target", u.Target(), "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

func parseUpstreamURL(target string) (*url.URL, error) {
	if target == "" {
		return nil, ErrorNoUpstream
	}

	if hostRegex.MatchString(target) {
		target = "http://" + target
	}

	uri, err := url.Parse(target)
	if err != nil || (uri.Scheme != "http" && uri.Scheme != "https") || uri.Host == "" {
		return nil, fmt.Errorf("%s: %w", target, ErrorInvalidUpstreamTarget)
	}
	return uri, nil
}
