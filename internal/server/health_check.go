package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	healthCheckUserAgent = "lastmod-proxy"

	DefaultHealthCheckInterval = time.Second * 5
	DefaultHealthCheckTimeout  = time.Second * 5
)

type HealthCheckConfig struct {
	// Path on the rendering host to probe. Health checks are off when empty.
	Path     string
	Interval time.Duration
	Timeout  time.Duration
}

func (c HealthCheckConfig) Enabled() bool {
	return c.Path != ""
}

type HealthCheckConsumer interface {
	HealthCheckCompleted(success bool)
}

// HealthCheck periodically probes an endpoint and reports each outcome to
// its consumer until closed.
type HealthCheck struct {
	consumer HealthCheckConsumer
	endpoint *url.URL
	interval time.Duration
	timeout  time.Duration

	shutdown chan (bool)
	done     chan (bool)
}

func NewHealthCheck(consumer HealthCheckConsumer, endpoint *url.URL, interval time.Duration, timeout time.Duration) *HealthCheck {
	hc := &HealthCheck{
		consumer: consumer,
		endpoint: endpoint,
		interval: interval,
		timeout:  timeout,

		shutdown: make(chan bool),
		done:     make(chan bool),
	}

	go hc.run()
	return hc
}

// Close stops the checks, waiting for any check in progress to report.
func (hc *HealthCheck) Close() {
	close(hc.shutdown)
	<-hc.done
}

// Private

func (hc *HealthCheck) run() {
	defer close(hc.done)

	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	hc.check()

	for {
		select {
		case <-ticker.C:
			hc.check()

		case <-hc.shutdown:
			return
		}
	}
}

func (hc *HealthCheck) check() {
	ctx, cancel := context.WithTimeout(context.Background(), hc.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.endpoint.String(), nil)
	if err != nil {
		slog.Error("Unable to create healthcheck request", "error", err)
		hc.consumer.HealthCheckCompleted(false)
		return
	}

	req.Header.Set("User-Agent", healthCheckUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Debug("Healthcheck failed", "endpoint", hc.endpoint.String(), "error", err)
		hc.consumer.HealthCheckCompleted(false)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("Healthcheck failed", "endpoint", hc.endpoint.String(), "status", resp.StatusCode)
		hc.consumer.HealthCheckCompleted(false)
		return
	}

	hc.consumer.HealthCheckCompleted(true)
}
