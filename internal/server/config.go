package server

import (
	"time"

	"github.com/sxastarter/lastmod-proxy/internal/contentgraph"
)

const (
	DefaultHttpPort = 8080
	DefaultBind     = ""
)

type Config struct {
	Bind        string
	HttpPort    int
	MetricsPort int

	UpstreamURL     string
	UpstreamTimeout time.Duration
	HealthCheck     HealthCheckConfig

	ContentGraph contentgraph.ClientConfig

	SitesPath            string
	LastModifiedDisabled bool
}
