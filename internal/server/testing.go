package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sxastarter/lastmod-proxy/internal/contentgraph"
)

func testBackendWithHandler(t testing.TB, handler http.HandlerFunc) (*httptest.Server, string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	return server, serverURL.Host
}

// testContentGraph serves a fixed updated timestamp for every item, or a
// null item when updated is empty.
func testContentGraph(t testing.TB, updated string) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if updated == "" {
			fmt.Fprint(w, `{"data":{"layout":{"item":null}}}`)
			return
		}
		fmt.Fprintf(w, `{"data":{"layout":{"item":{"updated":%q}}}}`, updated)
	}))
	t.Cleanup(server.Close)

	return server.URL
}

func testServer(t testing.TB, config *Config) *Server {
	t.Helper()

	config.Bind = "127.0.0.1"
	config.HttpPort = 0

	server := NewServer(config)
	err := server.Start()
	require.NoError(t, err)

	t.Cleanup(server.Stop)

	return server
}

func testServerConfig(t testing.TB, updated string, sitesYAML string) *Config {
	t.Helper()

	_, upstream := testBackendWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "page %s", r.URL.Path)
	})

	config := &Config{
		UpstreamURL:     upstream,
		UpstreamTimeout: DefaultUpstreamTimeout,
		ContentGraph:    contentgraph.ClientConfig{Endpoint: testContentGraph(t, updated)},
	}
	if sitesYAML != "" {
		config.SitesPath = writeSitesFile(t, sitesYAML)
	}
	return config
}

func writeSitesFile(t testing.TB, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sites.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
