package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstream_ProxiesRequests(t *testing.T) {
	var forwardedHost, forwardedFor string
	_, target := testBackendWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		forwardedHost = r.Host
		forwardedFor = r.Header.Get("X-Forwarded-For")
		w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
		w.Write([]byte("hello from " + r.URL.Path))
	})

	upstream, err := NewUpstream(target, DefaultUpstreamTimeout)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "http://www.example.com/products", nil)
	resp := httptest.NewRecorder()
	upstream.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "hello from /products", resp.Body.String())
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 GMT", resp.Header().Get("Last-Modified"))
	assert.Equal(t, "www.example.com", forwardedHost)
	assert.Equal(t, "192.0.2.1", forwardedFor)
}

func TestUpstream_Errors(t *testing.T) {
	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		target := server.URL
		server.Close()

		upstream, err := NewUpstream(target, DefaultUpstreamTimeout)
		require.NoError(t, err)

		resp := httptest.NewRecorder()
		upstream.ServeHTTP(resp, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusBadGateway, resp.Code)
	})

	t.Run("Slow response", func(t *testing.T) {
		_, target := testBackendWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		})

		upstream, err := NewUpstream(target, time.Millisecond*20)
		require.NoError(t, err)

		resp := httptest.NewRecorder()
		upstream.ServeHTTP(resp, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusGatewayTimeout, resp.Code)
	})
}

func TestUpstream_HealthChecks(t *testing.T) {
	checked := make(chan string, 1)
	_, target := testBackendWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case checked <- r.URL.Path:
		default:
		}
	})

	upstream, err := NewUpstream(target, DefaultUpstreamTimeout)
	require.NoError(t, err)
	assert.True(t, upstream.Healthy())

	upstream.BeginHealthChecks(HealthCheckConfig{})
	assert.True(t, upstream.Healthy(), "disabled checks leave the upstream healthy")

	upstream.BeginHealthChecks(HealthCheckConfig{Path: "/api/healthz", Interval: shortTimeout, Timeout: shortTimeout})

	assert.Equal(t, "/api/healthz", <-checked)
	require.Eventually(t, upstream.Healthy, time.Second, shortTimeout)

	upstream.StopHealthChecks()
	upstream.HealthCheckCompleted(false)
	assert.False(t, upstream.Healthy())
}

func TestParseUpstreamURL(t *testing.T) {
	uri, err := parseUpstreamURL("localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", uri.String())

	uri, err = parseUpstreamURL("https://rendering.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://rendering.example.com", uri.String())

	_, err = parseUpstreamURL("")
	assert.ErrorIs(t, err, ErrorNoUpstream)

	_, err = parseUpstreamURL("ftp://files.example.com")
	assert.ErrorIs(t, err, ErrorInvalidUpstreamTarget)

	_, err = parseUpstreamURL("not a host")
	assert.ErrorIs(t, err, ErrorInvalidUpstreamTarget)
}
