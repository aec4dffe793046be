package contentgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sxastarter/lastmod-proxy/internal/metrics"
)

const (
	DefaultEndpoint = "https://edge-platform.sitecorecloud.io/v1/content/api/graphql/v1"
	DefaultTimeout  = time.Second * 10

	contextIDParam  = "sitecoreContextId"
	apiKeyHeader    = "sc_apikey"
	clientUserAgent = "lastmod-proxy"

	maxResponseBytes = 1 << 20

	updatedPath = "data.layout.item.updated"
)

const itemUpdatedQuery = `
  query ItemUpdated($siteName: String!, $language: String!, $itemPath: String!) {
    layout(site: $siteName, routePath: $itemPath, language: $language) {
      item {
        updated
      }
    }
  }
`

var (
	ErrorInvalidEndpoint   = errors.New("invalid content graph endpoint")
	ErrorUnexpectedStatus  = errors.New("unexpected content graph response status")
	ErrorInvalidResponse   = errors.New("content graph response is not valid JSON")
	ErrorQueryFailed       = errors.New("content graph query failed")
	ErrorResponseTooLarge  = errors.New("content graph response too large")
	ErrorMissingLookupArgs = errors.New("site name, language and item path are required")
)

type ClientConfig struct {
	// Endpoint is the GraphQL URL. DefaultEndpoint is used when empty.
	Endpoint string
	// ContextID is the edge context identifier, sent as a query parameter.
	ContextID string
	// APIKey is sent in the sc_apikey header when set.
	APIKey string
	// Timeout bounds each lookup. DefaultTimeout is used when zero.
	Timeout time.Duration
	// HTTPClient performs the requests. A pooled client is created when nil.
	HTTPClient *http.Client
}

// LookupResult is the outcome of a last-modified lookup. Found is false
// whenever no usable timestamp could be obtained, for whatever reason.
type LookupResult struct {
	Updated string
	Found   bool
}

type Client struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func NewClient(config ClientConfig) (*Client, error) {
	endpoint, err := buildEndpoint(config.Endpoint, config.ContextID)
	if err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}

	return &Client{
		endpoint:   endpoint,
		apiKey:     config.APIKey,
		timeout:    timeout,
		httpClient: httpClient,
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// LastModified asks the content graph when the item at itemPath was last
// updated. It never fails: any problem reaching or reading the content graph
// is logged and reported as a result with Found set to false.
func (c *Client) LastModified(ctx context.Context, siteName, language, itemPath string) LookupResult {
	started := time.Now()

	updated, err := c.queryItemUpdated(ctx, siteName, language, itemPath)
	elapsed := time.Since(started)

	if err != nil {
		slog.Warn("Content graph lookup failed", "site", siteName, "language", language, "path", itemPath, "error", err)
		metrics.Tracker.TrackLookup(metrics.LookupError, elapsed)
		return LookupResult{}
	}

	if updated == "" {
		slog.Debug("No updated timestamp for item", "site", siteName, "language", language, "path", itemPath)
		metrics.Tracker.TrackLookup(metrics.LookupNotFound, elapsed)
		return LookupResult{}
	}

	metrics.Tracker.TrackLookup(metrics.LookupFound, elapsed)
	return LookupResult{Updated: updated, Found: true}
}

// Private

func (c *Client) queryItemUpdated(ctx context.Context, siteName, language, itemPath string) (string, error) {
	if siteName == "" || language == "" || itemPath == "" {
		return "", ErrorMissingLookupArgs
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(graphQLRequest{
		Query: itemUpdatedQuery,
		Variables: map[string]any{
			"siteName": siteName,
			"language": language,
			"itemPath": itemPath,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", clientUserAgent)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrorUnexpectedStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxResponseBytes {
		return "", ErrorResponseTooLarge
	}

	return extractUpdated(data)
}

func extractUpdated(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", ErrorInvalidResponse
	}

	result := gjson.ParseBytes(data)

	if errs := result.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		return "", fmt.Errorf("%w: %s", ErrorQueryFailed, errs.Get("0.message").String())
	}

	updated := result.Get(updatedPath)
	if updated.Type != gjson.String {
		return "", nil
	}
	return updated.String(), nil
}

func buildEndpoint(endpoint string, contextID string) (string, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrorInvalidEndpoint, endpoint)
	}

	if contextID != "" {
		query := u.Query()
		query.Set(contextIDParam, contextID)
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}
