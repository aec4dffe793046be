package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sxastarter/lastmod-proxy/internal/contentgraph"
	"github.com/sxastarter/lastmod-proxy/internal/metrics"
)

const lastModifiedHeader = "Last-Modified"

type LastModifiedLookup interface {
	LastModified(ctx context.Context, siteName, language, itemPath string) contentgraph.LookupResult
}

type SiteLookup interface {
	SiteForHost(host string) (string, bool)
}

type LastModifiedOptions struct {
	Disabled   bool
	SiteCookie string
	Locales    LocaleTable
	Exclusions ExclusionRules
}

// LastModifiedMiddleware sets the Last-Modified header of page responses to
// the time the page's content item was last updated. It is best-effort: when
// anything goes wrong the request is served without touching the header.
type LastModifiedMiddleware struct {
	options LastModifiedOptions
	pages   *PageResolver
	lookup  LastModifiedLookup
	next    http.Handler
}

func WithLastModifiedMiddleware(options LastModifiedOptions, lookup LastModifiedLookup, sites SiteLookup, next http.Handler) http.Handler {
	return &LastModifiedMiddleware{
		options: options,
		pages:   NewPageResolver(options, sites),
		lookup:  lookup,
		next:    next,
	}
}

func (h *LastModifiedMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.options.Disabled || h.options.Exclusions.Matches(r.URL.Path) {
		h.next.ServeHTTP(w, r)
		return
	}

	httpDate, err := h.resolveLastModified(r)
	if err != nil {
		slog.Error("Unable to determine Last-Modified", "path", r.URL.Path, "error", err)
	}

	if httpDate == "" {
		h.next.ServeHTTP(w, r)
		return
	}

	setLoggedLastModified(r, httpDate)

	writer := newLastModifiedResponseWriter(w, httpDate)
	h.next.ServeHTTP(writer, r)
	writer.applyHeader(http.StatusOK)
}

// Private

func (h *LastModifiedMiddleware) resolveLastModified(r *http.Request) (httpDate string, err error) {
	defer func() {
		if p := recover(); p != nil {
			httpDate = ""
			err = fmt.Errorf("recovered: %v", p)
		}
	}()

	page, ok := h.pages.Resolve(r)
	if !ok {
		slog.Debug("No site for request, skipping Last-Modified", "host", r.Host, "path", r.URL.Path)
		return "", nil
	}
	setLoggedSite(r, page.SiteName)

	result := h.lookup.LastModified(r.Context(), page.SiteName, page.Language, page.ItemPath)
	if !result.Found {
		return "", nil
	}

	httpDate, err = contentgraph.FormatHTTPDate(result.Updated)
	if err != nil {
		return "", err
	}

	slog.Debug("Setting Last-Modified", "site", page.SiteName, "language", page.Language, "path", page.ItemPath, "last_modified", httpDate)
	metrics.Tracker.TrackHeaderSet(page.SiteName)

	return httpDate, nil
}

// lastModifiedResponseWriter applies the header as the response headers are
// written, so it replaces any value the downstream handler set.
type lastModifiedResponseWriter struct {
	http.ResponseWriter
	httpDate      string
	headerWritten bool
}

func newLastModifiedResponseWriter(w http.ResponseWriter, httpDate string) *lastModifiedResponseWriter {
	return &lastModifiedResponseWriter{ResponseWriter: w, httpDate: httpDate}
}

func (w *lastModifiedResponseWriter) WriteHeader(statusCode int) {
	w.applyHeader(statusCode)
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *lastModifiedResponseWriter) Write(b []byte) (int, error) {
	w.applyHeader(http.StatusOK)
	return w.ResponseWriter.Write(b)
}

func (w *lastModifiedResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *lastModifiedResponseWriter) applyHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	if statusCode >= http.StatusOK {
		w.headerWritten = true
		w.Header().Set(lastModifiedHeader, w.httpDate)
	}
}
