package server

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const DefaultLocale = "en"

var (
	DefaultLocales = []string{"en", "fr-CA", "ja-JP"}

	DefaultExclusionPatterns = []string{
		`^/api/`,
		`^/sitecore/`,
		`^/_next/`,
		`^/favicon\.ico$`,
		`\.[a-zA-Z0-9]+$`,
	}
)

// PageContext identifies the content item a request is for.
type PageContext struct {
	SiteName string
	Language string
	ItemPath string
}

// PageResolver derives the page context of a request from its site cookie,
// host and path.
type PageResolver struct {
	siteCookie string
	locales    LocaleTable
	sites      SiteLookup
}

func NewPageResolver(options LastModifiedOptions, sites SiteLookup) *PageResolver {
	return &PageResolver{
		siteCookie: options.SiteCookie,
		locales:    options.Locales,
		sites:      sites,
	}
}

// Resolve returns false when no site can be determined for the request.
func (p *PageResolver) Resolve(r *http.Request) (PageContext, bool) {
	siteName := p.siteName(r)
	if siteName == "" {
		return PageContext{}, false
	}

	language, itemPath := p.locales.Resolve(r.URL.Path)

	return PageContext{
		SiteName: siteName,
		Language: language,
		ItemPath: itemPath,
	}, true
}

func (p *PageResolver) siteName(r *http.Request) string {
	if p.siteCookie != "" {
		cookie, err := r.Cookie(p.siteCookie)
		if err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}

	if p.sites == nil || r.Host == "" {
		return ""
	}

	name, _ := p.sites.SiteForHost(r.Host)
	return name
}

// LocaleTable holds the locales that may appear as the first path segment.
type LocaleTable struct {
	Locales []string
	Default string
}

func NewLocaleTable(locales []string, defaultLocale string) LocaleTable {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	return LocaleTable{Locales: locales, Default: defaultLocale}
}

// Resolve splits a request path into its language and item path. When the
// first segment is a known locale it is consumed; otherwise the default
// locale applies and the path is used as is.
func (t LocaleTable) Resolve(path string) (language string, itemPath string) {
	segments := splitPath(path)

	if len(segments) > 0 {
		if locale, ok := t.lookup(segments[0]); ok {
			return locale, "/" + strings.Join(segments[1:], "/")
		}
	}

	if path == "" {
		path = "/"
	}
	return t.Default, path
}

func (t LocaleTable) lookup(segment string) (string, bool) {
	for _, locale := range t.Locales {
		if locale == segment {
			return locale, true
		}
	}
	return "", false
}

// ExclusionRules match paths that never carry a content-derived header.
type ExclusionRules []*regexp.Regexp

func NewExclusionRules(patterns []string) (ExclusionRules, error) {
	rules := make(ExclusionRules, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclusion pattern %q: %w", pattern, err)
		}
		rules = append(rules, re)
	}
	return rules, nil
}

func (rules ExclusionRules) Matches(path string) bool {
	for _, re := range rules {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Private

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}
