package server

import (
	"net"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

const hostNameSeparator = "|"

type SiteConfig struct {
	Name     string `yaml:"name"`
	HostName string `yaml:"hostName"`
}

type siteHost struct {
	pattern  string
	matcher  *regexp.Regexp
	siteName string
}

func (h siteHost) wildcard() bool {
	return h.matcher != nil
}

func (h siteHost) matches(host string) bool {
	if h.wildcard() {
		return h.matcher.MatchString(host)
	}
	return h.pattern == host
}

// SiteResolver maps request hosts to configured site names.
type SiteResolver struct {
	hosts []siteHost
}

func NewSiteResolver(sites []SiteConfig) *SiteResolver {
	hosts := []siteHost{}

	for _, site := range sites {
		for _, pattern := range strings.Split(site.HostName, hostNameSeparator) {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			hosts = append(hosts, newSiteHost(pattern, site.Name))
		}
	}

	// Exact hosts first, then wildcards from most to least specific.
	sort.SliceStable(hosts, func(i, j int) bool {
		a, b := hosts[i], hosts[j]
		if a.wildcard() != b.wildcard() {
			return !a.wildcard()
		}
		if a.wildcard() {
			return len(a.pattern) > len(b.pattern)
		}
		return false
	})

	return &SiteResolver{hosts: hosts}
}

func (r *SiteResolver) SiteForHost(host string) (string, bool) {
	host = normalizeHost(host)
	if host == "" {
		return "", false
	}

	for _, h := range r.hosts {
		if h.matches(host) {
			return h.siteName, true
		}
	}
	return "", false
}

// Private

func newSiteHost(pattern string, siteName string) siteHost {
	if !strings.Contains(pattern, "*") {
		return siteHost{pattern: normalizeHost(pattern), siteName: siteName}
	}

	pattern = normalizeWildcard(pattern)
	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"

	return siteHost{
		pattern:  pattern,
		matcher:  regexp.MustCompile(expr),
		siteName: siteName,
	}
}

// normalizeWildcard converts each label without a wildcard to its ASCII form
// so patterns compare against hosts normalised by normalizeHost.
func normalizeWildcard(pattern string) string {
	labels := strings.Split(strings.TrimSuffix(pattern, "."), ".")
	for i, label := range labels {
		if strings.Contains(label, "*") {
			labels[i] = strings.ToLower(label)
			continue
		}
		labels[i] = normalizeHost(label)
	}
	return strings.Join(labels, ".")
}

func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return strings.ToLower(host)
	}
	return ascii
}
