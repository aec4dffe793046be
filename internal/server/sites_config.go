package server

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultSiteCookie = "sc_site"

var (
	ErrorInvalidSitesFile = errors.New("invalid sites file")
	ErrorSiteNameMissing  = errors.New("site name is required")
	ErrorDuplicateSite    = errors.New("duplicate site name")
)

// SitesConfig is the static data the Last-Modified middleware works from:
// the site table, the locale allow-list and the excluded routes.
type SitesConfig struct {
	SiteCookie    string       `yaml:"siteCookie"`
	DefaultLocale string       `yaml:"defaultLocale"`
	Locales       []string     `yaml:"locales"`
	Exclude       []string     `yaml:"exclude"`
	Sites         []SiteConfig `yaml:"sites"`
}

func DefaultSitesConfig() SitesConfig {
	return SitesConfig{
		SiteCookie:    DefaultSiteCookie,
		DefaultLocale: DefaultLocale,
		Locales:       append([]string{}, DefaultLocales...),
		Exclude:       append([]string{}, DefaultExclusionPatterns...),
	}
}

// LoadSitesConfig reads a YAML sites file. Keys missing from the file keep
// their default values. An empty path returns the defaults.
func LoadSitesConfig(path string) (SitesConfig, error) {
	config := DefaultSitesConfig()
	if path == "" {
		return config, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return SitesConfig{}, err
	}
	if err := yaml.Unmarshal(b, &config); err != nil {
		return SitesConfig{}, fmt.Errorf("%w: %w", ErrorInvalidSitesFile, err)
	}
	if err := config.validate(); err != nil {
		return SitesConfig{}, fmt.Errorf("%w: %w", ErrorInvalidSitesFile, err)
	}

	return config, nil
}

func (c SitesConfig) LastModifiedOptions(disabled bool) (LastModifiedOptions, error) {
	exclusions, err := NewExclusionRules(c.Exclude)
	if err != nil {
		return LastModifiedOptions{}, err
	}

	return LastModifiedOptions{
		Disabled:   disabled,
		SiteCookie: c.SiteCookie,
		Locales:    NewLocaleTable(c.Locales, c.DefaultLocale),
		Exclusions: exclusions,
	}, nil
}

func (c SitesConfig) SiteResolver() *SiteResolver {
	return NewSiteResolver(c.Sites)
}

// Private

func (c *SitesConfig) validate() error {
	if c.SiteCookie == "" {
		c.SiteCookie = DefaultSiteCookie
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = DefaultLocale
	}

	seen := map[string]bool{}
	for i := range c.Sites {
		site := &c.Sites[i]
		if site.Name == "" {
			return fmt.Errorf("sites[%d]: %w", i, ErrorSiteNameMissing)
		}
		if seen[site.Name] {
			return fmt.Errorf("sites[%d]: %w: %s", i, ErrorDuplicateSite, site.Name)
		}
		seen[site.Name] = true

		if site.HostName == "" {
			site.HostName = "*"
		}
	}

	if _, err := NewExclusionRules(c.Exclude); err != nil {
		return err
	}

	return nil
}
