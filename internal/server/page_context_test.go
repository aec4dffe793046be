package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleTable_Resolve(t *testing.T) {
	table := NewLocaleTable(DefaultLocales, "")

	tests := []struct {
		path     string
		language string
		itemPath string
	}{
		{"/fr-CA/products/widget", "fr-CA", "/products/widget"},
		{"/products/widget", "en", "/products/widget"},
		{"/ja-JP", "ja-JP", "/"},
		{"/ja-JP/", "ja-JP", "/"},
		{"/en/about//team/", "en", "/about/team"},
		{"/fr-ca/produits", "en", "/fr-ca/produits"},
		{"/EN/Products", "en", "/EN/Products"},
		{"/", "en", "/"},
		{"", "en", "/"},
		{"/de-DE/products", "en", "/de-DE/products"},
		{"/products/fr-CA", "en", "/products/fr-CA"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			language, itemPath := table.Resolve(tt.path)
			assert.Equal(t, tt.language, language)
			assert.Equal(t, tt.itemPath, itemPath)
		})
	}
}

func TestLocaleTable_CustomDefault(t *testing.T) {
	table := NewLocaleTable([]string{"da", "de"}, "da")

	language, itemPath := table.Resolve("/produkter")
	assert.Equal(t, "da", language)
	assert.Equal(t, "/produkter", itemPath)

	language, itemPath = table.Resolve("/de/produkte")
	assert.Equal(t, "de", language)
	assert.Equal(t, "/produkte", itemPath)
}

func TestExclusionRules(t *testing.T) {
	rules, err := NewExclusionRules(DefaultExclusionPatterns)
	require.NoError(t, err)

	excluded := []string{
		"/api/editing/render",
		"/sitecore/api/layout",
		"/_next/static/chunks/main.js",
		"/favicon.ico",
		"/robots.txt",
		"/images/logo.PNG",
		"/fr-CA/sitemap.xml",
	}
	for _, path := range excluded {
		assert.True(t, rules.Matches(path), path)
	}

	included := []string{
		"/",
		"/products/widget",
		"/fr-CA/products/widget",
		"/apis",
		"/about.us/team",
	}
	for _, path := range included {
		assert.False(t, rules.Matches(path), path)
	}
}

func TestExclusionRules_InvalidPattern(t *testing.T) {
	_, err := NewExclusionRules([]string{`^/api/`, `([`})
	assert.ErrorContains(t, err, "([")
}
