package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sxastarter/lastmod-proxy/internal/contentgraph"
)

const (
	ENV_PREFIX = "LASTMOD_"
)

func addContentGraphFlags(cmd *cobra.Command, config *contentgraph.ClientConfig) {
	cmd.Flags().StringVar(&config.Endpoint, "graphql-endpoint", getEnvString("GRAPH_QL_ENDPOINT", contentgraph.DefaultEndpoint), "Content graph GraphQL endpoint")
	cmd.Flags().StringVar(&config.ContextID, "context-id", getEnvString("SITECORE_EDGE_CONTEXT_ID", ""), "Edge context identifier")
	cmd.Flags().StringVar(&config.APIKey, "api-key", getEnvString("SITECORE_API_KEY", ""), "API key for the content graph")
	cmd.Flags().DurationVar(&config.Timeout, "lookup-timeout", getEnvDuration("LOOKUP_TIMEOUT", contentgraph.DefaultTimeout), "Maximum time to wait for a content graph lookup")
}

func findEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(ENV_PREFIX + key)
	if ok {
		return value, true
	}

	value, ok = os.LookupEnv(key)
	if ok {
		return value, true
	}

	return "", false
}

func getEnvString(key, defaultValue string) string {
	value, ok := findEnv(key)
	if !ok {
		return defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, ok := findEnv(key)
	if !ok {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, ok := findEnv(key)
	if !ok {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := findEnv(key)
	if !ok {
		return defaultValue
	}

	durationValue, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return durationValue
}
