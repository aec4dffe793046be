package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/sxastarter/lastmod-proxy/internal/contentgraph"
	"github.com/sxastarter/lastmod-proxy/internal/server"
)

var (
	ErrorExcludedPath   = errors.New("path is excluded from Last-Modified")
	ErrorSiteUnresolved = errors.New("unable to resolve a site for the URL")
	ErrorInvalidPageURL = errors.New("invalid page URL")
)

type lookupCommand struct {
	cmd       *cobra.Command
	graph     contentgraph.ClientConfig
	sitesPath string
	site      string
}

func newLookupCommand() *lookupCommand {
	lookupCommand := &lookupCommand{}
	lookupCommand.cmd = &cobra.Command{
		Use:   "lookup <url>",
		Short: "Show the Last-Modified value a page URL would receive",
		RunE:  lookupCommand.run,
		Args:  cobra.ExactArgs(1),
	}

	lookupCommand.cmd.Flags().StringVar(&lookupCommand.sitesPath, "sites", getEnvString("SITES_FILE", ""), "Path to the sites YAML file (empty for built-in defaults)")
	lookupCommand.cmd.Flags().StringVar(&lookupCommand.site, "site", "", "Site name to use instead of resolving it from the host")
	addContentGraphFlags(lookupCommand.cmd, &lookupCommand.graph)

	return lookupCommand
}

func (c *lookupCommand) run(cmd *cobra.Command, args []string) error {
	sitesConfig, err := server.LoadSitesConfig(c.sitesPath)
	if err != nil {
		return err
	}

	options, err := sitesConfig.LastModifiedOptions(false)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, args[0], nil)
	if err != nil || req.URL.Host == "" {
		return fmt.Errorf("%w: %s", ErrorInvalidPageURL, args[0])
	}
	if c.site != "" {
		req.AddCookie(&http.Cookie{Name: options.SiteCookie, Value: c.site})
	}

	if options.Exclusions.Matches(req.URL.Path) {
		return fmt.Errorf("%w: %s", ErrorExcludedPath, req.URL.Path)
	}

	page, ok := server.NewPageResolver(options, sitesConfig.SiteResolver()).Resolve(req)
	if !ok {
		return fmt.Errorf("%w: %s", ErrorSiteUnresolved, req.Host)
	}

	client, err := contentgraph.NewClient(c.graph)
	if err != nil {
		return err
	}

	updated, httpDate := "-", "-"
	result := client.LastModified(cmd.Context(), page.SiteName, page.Language, page.ItemPath)
	if result.Found {
		updated = result.Updated
		httpDate, err = contentgraph.FormatHTTPDate(result.Updated)
		if err != nil {
			httpDate = "invalid"
		}
	}

	table := NewTable(isTerminal(cmd))
	table.AddRow("SITE", "LANGUAGE", "ITEM PATH", "UPDATED", "LAST-MODIFIED")
	table.AddRow(page.SiteName, page.Language, page.ItemPath, updated, httpDate)
	table.Print(cmd.OutOrStdout())

	return nil
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
