package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sxastarter/lastmod-proxy/internal/server"
)

type runCommand struct {
	cmd              *cobra.Command
	config           server.Config
	debugLogsEnabled bool
	logFormat        string
}

func newRunCommand() *runCommand {
	runCommand := &runCommand{}
	runCommand.cmd = &cobra.Command{
		Use:   "run",
		Short: "Run the server",
		RunE:  runCommand.run,
		Args:  cobra.NoArgs,
	}

	runCommand.cmd.Flags().BoolVar(&runCommand.debugLogsEnabled, "debug", getEnvBool("DEBUG", false), "Include debugging logs")
	runCommand.cmd.Flags().StringVar(&runCommand.logFormat, "log-format", getEnvString("LOG_FORMAT", string(server.LogFormatJSON)), "Log format (json, ecs or text)")
	runCommand.cmd.Flags().StringVar(&runCommand.config.Bind, "bind", getEnvString("BIND", server.DefaultBind), "Address to bind to")
	runCommand.cmd.Flags().IntVar(&runCommand.config.HttpPort, "http-port", getEnvInt("HTTP_PORT", server.DefaultHttpPort), "Port to serve HTTP traffic on")
	runCommand.cmd.Flags().IntVar(&runCommand.config.MetricsPort, "metrics-port", getEnvInt("METRICS_PORT", 0), "Publish metrics on the specified port (default zero to disable)")
	runCommand.cmd.Flags().StringVar(&runCommand.config.UpstreamURL, "upstream", getEnvString("UPSTREAM", ""), "Rendering host to proxy to (host:port or URL)")
	runCommand.cmd.Flags().DurationVar(&runCommand.config.UpstreamTimeout, "upstream-timeout", getEnvDuration("UPSTREAM_TIMEOUT", server.DefaultUpstreamTimeout), "Maximum time to wait for the rendering host to respond")
	runCommand.cmd.Flags().StringVar(&runCommand.config.HealthCheck.Path, "health-check-path", getEnvString("HEALTH_CHECK_PATH", ""), "Path on the rendering host to probe for /up (empty to disable)")
	runCommand.cmd.Flags().DurationVar(&runCommand.config.HealthCheck.Interval, "health-check-interval", getEnvDuration("HEALTH_CHECK_INTERVAL", server.DefaultHealthCheckInterval), "Interval between rendering host health checks")
	runCommand.cmd.Flags().DurationVar(&runCommand.config.HealthCheck.Timeout, "health-check-timeout", getEnvDuration("HEALTH_CHECK_TIMEOUT", server.DefaultHealthCheckTimeout), "Time each health check must complete in")
	runCommand.cmd.Flags().StringVar(&runCommand.config.SitesPath, "sites", getEnvString("SITES_FILE", ""), "Path to the sites YAML file (empty for built-in defaults)")
	runCommand.cmd.Flags().BoolVar(&runCommand.config.LastModifiedDisabled, "disable", getEnvString("DISABLE_LAST_MODIFIED_MIDDLEWARE", "") == "true", "Pass all requests through without setting Last-Modified")
	addContentGraphFlags(runCommand.cmd, &runCommand.config.ContentGraph)

	return runCommand
}

func (c *runCommand) run(cmd *cobra.Command, args []string) error {
	err := c.setLogger()
	if err != nil {
		return err
	}

	s := server.NewServer(&c.config)
	err = s.Start()
	if err != nil {
		return err
	}
	defer s.Stop()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	<-ch

	return nil
}

func (c *runCommand) setLogger() error {
	level := slog.LevelInfo
	if c.debugLogsEnabled {
		level = slog.LevelDebug
	}

	logger, err := server.NewLogger(server.LogFormat(c.logFormat), level, os.Stdout)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)
	return nil
}
