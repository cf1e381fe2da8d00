// Command ollama-mcp runs the MCP server that exposes a local Ollama daemon
// as a set of tools over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/effective-security/ollama-mcp/config"
	"github.com/effective-security/ollama-mcp/server"
	"github.com/effective-security/ollama-mcp/utils"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		host     string
		port     int
		timeout  time.Duration
		cfgFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:          "ollama-mcp",
		Short:        "MCP server for a local Ollama daemon",
		Long:         "ollama-mcp serves model listing, chat, downloads, and host diagnostics\nas MCP tools over stdio. Configuration comes from flags, environment\nvariables, and an optional YAML file; flags win.",
		Version:      server.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(cfgFile)
			if err != nil {
				return err
			}
			if host != "" {
				cfg.OllamaHost = host
			}
			if port != 0 {
				cfg.OllamaPort = port
			}
			if timeout > 0 {
				cfg.Timeout = timeout
			}
			if logLevel != "" {
				cfg.LogLevel = strings.ToUpper(logLevel)
			}
			setupLogs(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Ollama daemon host")
	cmd.Flags().IntVar(&port, "port", 0, "Ollama daemon port")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "base request timeout")
	cmd.Flags().StringVar(&cfgFile, "config", "", "path to a YAML configuration file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: DEBUG INFO WARNING ERROR CRITICAL")
	cmd.AddCommand(toolsCmd())
	return cmd
}

func toolsCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool surface and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			d := server.New(cfg).Registry().Describe()
			if asYAML {
				fmt.Fprint(cmd.OutOrStdout(), utils.ToYAML(d))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), utils.ToJSONIndent(d))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "render as YAML")
	return cmd
}

// setupLogs writes to stderr; stdout carries the MCP session.
func setupLogs(cfg *config.Settings) {
	if strings.EqualFold(cfg.LogFormat, "json") {
		xlog.SetFormatter(xlog.NewJSONFormatter(os.Stderr))
	} else {
		xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	}
	xlog.SetGlobalLogLevel(logLevelOf(cfg.LogLevel))
}

func logLevelOf(level string) xlog.LogLevel {
	switch level {
	case "DEBUG":
		return xlog.DEBUG
	case "WARNING":
		return xlog.WARNING
	case "ERROR":
		return xlog.ERROR
	case "CRITICAL":
		return xlog.CRITICAL
	default:
		return xlog.INFO
	}
}
