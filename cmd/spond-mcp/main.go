// spond-mcp: MCP server for the Spond activity platform.
//
// Exposes the family's Spond groups, events and RSVP state as MCP tools
// so an AI assistant can answer "what's on this week?" and respond to
// events on a kid's behalf.
//
// Usage:
//
//	spond-mcp serve    # stdio transport (for local MCP clients)
//	spond-mcp http     # HTTP transport with /health and bearer auth
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/oknedal/spond-mcp/internal/config"
	spondserver "github.com/oknedal/spond-mcp/internal/server"
	"github.com/oknedal/spond-mcp/internal/web"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	// Log to stderr: on the stdio transport, stdout belongs to JSON-RPC.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "http":
		if err := runHTTP(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("spond-mcp v%s\n", spondserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Username == "" || cfg.Password == "" {
		slog.Warn("SPOND_USERNAME/SPOND_PASSWORD not set — API calls will fail")
	}
	return cfg, nil
}

func runStdio() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, cleanup, err := spondserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func runHTTP() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, cleanup, err := spondserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	if cfg.AuthToken == "" {
		slog.Warn("starting with NO AUTH — set MCP_AUTH_TOKEN", "port", cfg.Port)
	} else {
		slog.Info("starting with auth enabled", "port", cfg.Port)
	}

	e := web.New(s, cfg.AuthToken)
	return e.Start(fmt.Sprintf(":%d", cfg.Port))
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `spond-mcp v%s — MCP server for Spond

Usage:
  spond-mcp serve    Start the MCP server (stdio transport)
  spond-mcp http     Start the MCP server (HTTP transport on $PORT)

Environment:
  SPOND_USERNAME    Spond account email
  SPOND_PASSWORD    Spond account password
  KIDS_CONFIG       JSON array: [{"name":"Oliver","groups":["Fjordvik"]}]
  MCP_AUTH_TOKEN    Bearer token for the HTTP transport (empty = no auth)
  PORT              HTTP listen port (default 8080)
  SPOND_MCP_CONFIG  Optional YAML config file (env vars win)
`, spondserver.Version)
}
