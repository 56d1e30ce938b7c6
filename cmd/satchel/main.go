// satchel is an MCP server exposing a sandboxed filesystem vault, web
// search, a wiki, a cloud drive and team chat as tools and resources over
// stdio.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/satchel-mcp/satchel/internal/config"
	"github.com/satchel-mcp/satchel/internal/server"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to satchel.yaml")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("satchel %s\n", version)
		return
	}

	// Stdout carries JSON-RPC; all logging goes to stderr.
	level := zerolog.InfoLevel
	switch {
	case *verbose >= 2:
		level = zerolog.TraceLevel
	case *verbose == 1:
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	config.LoadEnvFiles()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize server")
	}

	log.Info().Str("version", version).Msg("serving MCP over stdio")
	if err := srv.Serve(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
