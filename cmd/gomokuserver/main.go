// Command gomokuserver runs the gomokuzero position service.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/gomokuzero/internal/config"
	"github.com/yourusername/gomokuzero/pkg/api"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	host := flag.String("host", cfg.Server.Host, "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", cfg.Server.Port, "Port to listen on")
	workers := flag.Int("workers", cfg.Server.MaxWorkers, "Max concurrent position replays")
	width := flag.Int("width", cfg.Board.Width, "Default board width")
	height := flag.Int("height", cfg.Board.Height, "Default board height")
	nInRow := flag.Int("n", cfg.Board.NInRow, "Default stones in a row to win")
	forbidden := flag.Bool("forbidden", cfg.Board.ForbiddenHands, "Apply the forbidden-move rule to the first mover by default")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("gomokuserver v%s\n", version)
		os.Exit(0)
	}

	cfg.Server.Host = *host
	cfg.Server.Port = *port
	cfg.Server.MaxWorkers = *workers
	cfg.Board.Width = *width
	cfg.Board.Height = *height
	cfg.Board.NInRow = *nInRow
	cfg.Board.ForbiddenHands = *forbidden
	cfg.LogLevel = *logLevel

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	serverCfg := api.DefaultConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.MaxWorkers = cfg.Server.MaxWorkers
	serverCfg.ReadTimeout = *readTimeout
	serverCfg.WriteTimeout = *writeTimeout

	server := api.NewServer(cfg.Board, serverCfg, version)
	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
