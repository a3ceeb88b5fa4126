package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/dmvmap/internal/config"
	"github.com/woozymasta/dmvmap/internal/logger"
	"github.com/woozymasta/dmvmap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile      string `short:"c" long:"config"           env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	GitHubToken     string `long:"github-token"               env:"GITHUB_TOKEN" description:"Token for the GitHub contents API"`
	Concurrency     int    `short:"p" long:"concurrency"      env:"CONCURRENCY"  description:"Photo workers, overrides the config"`
	RestaurantsOnly bool   `short:"r" long:"restaurants-only" description:"Build restaurants only"`
	WalksOnly       bool   `short:"w" long:"walks-only"       description:"Build dog walks only"`
	Force           bool   `short:"f" long:"force"            description:"Force overwrite of existing files"`
}

func main() {
	_ = godotenv.Load(".env")

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	doRestaurants := true
	doWalks := true
	if opts.RestaurantsOnly && !opts.WalksOnly {
		doWalks = false
	} else if opts.WalksOnly && !opts.RestaurantsOnly {
		doRestaurants = false
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Bool("restaurants", doRestaurants).
		Bool("walks", doWalks).
		Bool("force", opts.Force).
		Msg("Starting loader")

	failed := false

	if doRestaurants {
		if _, err := processor.ProcessRestaurants(ctx, client, cfg.Restaurants, opts.Force); err != nil {
			log.Error().Err(err).Msg("Failed to process restaurants")
			failed = true
		}
	}

	if doWalks {
		if _, err := processor.ProcessWalks(ctx, client, cfg.Walks, opts.GitHubToken, opts.Concurrency, opts.Force); err != nil {
			log.Error().Err(err).Msg("Failed to process walks")
			failed = true
		}
	}

	if failed {
		stop()
		os.Exit(1)
	}

	log.Info().Msg("Loader finished successfully")
}
