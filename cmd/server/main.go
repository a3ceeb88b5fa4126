package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/dmvmap/internal/config"
	"github.com/woozymasta/dmvmap/internal/jsonbin"
	"github.com/woozymasta/dmvmap/internal/logger"
	"github.com/woozymasta/dmvmap/internal/recs"
	"github.com/woozymasta/dmvmap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile    string `short:"c" long:"config"     env:"CONFIG_FILE"         description:"Path to configuration file" default:"config.yaml"`
	Addr          string `short:"a" long:"addr"       env:"LISTEN_ADDRESS"      description:"Address to listen on"       default:"0.0.0.0"`
	Port          int    `short:"p" long:"port"       env:"LISTEN_PORT"         description:"Port to listen on"          default:"8080"`
	AccessKey     string `long:"jsonbin-key"          env:"JSONBIN_ACCESS_KEY"  description:"JSONBin access key for recommendations"`
	RedisPassword string `long:"redis-password"       env:"REDIS_PASSWORD"      description:"Password of the recommendation cache"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	srvCtx := server.NewServerContext(cfg)

	if store := recommendationStore(cfg.Recommendations, opts); store != nil {
		srvCtx.Recs = recs.NewService(store)
	}

	handler := server.RequestLogger(srvCtx.Routes())

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("restaurants", srvCtx.Dataset().Len()).
		Bool("recommendations", srvCtx.Recs != nil).
		Msg("Web server started")

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// recommendationStore returns nil when recommendations are not configured.
func recommendationStore(rc config.Recommendations, opts Options) jsonbin.Store {
	if !rc.Enabled() {
		log.Info().Msg("Recommendations disabled: no bin configured")
		return nil
	}
	if opts.AccessKey == "" {
		log.Warn().Msg("Recommendations disabled: JSONBIN_ACCESS_KEY is not set")
		return nil
	}

	client := jsonbin.New(rc.BinID, opts.AccessKey, rc.Timeout)
	if rc.BaseURL != "" {
		client.BaseURL = rc.BaseURL
	}

	cache := jsonbin.OpenRedis(rc.Redis.Addr, opts.RedisPassword, rc.Redis.DB)
	if cache == nil {
		return client
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", rc.Redis.Addr).Msg("Recommendation cache unreachable, continuing without it")
		_ = cache.Close()
		return client
	}

	log.Info().Str("addr", rc.Redis.Addr).Dur("ttl", rc.CacheTTL).Msg("Recommendation cache enabled")

	return &jsonbin.CachedStore{
		Store: client,
		Cache: cache,
		Key:   "dmvmap:recs:" + rc.BinID,
		TTL:   rc.CacheTTL,
	}
}
