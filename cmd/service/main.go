package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/sosoxd3/f90-music/internal/config"
	"github.com/sosoxd3/f90-music/internal/engagement"
	"github.com/sosoxd3/f90-music/internal/gateway"
	"github.com/sosoxd3/f90-music/internal/proxy"
	"github.com/sosoxd3/f90-music/internal/realtime"
	"github.com/sosoxd3/f90-music/internal/storage"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	app := &cli.Command{
		Name:  "f90-music",
		Usage: "Music showcase service: YouTube proxy, data gateway and local engagement store",
		Commands: []*cli.Command{
			serveCommand(logger),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

func serveCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if path == "" {
				if _, err := os.Stat("config.toml"); err == nil {
					path = "config.toml"
				}
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.YouTube.APIKey == "" {
		logger.Warn("no YouTube API key configured; live data will fall back to mocks")
	}

	back, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}

	bus := engagement.NewBus()
	store := engagement.NewStore(back, bus)

	proxySrv := proxy.NewServer(
		cfg.YouTube.APIKey,
		cfg.YouTube.APIBase,
		cfg.YouTube.ChannelID,
		logger.With("component", "proxy"),
	)

	gw := gateway.New(gateway.Config{
		ProxyURL:            fmt.Sprintf("http://127.0.0.1:%d/api/youtube", cfg.Server.Port),
		ChannelID:           cfg.YouTube.ChannelID,
		FallbackPlaylistID:  cfg.YouTube.FallbackPlaylistID,
		ShowcasePlaylistIDs: cfg.YouTube.ShowcasePlaylists,
	}, logger.With("component", "gateway"))
	gw.StartSweeper(ctx, gateway.SweepInterval)

	hub := realtime.NewHub()
	go hub.Run()
	ws := realtime.NewServer(hub, bus, logger.With("component", "realtime"))
	cancelFeed := ws.RunBusSubscriber()
	defer cancelFeed()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok","service":"f90-music"}`)
	})
	r.Route("/api", func(api chi.Router) {
		api.Mount("/youtube", proxySrv.Router())
		api.Mount("/engagement", store.Router())
		api.Mount("/", gw.Router())
	})
	r.Get("/ws", ws.ServeWS)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func newBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		return storage.NewMemStore(), nil
	case "file":
		return storage.NewFileStore(filepath.Join(cfg.Storage.Dir, "engagement"), logger.With("component", "storage"))
	case "redis":
		opt, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		return storage.NewRedisStore(rdb, cfg.Storage.Prefix, ctx, logger.With("component", "storage")), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
