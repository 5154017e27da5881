package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"betroom/api"
	"betroom/betting"
	"betroom/bot"
	"betroom/config"
	"betroom/database"
	"betroom/events"
	"betroom/infrastructure"
	"betroom/models"
	"betroom/repository"
	"betroom/service"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired services and the resources that must be released on shutdown
type App struct {
	DB         *database.DB
	EventBus   *events.Bus
	Users      service.UserService
	Rooms      service.RoomService
	Wagers     service.WagerService
	Settlement service.SettlementService

	closers []func()
}

// ConfigureLogging applies the configured level and picks a formatter for the environment
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// NewApp connects to the database and the optional cache and event stream, then builds the services
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app := &App{DB: db, EventBus: events.NewBus()}
	app.closers = append(app.closers, db.Close)

	var roomCache service.RoomCache
	if cfg.RedisAddr != "" {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			app.Close()
			return nil, err
		}
		cache := infrastructure.NewRedisRoomCache(rdb, cfg.RoomCacheTTL)
		cache.Attach(app.EventBus)
		roomCache = cache
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		log.WithField("addr", cfg.RedisAddr).Info("Room cache enabled")
	}

	if cfg.NATSServers != "" {
		nc := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := nc.Connect(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := nc.EnsureStream(infrastructure.EventStreamName, infrastructure.StreamSubjects()); err != nil {
			_ = nc.Close()
			app.Close()
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		infrastructure.NewNATSEventPublisher(nc).Attach(app.EventBus)
		app.closers = append(app.closers, func() { _ = nc.Close() })
		log.WithField("servers", cfg.NATSServers).Info("Event forwarding enabled")
	}

	var generator *betting.Generator
	if cfg.OutcomeSeed != 0 {
		log.WithField("seed", cfg.OutcomeSeed).Warn("Using seeded outcome generator, draws are reproducible")
		generator = betting.NewSeededGenerator(betting.DefaultRegistry(), cfg.OutcomeSeed)
	} else {
		generator = betting.NewSecureGenerator(betting.DefaultRegistry())
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, app.EventBus, cfg.RoomLockTimeout)
	app.Users = service.NewUserService(uowFactory, cfg)
	app.Rooms = service.NewRoomService(uowFactory, cfg, roomCache)
	app.Wagers = service.NewWagerService(uowFactory, cfg, nil)
	app.Settlement = service.NewSettlementService(uowFactory, generator, nil)

	return app, nil
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run serves the HTTP API, and the Discord bot when a token is configured, until ctx is cancelled
func Run(ctx context.Context, cfg *config.Config) error {
	log.WithField("environment", cfg.Environment).Info("Starting betroom...")

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if cfg.DiscordToken != "" {
		discordBot, err := bot.New(bot.Config{Token: cfg.DiscordToken, GuildID: cfg.DiscordGuildID},
			app.Users, app.Rooms, app.Wagers, app.Settlement)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		defer func() {
			if err := discordBot.Close(); err != nil {
				log.WithError(err).Error("Error closing Discord bot")
			}
		}()
	}

	handler := api.NewHandler(app.Users, app.Rooms, app.Wagers, app.Settlement)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handler, app.DB.Ping),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Shutdown completed")
	return nil
}

// CloseRoom settles a single room from the command line
func CloseRoom(ctx context.Context, cfg *config.Config, code string) (*models.SettlementResult, error) {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer app.Close()

	return app.Settlement.CloseRoom(ctx, code)
}
