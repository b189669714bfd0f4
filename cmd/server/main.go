package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"penzion/internal/api"
	"penzion/internal/config"
	"penzion/internal/database"
	"penzion/internal/events"
	"penzion/internal/metrics"
	"penzion/internal/models"
	"penzion/internal/notify"
	"penzion/internal/pricing"
	"penzion/internal/service"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("PENZION_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.Managers, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect telegram bot")
		}
		notifier = tg
	}

	var databases []*database.DB
	var sites []*api.Site
	for _, siteCfg := range cfg.Sites {
		siteLogger := logger.With().Str("site", siteCfg.Name).Logger()

		db, err := database.NewDB(siteCfg.Database, &siteLogger)
		if err != nil {
			logger.Fatal().Str("site", siteCfg.Name).Err(err).Msg("open db error")
		}
		databases = append(databases, db)

		rates, err := pricing.Load(siteCfg.PriceList)
		if err != nil {
			logger.Fatal().Str("site", siteCfg.Name).Err(err).Msg("failed to load price list")
		}

		bus := events.NewEventBus()
		subscribeNotifications(bus, notifier, siteCfg.Name, &siteLogger)

		booking := service.NewBookingService(db, rates, bus, &siteLogger)
		requests := service.NewRequestService(db, booking, bus, &siteLogger)
		sites = append(sites, &api.Site{
			Name:     siteCfg.Name,
			Booking:  booking,
			Requests: requests,
		})
		logger.Info().Str("site", siteCfg.Name).Int("room_types", len(rates.RoomTypes())).Msg("Site loaded")
	}
	defer func() {
		for _, db := range databases {
			_ = db.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, siteCfg := range cfg.Sites {
		siteLogger := logger.With().Str("site", siteCfg.Name).Logger()
		backup := database.NewBackupService(siteCfg.Name, siteCfg.Database, cfg.Backup, &siteLogger)
		go backup.Start(ctx)
	}

	go startHealthServer(ctx, cfg.Server.HealthCheckPort, databases, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	perMinute, burst := cfg.RequestRate()
	srv := api.NewHTTPServer(sites, rdb, cfg.CacheTTL(), perMinute, burst, &logger)

	logger.Info().Int("port", cfg.Server.Port).Int("sites", len(sites)).Msg("Booking server started")
	if err := srv.Start(ctx, cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
}

// subscribeNotifications forwards domain events to the site managers.
func subscribeNotifications(bus *events.EventBus, notifier notify.Notifier, siteName string, logger *zerolog.Logger) {
	bus.Subscribe(events.TypeRequestCreated, func(ev events.Event) error {
		var req models.Request
		if err := json.Unmarshal(ev.Payload, &req); err != nil {
			return err
		}
		return notifier.NewRequest(siteName, &req)
	})
	bus.Subscribe(events.TypeReservationCommitted, func(ev events.Event) error {
		var res models.Reservation
		if err := json.Unmarshal(ev.Payload, &res); err != nil {
			return err
		}
		return notifier.ReservationCommitted(siteName, &res)
	})
	bus.Subscribe(events.TypeRequestPromoted, func(ev events.Event) error {
		logger.Info().RawJSON("event", ev.Payload).Msg("Request promoted")
		return nil
	})
	bus.Subscribe(events.TypeReservationDeleted, func(ev events.Event) error {
		logger.Info().RawJSON("event", ev.Payload).Msg("Reservation deleted")
		return nil
	})
}

func startHealthServer(ctx context.Context, port int, databases []*database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		for _, db := range databases {
			if err := db.PingContext(ctxPing); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
