package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"landslide-monitor/config"
	"landslide-monitor/controllers"
	"landslide-monitor/database"
	"landslide-monitor/ingest"
	"landslide-monitor/metrics"
	"landslide-monitor/services"
	"landslide-monitor/storage"
)

const shutdownTimeout = 30 * time.Second

func serveCommand(rt *runtime) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket hub and MQTT ingestion",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Run schema migrations before serving")
	return cmd
}

func serve(ctx context.Context, rt *runtime, migrate bool) error {
	cfg, log := rt.cfg, rt.log

	db, err := rt.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()
	if migrate {
		if err := database.Migrate(ctx, db, log); err != nil {
			return err
		}
	}

	m, err := metrics.New()
	if err != nil {
		return err
	}
	loc, err := cfg.History.Location()
	if err != nil {
		return err
	}

	hub := controllers.NewHub(log, m)
	history := services.NewHistoryAggregator(db, loc, cfg.History.SummaryCacheTTL, hub, m)
	sensors := services.NewSensorRegistry(db,
		services.NewFanOutListing(db, cfg.History.FanOutLimit),
		hub, m, history)
	if err := sensors.Replay(ctx); err != nil {
		log.Warn("failed to restore sensor status metrics", zap.Error(err))
	}
	images := storage.NewImageStore(cfg.Server.UploadDir, cfg.Server.MaxUploadMB<<20)

	h := &controllers.Handlers{
		Sensors:    sensors,
		History:    history,
		Reports:    services.NewReportIntake(db, images),
		Education:  services.NewEducationCatalog(db),
		Moderators: services.NewModerators(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Hub:        hub,
		Log:        log,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	gin.SetMode(cfg.Server.Mode)
	router := controllers.NewRouter(h, controllers.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		AuthEnabled: cfg.Auth.Enabled,
		JWTSecret:   cfg.Auth.JWTSecret,
		UploadDir:   images.Dir(),
		MaxUploadMB: cfg.Server.MaxUploadMB,
		Metrics:     m,
	})

	if cfg.MQTT.Enabled {
		sub := ingest.NewSubscriber(cfg.MQTT, history, log, m)
		if err := sub.Start(ctx); err != nil {
			log.Error("MQTT ingestion disabled", zap.Error(err))
		} else {
			defer sub.Stop()
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("auth", cfg.Auth.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
