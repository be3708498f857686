package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/api"
	"github.com/Freeeeeet/sessions_bot/internal/app"
	"github.com/Freeeeeet/sessions_bot/internal/controller"
	"github.com/go-telegram/bot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot (default)",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.RequireBot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting sessions bot",
		zap.String("store", cfg.Store),
		zap.String("pointer_backend", cfg.PointerBackend),
		zap.String("timezone", cfg.Sessions.Timezone),
		zap.Strings("times", cfg.Sessions.Times))

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	b, err := bot.New(cfg.TelegramToken, bot.WithErrorsHandler(func(err error) {
		logger.Error("Telegram bot error", zap.Error(err))
	}))
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	d.display.SetPublisher(controller.NewTelegramPublisher(b))

	botController := controller.NewBotController(b, controller.Services{
		Users:    d.users,
		Claims:   d.claims,
		Display:  d.display,
		IsAdmin:  cfg.IsAdmin,
		Location: d.clock.Location(),
	}, logger)

	if err := botController.RegisterHandlers(ctx); err != nil {
		// Меню команд не критично для работы
		logger.Warn("Failed to register bot commands menu", zap.Error(err))
	}

	scheduler := app.NewScheduler(d.generator, d.display, cfg.Sessions.RefreshCron, d.clock.Location(), logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return botController.Start(ctx)
	})

	if cfg.HTTPEnabled {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewHandler(d.display, d.healthChecks(), logger).Mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("Sessions bot stopped")
	return err
}
