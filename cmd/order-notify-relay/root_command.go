package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/order-notify-relay/internal/config"
	httpapi "github.com/fairyhunter13/order-notify-relay/internal/http"
	"github.com/fairyhunter13/order-notify-relay/internal/notify"
	"github.com/fairyhunter13/order-notify-relay/internal/obs"
	"github.com/fairyhunter13/order-notify-relay/internal/webhook"
	"github.com/spf13/cobra"
)

// version is overridden with -ldflags at release time.
var version = "0.1.0-dev"

func newRootCommand() *cobra.Command {
	var addrFlag, configFlag string
	cmd := &cobra.Command{
		Use:           "order-notify-relay",
		Short:         "Relay Shopify order webhooks as WhatsApp notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFlag != "" {
				if err := os.Setenv("CONFIG_FILE", configFlag); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addrFlag != "" {
				cfg.HTTPAddr = addrFlag
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&configFlag, "config", "", "path to TOML config file (overrides CONFIG_FILE)")
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "order-notify-relay "+version)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config) error {
	logger := obs.InitLogger()
	logger.Info("service_starting",
		"version", version,
		"store", cfg.StoreName,
		"auth_enforced", cfg.AuthEnforced(),
		"delivery_configured", cfg.DeliveryConfigured(),
		"display_timezone", cfg.DisplayTimezone,
	)

	verifier := webhook.NewVerifier(cfg.WebhookSecret, logger)
	if verifier.Mode() == webhook.ModeDisabled {
		logger.Warn("signature_verification_disabled",
			"hint", "set SHOPIFY_WEBHOOK_SECRET to enforce webhook signatures",
		)
	}
	if !cfg.DeliveryConfigured() {
		logger.Warn("delivery_not_configured",
			"hint", "set WHATSAPP_TOKEN and WHATSAPP_PHONE_ID to enable delivery",
		)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("invalid_display_timezone",
			"timezone", cfg.DisplayTimezone,
			"error", err,
		)
		loc = time.UTC
	}

	notifier := notify.NewNotifier(cfg, logger)
	app := httpapi.NewApp(cfg, verifier, notifier, loc)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-sigCtx.Done():
	}
	logger.Info("shutdown_signal")

	ctxSrv, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxSrv); err != nil {
		logger.Error("http_shutdown_error", "error", err)
	}
	logger.Info("service_stopped")
	return nil
}
