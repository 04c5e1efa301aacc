// cmd/server/main.go
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

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/unclebandit/mailmerge-backend/internal/config"
	"github.com/unclebandit/mailmerge-backend/internal/controller"
	"github.com/unclebandit/mailmerge-backend/internal/google"
	"github.com/unclebandit/mailmerge-backend/internal/handler"
	"github.com/unclebandit/mailmerge-backend/internal/logging"
	"github.com/unclebandit/mailmerge-backend/internal/mailer"
	"github.com/unclebandit/mailmerge-backend/internal/metrics"
	"github.com/unclebandit/mailmerge-backend/internal/queue"
	"github.com/unclebandit/mailmerge-backend/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile, addr string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Run the mail merge HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Address = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Env file to load before reading the environment")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides ADDRESS")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(ctx, &cfg.StoreConfig, logger)
	if err != nil {
		return err
	}
	defer st.close()

	q, closeQueue, err := openQueue(cfg.AMQPURL, logger)
	if err != nil {
		return err
	}
	defer closeQueue()
	if err := queue.StartCampaignEventSubscriber(q, logger.Named("events")); err != nil {
		return err
	}

	rec := metrics.New()
	googleClient := google.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret)

	dispatcher := &service.Dispatcher{
		Transport:    mailer.NewGmailTransport(googleClient.OAuthConfig("")),
		CampaignRepo: st.campaigns,
		Queue:        q,
		Metrics:      rec,
		Logger:       logger.Named("dispatch"),
		Concurrency:  cfg.SendConcurrency,
		Limiter:      rate.NewLimiter(rate.Limit(cfg.SendRatePerSecond), cfg.SendBurst),
		SendTimeout:  cfg.SendTimeout,
	}
	authService := &service.AuthService{
		Google:   googleClient,
		UserRepo: st.users,
		Secret:   []byte(cfg.JWTSecret),
		TTL:      cfg.JWTTTL,
		Logger:   logger.Named("auth"),
	}
	mailService := &service.MailService{UserRepo: st.users, Dispatcher: dispatcher}
	campaignService := &service.CampaignService{
		CampaignRepo: st.campaigns,
		TemplateRepo: st.templates,
		Logger:       logger.Named("campaigns"),
	}
	templateService := &service.EmailTemplateService{TemplateRepo: st.templates}

	mailController := &controller.MailController{
		Mail:           mailService,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	router := &handler.Router{
		Auth:        &controller.AuthController{Auth: authService, Logger: logger},
		Users:       &controller.UserController{Users: st.users, Logger: logger},
		Mail:        mailController,
		Campaigns:   &controller.CampaignController{Campaigns: campaignService, Logger: logger},
		Templates:   &controller.TemplateController{Templates: templateService, Logger: logger},
		Tokens:      authService,
		Metrics:     rec,
		Logger:      logger.Named("http"),
		CORSOrigins: cfg.CORSOrigins,
		Ping:        st.ping,
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Address), zap.String("store", cfg.StoreDriver))
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SendTimeout+15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// Send batches outlive the shutdown deadline so they are never cut off
	// half-sent and unrecorded. A second signal abandons them.
	drainCtx, stopDrain := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopDrain()
	if err := mailController.Wait(drainCtx); err != nil {
		logger.Warn("abandoning in-flight send batches", zap.Error(err))
		return err
	}
	return nil
}

func openQueue(amqpURL string, logger *zap.Logger) (queue.Queue, func(), error) {
	if amqpURL == "" {
		return queue.NewInMemoryQueue(logger.Named("queue")), func() {}, nil
	}
	q, err := queue.DialAMQP(amqpURL, logger.Named("queue"))
	if err != nil {
		return nil, nil, err
	}
	return q, func() { _ = q.Close() }, nil
}
