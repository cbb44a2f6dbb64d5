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

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"

	"agriedge/cmd/buildCFG"
	"agriedge/internal/api/api"
	"agriedge/internal/auth"
	rabbitReader "agriedge/internal/consumerWorker"
	"agriedge/internal/duplicate"
	"agriedge/internal/listing"
	"agriedge/internal/mailer"
	"agriedge/internal/metrics"
	"agriedge/internal/rabbit"
	"agriedge/internal/registration"
	"agriedge/internal/repo"
	"agriedge/internal/service"
	"agriedge/internal/store"
	"agriedge/pkg/validator"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "AGRIEDGE"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)

	storeCfg, err := buildCFG.BuildStoreConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build store config")
	}
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	docs, err := store.Open(startCtx, storeCfg, &log)
	startCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open document store")
	}
	log.Info().Str("driver", storeCfg.Driver).Msg("document store ready")

	repository, err := repo.NewRepository(docs, &log)
	if err != nil {
		log.Fatal().Msgf("failed to initialize repository: %v", err)
	}

	authCfg, admins, err := buildCFG.BuildAuthConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build auth config")
	}
	if _, err := auth.SeedAdmins(context.Background(), repository, admins, &log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admins")
	}
	provider := auth.NewProvider(repository, authCfg, &log)
	authorizer := auth.NewAuthorizer(repository, &log)

	m := metrics.New(buildCFG.BuildMetricsConfig(cfg).Prefix, nil)

	regCfg := buildCFG.BuildRegistrationConfig(cfg)
	catalogue := validator.NewCatalogue(regCfg.Interests)
	validator.SetValidator(validator.New(catalogue))

	opts := []registration.Option{registration.WithMetrics(m)}

	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}
	var reader *rabbitReader.Reader
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	if rabbitCfg.Enabled {
		rmq, err := rabbit.NewRabbit(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue, &log)
		if err != nil {
			log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rmq.Close()
		opts = append(opts, registration.WithPublisher(rmq))

		mail := mailer.New(buildCFG.BuildSMTPConfig(cfg, &log), &log)
		reader = rabbitReader.NewReader(rmq, mail, &log)
		reader.Start(workerCtx)
	}

	workflow := registration.NewWorkflow(
		validator.NewDraftValidator(catalogue),
		duplicate.NewChecker(repository),
		repository,
		&log,
		opts...,
	)

	exportCfg := buildCFG.BuildExportConfig(cfg, &log)
	serviceInstance := service.NewService(service.Deps{
		Repo:       repository,
		Provider:   provider,
		Authorizer: authorizer,
		Workflow:   workflow,
		Sessions:   listing.NewSessions(buildCFG.BuildListingConfig(cfg).SessionTTL),
		Metrics:    m,
		Log:        &log,
		Options: service.Options{
			RequireAuth:   regCfg.RequireAuth,
			Location:      exportCfg.Location,
			DisplayLayout: exportCfg.DisplayLayout,
		},
	})
	app := api.NewRouters(&api.Routers{
		Service:    serviceInstance,
		Identities: provider,
		Admins:     authorizer,
		Metrics:    m,
		Mode:       serverCfg.Mode,
	})

	srv := &http.Server{
		Addr:              ":" + serverCfg.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", serverCfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Msgf("Error shutting down server: %v", err)
	}

	cancelWorkers()
	if reader != nil {
		reader.Stop()
	}

	if err := docs.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close document store")
	}
	log.Info().Msg("Shutdown complete")
}
