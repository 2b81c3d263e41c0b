package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/clientmax/agency-crm/internal/api"
	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
	"github.com/clientmax/agency-crm/internal/core/service"
	"github.com/clientmax/agency-crm/internal/core/session"
	"github.com/clientmax/agency-crm/internal/infrastructure/authprovider"
	"github.com/clientmax/agency-crm/internal/infrastructure/config"
	"github.com/clientmax/agency-crm/internal/infrastructure/db/mongo"
	"github.com/clientmax/agency-crm/internal/infrastructure/db/postgres"
	"github.com/clientmax/agency-crm/internal/infrastructure/db/redis"
	"github.com/clientmax/agency-crm/internal/infrastructure/gateway"
	"github.com/clientmax/agency-crm/pkg/httpx"
	"github.com/clientmax/agency-crm/pkg/logger"
)

// @title        Agency CRM API
// @version      1.0
// @description  Backend for the agency CRM: dual-identity auth, notifications,
// @description  threshold alerts and AI assist.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wake a scaled-to-zero backend before opening connections to it.
	if cfg.BackendBaseURL != "" {
		fetcher := httpx.NewFetcher(log)
		if fetcher.WakeBackend(ctx, cfg.BackendBaseURL) {
			log.Info().Str("url", cfg.BackendBaseURL).Msg("backend wake ping succeeded")
		} else {
			log.Warn().Str("url", cfg.BackendBaseURL).Msg("backend wake ping failed, continuing")
		}
	}

	// --- Data stores ---
	pg, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pg.Close()

	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	employeeRepo := postgres.NewEmployeeRepository(pg)
	clientRepo := postgres.NewClientRepository(pg)
	teamLeadRepo := postgres.NewTeamLeadRepository(pg)
	feedbackRepo := postgres.NewFeedbackRepository(pg)
	roleRepo := postgres.NewUserRoleRepository(pg)
	emailLogRepo := postgres.NewEmailLogRepository(pg)
	notificationRepo := mongo.NewNotificationRepository(mongoDB)

	kv := redis.NewKVStore(rdb)
	dedup := redis.NewAlertDedup(rdb)

	// --- Auth providers ---
	// Each session store gets its own provider instance: the hosted client
	// caches the current session per identity.
	employeeProvider, admin := newProvider(cfg, pg, log)
	clientProvider, _ := newProvider(cfg, pg, log)

	// --- Session stores ---
	employees := session.New(session.Config[domain.Employee]{
		Kind:     domain.IdentityEmployee,
		Provider: employeeProvider,
		Resolve:  employeeRepo.FindByAuthUserID,
		Link: func(ctx context.Context, email, authUserID string) (bool, error) {
			emp, err := employeeRepo.FindByEmail(ctx, email)
			if err != nil || emp == nil {
				return false, err
			}
			if err := employeeRepo.LinkAuthUser(ctx, emp.ID, authUserID); err != nil {
				return false, err
			}
			return true, nil
		},
		Log: log,
	})
	defer employees.Close()

	clients := session.New(session.Config[domain.Client]{
		Kind:     domain.IdentityClient,
		Provider: clientProvider,
		Resolve:  clientRepo.FindByAuthUserID,
		Log:      log,
	})
	defer clients.Close()

	// --- Services ---
	hub := service.NewHub()
	notifications := service.NewNotificationService(kv, notificationRepo, log,
		service.NewHubDeliverer("sound", hub),
		service.NewHubDeliverer("desktop", hub),
		service.NewHubDeliverer("toast", hub),
	)
	notifications.Restore(ctx)

	scanner := service.NewThresholdScanner(notifications, feedbackRepo, teamLeadRepo, dedup, log).
		WithIntervals(cfg.Scan.FeedbackInterval, cfg.Scan.UtilizationInterval)
	scanner.Start(ctx)

	aiClient := gateway.NewAIClient(http.DefaultClient, cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, log)
	emailClient := gateway.NewEmailClient(http.DefaultClient, cfg.Email.BaseURL, cfg.Email.APIKey, cfg.Email.From, log)

	assist := service.NewAssistService(aiClient, log)
	accounts := service.NewAccountService(admin, employeeRepo, clientRepo, roleRepo, log)
	alertMail := service.NewAlertMailService(emailClient, emailLogRepo, log)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Log:           log,
		JWTSecret:     cfg.Auth.JWTSecret,
		Employees:     employees,
		Clients:       clients,
		Notifications: notifications,
		Hub:           hub,
		Assist:        assist,
		Accounts:      accounts,
		AlertMail:     alertMail,
		Postgres:      pg,
		Mongo:         mongoDB,
		Redis:         rdb,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newProvider selects the auth provider implementation from configuration:
// "local" issues tokens straight from the domain database, anything else
// talks to the hosted auth service.
func newProvider(cfg *config.Config, pg *sql.DB, log zerolog.Logger) (ports.AuthProvider, ports.AdminAuthAPI) {
	if cfg.Auth.Mode == "local" {
		p := authprovider.NewLocal(pg, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
		return p, p
	}
	p := authprovider.NewHosted(http.DefaultClient, cfg.Auth.BaseURL, cfg.Auth.ServiceKey, log)
	return p, p
}
