package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/charleshuang3/posterboard/internal/auth"
	"github.com/charleshuang3/posterboard/internal/config"
	"github.com/charleshuang3/posterboard/internal/gormw"
	"github.com/charleshuang3/posterboard/internal/handlers/authapi"
	"github.com/charleshuang3/posterboard/internal/handlers/health"
	"github.com/charleshuang3/posterboard/internal/handlers/middleware"
	"github.com/charleshuang3/posterboard/internal/handlers/posterapi"
	"github.com/charleshuang3/posterboard/internal/hasher"
	"github.com/charleshuang3/posterboard/internal/idgen"
	"github.com/charleshuang3/posterboard/internal/poster"
	"github.com/charleshuang3/posterboard/internal/storage"
	"github.com/charleshuang3/posterboard/internal/tokens"
)

var (
	configPath = flag.String("c", os.Getenv("CONFIG_PATH"), "Path to configuration file")
)

func main() {
	flag.Parse()
	if *configPath == "" {
		log.Fatal().Msg("Config path must be provided via CONFIG_PATH env var or -c flag")
	}

	// Load configuration
	cfg := config.LoadConfig(*configPath)

	// cron schedule
	scheduler, _ := gocron.NewScheduler()
	scheduler.Start()

	// Initialize database
	db, err := gormw.Open(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	storage.RegisterRefreshTokensSweeper(scheduler, db)

	issuer, err := tokens.NewRS256Issuer(cfg.Auth.PrivateKeyPEM, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTLDuration())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token issuer")
	}

	gen, err := idgen.New(cfg.Auth.MachineID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ID generator")
	}

	authService := auth.NewService(db, hasher.NewBcryptHasher(), issuer, gen, cfg.Auth.RefreshTokenTTLDuration())
	posterService := poster.NewService(db)

	// Set up Gin router
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		gin.Recovery(),
		middleware.SecurityHeaders(cfg.GinMode == gin.ReleaseMode),
		middleware.Metrics(),
	)

	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)

	authHandlers := authapi.NewHandlers(authService, issuer)
	authHandlers.RegisterHandlers(router.Group("/"), rateLimiter.Middleware())

	posterHandlers := posterapi.NewHandlers(posterService)
	posterHandlers.RegisterHandlers(router.Group("/"), authHandlers.RequireAccessToken())

	health.NewHandlers(db).RegisterHandlers(router.Group("/"))

	router.GET("/metrics", middleware.MetricsHandler())

	// Start server
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	// Run our server in a goroutine so that it doesn't block.
	go func() {
		log.Printf("start server at %q", srv.Addr)
		if err := srv.ListenAndServe(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	c := make(chan os.Signal, 1)
	// We'll accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+/) will not be caught.
	signal.Notify(c, os.Interrupt)

	// Block until we receive our signal.
	<-c

	// Create a deadline to wait for.
	wait := time.Second * 15
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	// Doesn't block if no connections, but will otherwise wait
	// until the timeout deadline.
	srv.Shutdown(ctx)

	log.Info().Msg("shutting down")
	os.Exit(0)
}
