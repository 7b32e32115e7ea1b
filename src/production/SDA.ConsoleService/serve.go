package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/controllers"
	"gitlab.com/sdamanager/sda.web_console/src/production/SDA.ConsoleService/middleware"
	container "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Container"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
)

var servecmd = &cobra.Command{
	Use:   "serve",
	Short: "starts the console HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	// Initialize dependency injection container
	ctr, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	config := ctr.GetConfig()
	logger.Info("Starting SDA Console")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ctr.InitializeStore(ctx); err != nil {
		logger.FatalWithError(err, "Failed to initialize store")
	}
	store, err := ctr.GetStore()
	if err != nil {
		logger.FatalWithError(err, "Failed to get store")
	}

	console := controllers.NewConsole(ctr.GetManagerFactory(), store, ctr.GetPublisher(), logger.WithComponent("console"))
	sessions := session.NewStore(config.Session.TTL,
		session.WithDefaultAddress(config.Manager.Address),
		session.WithInit(console.InitSession),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger.WithComponent("http")))

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	sessionMiddleware := middleware.NewSessionMiddleware(sessions, middleware.Config{
		CookieName: config.Session.CookieName,
		MaxAge:     int(config.Session.TTL.Seconds()),
	})
	controllers.RegisterRoutes(router, console, sessionMiddleware, logger)
	controllers.NewHealthController(ctr, ctr.GetManagerFactory(), config.Manager.Address, logger).RegisterRoutes(router)

	port := config.Server.Port

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepSessions(sweepCtx, sessions, config.Session.TTL, logger)

	logger.Info("SDA Console running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
	return nil
}
