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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/config"
	"github.com/jaykurgat/Nyumba-Finder/consumers"
	"github.com/jaykurgat/Nyumba-Finder/controllers"
	"github.com/jaykurgat/Nyumba-Finder/middleware"
	"github.com/jaykurgat/Nyumba-Finder/publishers"
	"github.com/jaykurgat/Nyumba-Finder/repositories"
	"github.com/jaykurgat/Nyumba-Finder/services"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("Starting Nyumba Finder API", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st := openStore(ctx, cfg, logger)
	cacheRepo := repositories.NewCacheRepository(cfg.MemcachedHost, cfg.CacheTTL, logger)

	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		st.close(ctx, logger)
		return err
	}

	propertyService := services.NewPropertyService(
		st.properties, st.images, cacheRepo, publisher, logger, cfg.ImageDeleteConcurrency)

	consumer, err := openConsumer(cfg, propertyService, logger)
	if err != nil {
		_ = publisher.Close()
		st.close(ctx, logger)
		return err
	}

	propertyController := controllers.NewPropertyController(
		propertyService, services.NewGeocodingService(logger), logger)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS())
	propertyController.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("HTTP server failed", zap.Error(err))
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", zap.Error(err))
	} else {
		logger.Info("HTTP server shut down")
	}

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Warn("Error closing RabbitMQ consumer", zap.Error(err))
		}
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("Error closing RabbitMQ publisher", zap.Error(err))
	}
	st.close(shutdownCtx, logger)

	logger.Info("Shutdown complete")
	return runErr
}

// openPublisher starts the event publisher. Without a broker, events are
// dropped. With a shared cache level a broker is mandatory, because other
// instances only learn about writes through these events.
func openPublisher(cfg *config.Config, logger *zap.Logger) (publishers.EventPublisher, error) {
	if cfg.RabbitMQURL == "" {
		logger.Warn("RABBITMQ_URL is not set, property events are disabled")
		return publishers.NoopPublisher{}, nil
	}

	p, err := publishers.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsExchange, logger)
	if err != nil {
		if cfg.MemcachedHost != "" {
			return nil, fmt.Errorf("RabbitMQ publisher is required with Memcached: %w", err)
		}
		logger.Error("Failed to create RabbitMQ publisher", zap.Error(err))
		return publishers.NoopPublisher{}, nil
	}
	return p, nil
}

// openConsumer starts the consumer that invalidates this instance's cache on
// property events. It returns nil when no broker is configured.
func openConsumer(cfg *config.Config, properties consumers.PropertyInvalidator, logger *zap.Logger) (*consumers.RabbitMQConsumer, error) {
	if cfg.RabbitMQURL == "" {
		return nil, nil
	}

	consumer, err := consumers.NewRabbitMQConsumer(cfg.RabbitMQURL, cfg.EventsExchange, properties, logger)
	if err == nil {
		if err = consumer.Start(); err != nil {
			_ = consumer.Close()
		}
	}
	if err != nil {
		if cfg.MemcachedHost != "" {
			return nil, fmt.Errorf("RabbitMQ consumer is required with Memcached: %w", err)
		}
		logger.Error("Failed to start RabbitMQ consumer", zap.Error(err))
		return nil, nil
	}
	return consumer, nil
}
