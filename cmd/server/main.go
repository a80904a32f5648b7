package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deliverus/backend/internal/config"
	"github.com/deliverus/backend/internal/handlers"
	"github.com/deliverus/backend/internal/logging"
	"github.com/deliverus/backend/internal/mykafka"
	ordersvc "github.com/deliverus/backend/internal/service/order"
	httpserver "github.com/deliverus/backend/internal/transport/http"
	loggingmw "github.com/deliverus/backend/pkg/middleware/logging"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, order events disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB: db,
		OrderHandler: &handlers.OrderHandler{
			Svc:      ordersvc.New(db),
			Producer: prod,
		},
		JWTSecret: []byte(configuration.JWT_SECRET),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	logger.Info("shutdown complete")
}
