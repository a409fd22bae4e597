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

	"github.com/joho/godotenv"
	"github.com/larklabs/gastutor/internal/chat"
	"github.com/larklabs/gastutor/internal/config"
	"github.com/larklabs/gastutor/internal/db"
	"github.com/larklabs/gastutor/internal/httpapi"
	"github.com/larklabs/gastutor/internal/models"
	"github.com/larklabs/gastutor/internal/store/rabbitmq"
	"github.com/larklabs/gastutor/internal/store/redisstore"
	"github.com/larklabs/gastutor/internal/subscription"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	gdb := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err := gdb.AutoMigrate(
		&models.User{},
		&chat.Session{},
		&chat.Message{},
		&chat.Job{},
		&subscription.Entitlement{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rds.Ping(context.Background()); err != nil {
		log.Fatalf("redis ping: %v", err)
	}

	// async replies are optional; the sync endpoint works without a broker
	rabbit, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbit unavailable, async messages disabled: %v", err)
		rabbit = nil
	}

	r := httpapi.NewRouter(gdb, cfg, rds, rabbit)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server listening addr=%s provider=%s", cfg.Addr, cfg.AIProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if rabbit != nil {
		_ = rabbit.Close()
	}
}
