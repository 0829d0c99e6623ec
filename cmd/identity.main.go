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

	"identity-service/internal/config"
	"identity-service/internal/server"
)

func main() {
	cfg := config.Load()

	srv, err := server.New(context.Background(), &cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	go func() {
		log.Printf("Identity service listening on %s", cfg.HTTPAddr)
		if err := srv.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.HTTP.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	srv.Close()
}
