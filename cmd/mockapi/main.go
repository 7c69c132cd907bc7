package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"olp/compat/internal/server"
	"olp/compat/internal/source"
	"olp/compat/pkg/config"
)

var configPath = flag.String("config", "", "配置文件路径（可选，缺省用内置配置）")

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	fixtures, err := source.NewFixtureProvider()
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.Server.MockListenAddr,
		Handler: server.SetupMockRoutes(fixtures),
	}

	go func() {
		log.Printf("Mock upstream listening on %s, %d cases", cfg.Server.MockListenAddr, len(fixtures.Cases()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down mock server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
