package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"genui/internal/cache"
	"genui/internal/config"
	"genui/internal/gateway"
	"genui/internal/llmclient"
	"genui/internal/orchestrator"
	"genui/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	llm, err := llmclient.NewGeminiClient(ctx, cfg.Model)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	defer llm.Close()

	snapshots, err := cache.NewSnapshots(cfg.SnapshotCache)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot cache: %v", err)
	}

	reg := registry.New()
	engine := orchestrator.New(reg, llm, snapshots)
	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: withCORS(gateway.New(engine, reg).Routes()),
	}

	go func() {
		log.Printf("Starting genui server on %s (model %s, env %s)", cfg.Port, llm.Name(), cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
