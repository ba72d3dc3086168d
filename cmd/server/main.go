package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"luminapos/backend/internal/cache"
	"luminapos/backend/internal/config"
	"luminapos/backend/internal/httpapi"
	"luminapos/backend/internal/service"
	"luminapos/backend/internal/session"
	"luminapos/backend/internal/store/cloud"
	"luminapos/backend/internal/store/local"
	"luminapos/backend/internal/store/router"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	var cloudStore *cloud.Store
	if cfg.DatabaseURL != "" {
		pg, err := cloud.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start in local-only mode", err)
		}
		cloudStore = pg
		closers = append(closers, pg.Close)
		log.Println("persistence: local + cloud postgres")
	} else {
		log.Println("persistence: local only")
	}

	templateCache := cache.TemplateCache(cache.NewMemoryTemplateCache())
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisTemplateCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using memory cache", err)
		} else {
			templateCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("template cache: redis")
		}
	} else {
		log.Println("template cache: memory")
	}

	var resolver session.StoreIDResolver
	var credentials httpapi.CredentialStore
	if cloudStore != nil {
		resolver = cloudStore
		credentials = cloudStore
	}

	localStore := local.New()
	sessions := session.NewManager(resolver, localStore)
	sessions.Restore(ctx)

	dataRouter := router.New(localStore, cloudStore, templateCache, sessions, time.Duration(cfg.TemplateTTLSeconds)*time.Second)

	if cfg.DemoResetOnStart {
		if err := dataRouter.ResetDemoData(ctx); err != nil {
			log.Printf("demo reset failed: %v", err)
		}
	}

	svc := service.New(dataRouter)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, credentials)
	api := httpapi.New(svc, auth, sessions, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("POS backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}
