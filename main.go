package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookmybus/internal/auth"
	intconfig "bookmybus/internal/config"
	"bookmybus/internal/db"
	router "bookmybus/internal/http"
	"bookmybus/internal/http/handlers"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	envFile := flag.String("env-file", "", "env file to load instead of ./.env")
	addr := flag.String("addr", "", "listen address, overrides APP_ADDR")
	flag.Parse()

	base, err := intconfig.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	env := intconfig.LoadEnvFrom(base, *envFile)
	if *addr != "" {
		env.AppAddr = *addr
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	conn, err := intconfig.ConnectDB(env)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer intconfig.CloseDB()

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureSchema(schemaCtx, conn); err != nil {
		schemaCancel()
		log.Fatalf("schema: %v", err)
	}
	schemaCancel()

	r := router.NewRouter(env, handlers.Handler{
		Tokens:   auth.TokenService{Secret: []byte(env.JWTSecret), TTL: env.JWTTTL},
		AdminKey: env.AdminKey,
		Ping:     intconfig.PingDB,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}

	log.Println("Server stopped.")
}
