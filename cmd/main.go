package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/api/channels/whatsapp"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/config"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/leads"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/llm"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/routes"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/wagraph"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("Warning: Error loading .env file", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	cleanup := utils.InitLogger(cfg)
	defer cleanup()

	utils.Zlog.Info("Starting application",
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	store, err := leads.Open(context.Background(), cfg.LeadsDSN)
	if err != nil {
		utils.Zlog.Error("Failed to open lead store", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			utils.Zlog.Error("Error closing lead store", zap.Error(err))
		}
	}()

	responder := llm.NewResponderFromConfig(context.Background(), cfg)
	sender := wagraph.NewClient(cfg.PhoneNumberID, cfg.WhatsAppToken)
	waService := whatsapp.NewService(store, responder, sender, cfg.TrackingEnabled)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	dispatcher := routes.SetupRoutes(router, cfg, store, waService, sender)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.Zlog.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Zlog.Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Zlog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Zlog.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	// Let in-flight webhook work finish before the store closes.
	dispatcher.Close()

	utils.Zlog.Info("Server exited")
}
