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

	"github.com/raushankrgupta/shopify-product-exporter/api"
	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/exporter"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
	log "github.com/sirupsen/logrus"
)

func main() {
	config.LoadConfig()

	// Export history is optional
	if config.MongoURI != "" {
		if err := utils.ConnectMongo(config.MongoURI); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if info, err := utils.EnsureInstallTimestamp(ctx, time.Now().UTC()); err != nil {
			log.WithError(err).Warn("Could not record install timestamp")
		} else {
			log.WithField("installed_at", info.InstalledAt).Info("Install timestamp loaded")
		}
		cancel()
	}

	if utils.S3Enabled() {
		if err := utils.InitS3(); err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
	}

	rules, err := config.LoadSelectorRules(config.SelectorRulesFile)
	if err != nil {
		log.WithError(err).Warn("Using default selector rules")
	}
	api.SetExporter(exporter.New(base.NewHTTPClient(), rules))

	// CORS Middleware
	corsMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Export-Id, X-Product-Count, X-Download-Url")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	http.HandleFunc("/export", corsMiddleware(api.AuthMiddleware(api.ExportHandler)))
	http.HandleFunc("/export/ws", api.AuthMiddleware(api.ExportWSHandler))
	http.HandleFunc("/detect", corsMiddleware(api.AuthMiddleware(api.DetectHandler)))
	http.HandleFunc("/exports", corsMiddleware(api.AuthMiddleware(api.ExportsHandler)))
	http.HandleFunc("/status", corsMiddleware(api.StatusHandler))

	port := config.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: utils.LatencyMiddleware(http.DefaultServeMux),
	}

	go func() {
		fmt.Printf("Server starting on port %s...\n", port)
		fmt.Printf("Usage: curl -OJ \"http://localhost:%s/export?url=<store_page_url>\"\n", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := utils.DisconnectMongo(ctx); err != nil {
		log.WithError(err).Warn("MongoDB disconnect failed")
	}
}
