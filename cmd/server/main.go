package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/serve-folder/backend/internal/api"
	"github.com/serve-folder/backend/internal/config"
	"github.com/serve-folder/backend/internal/operation"
	"github.com/serve-folder/backend/internal/web"
	"github.com/serve-folder/backend/internal/zipstream"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	flagPort   int
	flagConfig string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "serve-folder <directory>",
		Short: "Share a local directory over HTTP with streamed ZIP folder downloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "listen port (overrides config)")
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to XML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(dir string) error {
	rootAbs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving directory: %w", err)
	}
	info, err := os.Stat(rootAbs)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", rootAbs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", rootAbs)
	}

	// Config lives beside the executable unless overridden.
	configPath := flagConfig
	if configPath == "" {
		configPath = "serve-folder.config.xml"
		if exePath, err := os.Executable(); err == nil {
			configPath = filepath.Join(filepath.Dir(exePath), "serve-folder.config.xml")
		}
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if flagPort > 0 {
		cfg.Server.Port = flagPort
	}

	registry := operation.NewRegistry()
	encoder := zipstream.NewEncoder(cfg.ChunkSize(), cfg.Zip.CompressionLevel)

	// Background sweep of expired operation records.
	cleanupDone := make(chan struct{})
	defer close(cleanupDone)
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Zip.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				registry.Cleanup(time.Duration(cfg.Zip.OperationTTLMinutes) * time.Minute)
			case <-cleanupDone:
				return
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/progress") || path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// ZIP bodies are already deflated and SSE must not be buffered.
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.Contains(path, "/download/") ||
				strings.Contains(path, "/progress/stream") ||
				strings.HasPrefix(path, "/files/")
		},
	}))

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORS())
	}

	var stopOnce sync.Once
	stopCh := make(chan struct{})
	shutdown := func() {
		stopOnce.Do(func() { close(stopCh) })
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Root:     rootAbs,
		Registry: registry,
		Encoder:  encoder,
		Shutdown: shutdown,
		Version:  Version,
	})
	api.RegisterRoutes(e, handlers)

	// Direct single-file serving of the shared tree.
	e.Static("/files", rootAbs)

	if err := web.RegisterStaticRoutes(e); err != nil {
		fmt.Printf("Warning: failed to register web UI routes: %v\n", err)
	}

	// WriteTimeout stays zero: folder downloads are long-lived by design.
	s := &http.Server{
		Addr:        cfg.GetServerAddr(),
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		IdleTimeout: time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-stopCh:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			e.Close()
		}
	}()

	fmt.Printf("serve-folder %s (built %s)\n", Version, BuildTime)
	fmt.Printf("Sharing:   %s\n", rootAbs)
	fmt.Printf("Config:    %s\n", configPath)
	fmt.Printf("Listening: http://%s\n", cfg.GetServerAddr())
	fmt.Printf("Open http://localhost:%d in your browser. Press Ctrl+C to stop.\n", cfg.Server.Port)

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		return err
	}
	fmt.Println("Server shutting down")
	return nil
}
