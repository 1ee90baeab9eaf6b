package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hackmaster/internal/handler"
	"hackmaster/internal/hub"
	"hackmaster/internal/repository/sqlite"
	"hackmaster/internal/service"
	"hackmaster/internal/wordlist"
)

//go:embed web/*
var webFS embed.FS

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	eventBus := service.NewEventBus()
	events := make(chan service.Event, 100)
	eventBus.Subscribe(events)

	svc, err := service.NewWordlistService(repo, wordlist.New(cfg.GeneratorOptions()), eventBus, service.WordlistOptions{
		Dir:         cfg.Wordlists.Dir,
		SampleLines: cfg.Wordlists.SampleLines,
	}, logger)
	if err != nil {
		return err
	}

	wordlistHandler := handler.NewWordlistHandler(svc, logger)
	wordlistHandler.SetMaxBodyBytes(cfg.Wordlists.MaxBodyBytes)

	sseHub := hub.New(logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(wordlistHandler, sseHub, svc.Dir()),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sseHub.Run(gctx)
		return nil
	})

	// Connect event bus to SSE hub
	g.Go(func() error {
		for {
			select {
			case ev := <-events:
				sseHub.Broadcast(ev)
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newRouter wires every route behind the middleware chain
func newRouter(h *handler.WordlistHandler, sseHub http.Handler, wordlistDir string) http.Handler {
	mux := http.NewServeMux()

	h.Register(mux)

	mux.HandleFunc("GET /WiFi/wordlist-generator", servePage("web/wordlist-generator.html"))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/WiFi/wordlist-generator", http.StatusFound)
	})

	mux.Handle("GET /static/wordlists/", http.StripPrefix("/static/wordlists/", noListing(http.FileServer(http.Dir(wordlistDir)))))

	mux.Handle("GET /events", sseHub)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return handler.Chain(mux,
		handler.Recover(logger),
		handler.CORS,
		handler.Logger(logger),
	)
}

func servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := webFS.ReadFile(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}
}

// noListing hides directory indexes
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
