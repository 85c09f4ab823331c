package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"github.com/gorilla/mux"

	"github.com/EvegeniyNekrasov/Nexo/internal/auth"
	"github.com/EvegeniyNekrasov/Nexo/internal/config"
	"github.com/EvegeniyNekrasov/Nexo/internal/db"
	"github.com/EvegeniyNekrasov/Nexo/internal/docstore"
	"github.com/EvegeniyNekrasov/Nexo/internal/document"
	"github.com/EvegeniyNekrasov/Nexo/internal/files"
	"github.com/EvegeniyNekrasov/Nexo/internal/live"
	mw "github.com/EvegeniyNekrasov/Nexo/internal/middleware"
	"github.com/EvegeniyNekrasov/Nexo/internal/persist"
	"github.com/EvegeniyNekrasov/Nexo/internal/render"
	"github.com/EvegeniyNekrasov/Nexo/internal/session"
	"github.com/EvegeniyNekrasov/Nexo/internal/typeid"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(cfg, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return
	}

	gg.SetLogger(slog.Default())

	style := render.DefaultStyle()
	if cfg.RenderStylePath != "" {
		style, err = render.LoadStyle(cfg.RenderStylePath)
		if err != nil {
			slog.Error("load render style", "error", err, "path", cfg.RenderStylePath)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		slog.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	docs := docstore.New(pool)
	if seeded, err := docs.Seed(ctx, document.PlaygroundID, document.NewSampleScene(typeid.NewShapeID)); err != nil {
		slog.Error("seed playground", "error", err)
		os.Exit(1)
	} else if seeded {
		slog.Info("seeded playground document")
	}

	localCache, err := persist.OpenLocalCache(cfg.LocalCachePath)
	if err != nil {
		slog.Error("open local cache", "error", err, "path", cfg.LocalCachePath)
		os.Exit(1)
	}
	defer localCache.Close()

	raster, err := render.NewRasterizer()
	if err != nil {
		slog.Error("create rasterizer", "error", err)
		os.Exit(1)
	}
	defer raster.Close()

	authService := auth.NewService(cfg.JWTSecret, auth.WithPublicDocuments(document.PlaygroundID))
	filesHandler := files.NewHandler(docs, raster, style)

	hub := live.NewHub(live.HubConfig{
		Session: session.Deps{
			Remote: docs,
			Local:  localCache,
			Autosave: persist.AutosaveConfig{
				Debounce: cfg.AutosaveDebounce,
				Retries:  cfg.AutosaveRetryCount(),
			},
			HistoryLimit:    cfg.HistoryLimit,
			ZoomSensitivity: cfg.ZoomSensitivity,
			Style:           &style,
			FlushOnClose:    true,
		},
		Style: style,
	})
	go hub.Run(ctx)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Document API, scoped per file
	fileRoutes := r.PathPrefix("/files/{fileId}").Subrouter()
	fileRoutes.Use(authService.DocumentMiddleware("fileId"))
	filesHandler.Routes(fileRoutes)

	// Live editor WebSocket endpoint
	r.HandleFunc("/ws/files/{fileId}", live.Handler(hub, live.HandlerOptions{
		OriginPatterns: cfg.OriginPatterns(),
		Authorize: func(r *http.Request, docID string) error {
			scope := auth.ScopeEdit
			if live.Role(r.URL.Query().Get("role")) == live.RoleViewer {
				scope = auth.ScopeView
			}
			_, err := authService.Authorize(r, docID, scope)
			return err
		},
	}))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Close live sessions before the database goes away.
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
