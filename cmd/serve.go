package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionqc/inspect-cli/internal/store"
)

var servePort int

// serveCmd exposes the store's two read entry points over HTTP for the
// dashboard. It is strictly read-only; writes go through classify/scan.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only results query API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/results", func(w http.ResponseWriter, req *http.Request) {
			limit := queryInt(req, "limit")
			recs, err := st.Fetch(req.Context(), limit)
			if err != nil {
				serveError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, recs)
		})

		r.Get("/api/results/search", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			f := store.Filter{
				Label:    q.Get("label"),
				Tier:     q.Get("severity"),
				Action:   q.Get("action"),
				Zone:     q.Get("location"),
				Keyword:  q.Get("q"),
				DateFrom: q.Get("from"),
				DateTo:   q.Get("to"),
			}
			recs, err := st.Search(req.Context(), f, queryInt(req, "limit"))
			if err != nil {
				serveError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, recs)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("query server listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func queryInt(req *http.Request, key string) int {
	var n int
	fmt.Sscanf(req.URL.Query().Get(key), "%d", &n)
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func serveError(w http.ResponseWriter, err error) {
	zap.L().Error("query failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
}
