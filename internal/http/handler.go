package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"redis-auth-proxy/internal/database"
	"redis-auth-proxy/internal/metrics"
)

// Options carries the proxy settings the admin plane needs: the bootstrap
// token secret, the upstream credentials for readiness probes and the
// shared-volume format parameters.
type Options struct {
	TokenSecret      string
	UpstreamAddr     string
	UpstreamUsername string
	UpstreamPassword string
	MetaURI          string
	AccessKey        string
	SecretKey        string
	BucketURL        string
	Volume           string
	Binary           string
}

type Handler struct {
	repo    *database.Repository
	metrics *metrics.Collector
	options Options
	logger  *slog.Logger
}

func NewHandler(repo *database.Repository, collector *metrics.Collector, options Options) *Handler {
	return &Handler{
		repo:    repo,
		metrics: collector,
		options: options,
		logger:  slog.Default().WithGroup("http"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" && r.URL.Path == "/up" {
		h.getLiveness(w, r)
		return
	}

	if r.Method == "GET" && r.URL.Path == "/ready" {
		h.getReadiness(w, r)
		return
	}

	if r.Method == "GET" && r.URL.Path == "/metrics" {
		h.metrics.Handler().ServeHTTP(w, r)
		return
	}

	if r.Method == "POST" && r.URL.Path == "/bootstrap" {
		h.runBootstrap(w, r)
		return
	}

	if r.Method == "GET" && r.URL.Path == "/bootstrap" {
		h.listBootstrapJobs(w, r)
		return
	}

	http.NotFound(w, r)
}

func (h *Handler) getLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getReadiness pings the upstream with the proxy's own credentials, so it
// reports the same path a relayed session would take.
func (h *Handler) getReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     h.options.UpstreamAddr,
		Username: h.options.UpstreamUsername,
		Password: h.options.UpstreamPassword,
	})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		h.logger.Warn("Upstream is not reachable", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Error when encoding response", "error", err)
	}
}
