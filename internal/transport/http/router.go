package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"tryout-service/internal/metrics"
)

// RouterConfig carries the transport settings of the server.
type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
}

// NewRouter mounts the REST API under /api/v1, the live analytics feed,
// health and metrics endpoints. Auth applies only when a secret is set.
func NewRouter(cfg RouterConfig, tryouts *TryOutHandler, catalog *CatalogHandler, ws *WSHandler, gatherer prometheus.Gatherer, m *metrics.Metrics, log *zap.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(instrument(log, m))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	var feed http.Handler = http.HandlerFunc(ws.ServeWS)
	if cfg.JWTSecret != "" {
		auth := authenticate([]byte(cfg.JWTSecret))
		api.Use(auth)
		feed = auth(feed)
	}
	tryouts.register(api)
	catalog.register(api)
	r.Handle("/ws/analytics", feed).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})

	if len(cfg.AllowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)
}
