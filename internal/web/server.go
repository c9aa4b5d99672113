package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imbue-bit/no-JIT/internal/logger"
	"github.com/imbue-bit/no-JIT/internal/state"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer handles HTTP requests for guard status and metrics
type WebServer struct {
	router     *mux.Router
	port       string
	configName string
}

// NewWebServer creates a new web server instance
func NewWebServer(port, configName string) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:     mux.NewRouter(),
		port:       port,
		configName: configName,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// Prometheus metrics
	ws.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/tiers", ws.handleGetTiers).Methods("GET")
	api.HandleFunc("/parameters", ws.handleGetParameters).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status, including database reachability
// and the age of the last published fee table.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := state.TestDBConnection() == nil

	var publishInfo map[string]interface{}
	table, err := state.LoadPublishedFeeTable()
	if err == nil && table != nil {
		publishInfo = map[string]interface{}{
			"last_publish_time": table.UpdatedAt,
			"last_tx_hash":      table.TxHash,
			"tier_count":        len(table.Tiers),
		}
	} else {
		publishInfo = map[string]interface{}{
			"last_publish_time": nil,
			"last_tx_hash":      "",
			"tier_count":        0,
		}
	}

	status := "healthy"
	if !dbHealthy {
		status = "degraded"
	}

	response := map[string]interface{}{
		"status":      status,
		"timestamp":   time.Now(),
		"db_healthy":  dbHealthy,
		"publication": publishInfo,
		"runtime": map[string]interface{}{
			"goroutines":      runtime.NumGoroutine(),
			"heap_alloc_mb":   memStats.HeapAlloc / 1024 / 1024,
			"total_alloc_mb":  memStats.TotalAlloc / 1024 / 1024,
			"gc_cycles_total": memStats.NumGC,
		},
	}

	ws.writeJSON(w, http.StatusOK, response)
}

// handleGetTiers returns the current published fee tier table.
func (ws *WebServer) handleGetTiers(w http.ResponseWriter, r *http.Request) {
	table, err := state.LoadPublishedFeeTable()
	if err != nil {
		ws.writeError(w, http.StatusInternalServerError, "failed to load published fee table")
		return
	}
	if table == nil {
		ws.writeError(w, http.StatusNotFound, "no fee table has been published yet")
		return
	}
	ws.writeJSON(w, http.StatusOK, table)
}

// handleGetParameters returns the active market parameters.
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	params, err := state.LoadActiveMarketParameters(ws.configName)
	if err != nil {
		ws.writeError(w, http.StatusInternalServerError, "failed to load active market parameters")
		return
	}

	response := map[string]interface{}{
		"config_name":          ws.configName,
		"gas_usage_per_attack": params.GasUsagePerAttack,
		"kappa":                params.Kappa,
		"nominal_swap_volume":  params.NominalSwapVolume,
		"ratio_tiers_bps":      params.RatioTiersBps,
	}
	ws.writeJSON(w, http.StatusOK, response)
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (ws *WebServer) writeError(w http.ResponseWriter, status int, message string) {
	ws.writeJSON(w, status, map[string]string{"error": message})
}

// corsMiddleware adds CORS headers to all responses
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
