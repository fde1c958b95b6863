package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tourdispatch/internal/api"
	"tourdispatch/internal/buildinfo"
	"tourdispatch/internal/metrics"
)

func main() {
	_ = godotenv.Load()
	metrics.RegisterDefault()

	srvDeps, err := api.NewServer()
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	mux := http.NewServeMux()

	// Optimization
	mux.HandleFunc("/v1/dispatch/optimize", srvDeps.OptimizeHandler)
	mux.HandleFunc("/v1/dispatch/proposals", srvDeps.ProposalsHandler)
	mux.HandleFunc("/v1/dispatch/proposals/", srvDeps.ProposalByIDHandler)

	// Planning inputs
	mux.HandleFunc("/v1/travel-matrix", srvDeps.TravelMatrixHandler)
	mux.HandleFunc("/v1/dispatch-days", srvDeps.DispatchDaysHandler)

	// Events
	mux.HandleFunc("/v1/dispatch/events/ws", srvDeps.EventsWSHandler)

	// Health
	mux.HandleFunc("/healthz", srvDeps.HealthHandler)
	mux.HandleFunc("/readyz", srvDeps.ReadyHandler)

	// Observability and docs
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/openapi.yaml", srvDeps.OpenAPIHandler)
	mux.HandleFunc("/docs.json", srvDeps.DocsJSONHandler)
	mux.HandleFunc("/docs", srvDeps.DocsHandler)

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	handler := logMiddleware(api.MetricsMiddleware(api.RateLimitMiddleware(mux)))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("tourdispatch API %s listening on %s", buildinfo.Version, addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}
