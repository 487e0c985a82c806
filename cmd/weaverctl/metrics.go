package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serveMetrics starts an HTTP server exposing reg in Prometheus exposition
// format at addr, grounded in 88lin-divinesense's PrometheusExporter
// handler wiring. It runs until ctx is cancelled; shutdown errors are
// swallowed since they race the caller tearing down anyway.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log interface{ Printf(string, ...any) }) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("weaverctl: metrics server: %v", err)
		}
	}()
}
