package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/swingscan/swingscan/internal/metrics"
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve health and Prometheus metrics over HTTP",
		RunE:  runMonitor,
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	return cmd
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	setupLogLevel(cmd)
	addr, _ := cmd.Flags().GetString("addr")

	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"app":     appName,
			"version": version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("monitor listening")
	return srv.ListenAndServe()
}
