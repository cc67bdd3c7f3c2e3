// Command mockfeed serves sample conditions payloads in each supported feed
// format so the widget can be run locally without reaching the real feeds.
//
// Usage:
//
//	go run ./cmd/mockfeed -addr :8081
//	WX_CONDITIONS_URL=http://localhost:8081/xml go run ./cmd/widget
//
// Routes: /legacy, /xml and /json serve the payloads; /unparsable serves a
// feed with a non-numeric temperature; /unavailable always answers 503.
package main

import (
	"embed"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

//go:embed data
var payloads embed.FS

type route struct {
	path        string
	file        string
	contentType string
}

var routes = []route{
	{path: "/legacy", file: "data/legacy.txt", contentType: "text/plain; charset=utf-8"},
	{path: "/xml", file: "data/conditions.xml", contentType: "application/xml"},
	{path: "/json", file: "data/owm.json", contentType: "application/json"},
}

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen}))

	mux, err := newMux(logger)
	if err != nil {
		logger.Error("load payloads", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("mock feed listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("mock feed stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger) (*http.ServeMux, error) {
	mux := http.NewServeMux()
	for _, r := range routes {
		body, err := payloads.ReadFile(r.file)
		if err != nil {
			return nil, err
		}
		mux.HandleFunc("GET "+r.path, servePayload(body, r.contentType, logger))
	}

	mux.HandleFunc("GET /unparsable", servePayload(
		[]byte("<current_observation>\n\t<weather>Fair</weather>\n\t<temp_f>NA</temp_f>\n</current_observation>\n"),
		"application/xml", logger))
	mux.HandleFunc("GET /unavailable", func(w http.ResponseWriter, r *http.Request) {
		logger.Info("serving outage", "path", r.URL.Path)
		http.Error(w, "feed temporarily unavailable", http.StatusServiceUnavailable)
	})
	return mux, nil
}

func servePayload(body []byte, contentType string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Info("serving payload", "path", r.URL.Path, "bytes", len(body))
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}
}
