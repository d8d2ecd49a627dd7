package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"watego/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, journeyH *JourneyHandler, solarH *SolarHandler, seqH *SequenceHandler, streamH *StreamHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 1b. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Journey Endpoints
	mux.HandleFunc("GET /api/journey", journeyH.HandleState)
	mux.HandleFunc("GET /api/markers", journeyH.HandleMarkers)
	mux.HandleFunc("POST /api/journey/drag", journeyH.HandleDrag)
	mux.HandleFunc("POST /api/journey/scroll", journeyH.HandleScroll)
	mux.HandleFunc("POST /api/journey/mode", journeyH.HandleMode)
	mux.HandleFunc("POST /api/journey/cruise/cycle", journeyH.HandleCycleCruise)
	mux.HandleFunc("POST /api/journey/throttle/cycle", journeyH.HandleCycleThrottle)
	mux.HandleFunc("POST /api/journey/start", journeyH.HandleStart)
	mux.HandleFunc("POST /api/journey/pause", journeyH.HandlePause)
	mux.HandleFunc("POST /api/journey/resume", journeyH.HandleResume)
	mux.HandleFunc("POST /api/restart", journeyH.HandleRestart)

	// 3. Solar Endpoint
	mux.HandleFunc("GET /api/solar", solarH.Handle)

	// 4. Sequence Endpoints
	mux.HandleFunc("GET /api/sequence", seqH.HandleCurrent)
	mux.HandleFunc("POST /api/sequence/skip", seqH.HandleSkip)

	// 5. Streaming Endpoint
	if streamH != nil {
		mux.HandleFunc("GET /api/stream", streamH.Handle)
	}

	// 6. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
