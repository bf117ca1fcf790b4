// Package server - HTTP API for playing rounds from uploaded photos.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nvr-ai/janken/controller"
	"github.com/nvr-ai/janken/images"
	"github.com/nvr-ai/janken/janken"
	"github.com/nvr-ai/janken/profiler"
)

const (
	// MaxUploadBytes caps the size of an uploaded image.
	MaxUploadBytes = 10 << 20
	// MaxImagePixels caps the decoded canvas of an uploaded image.
	MaxImagePixels = 40_000_000
	// MaxSimulatedPlayers caps the players of a simulated round.
	MaxSimulatedPlayers = 1000
	// RequestIDHeader carries the ID of each request in responses and logs.
	RequestIDHeader = "X-Request-ID"
)

// Game plays rounds. *controller.Controller implements it.
type Game interface {
	Play(ctx context.Context, img image.Image) (*controller.Round, error)
	Simulate(n int) (*controller.Round, []janken.Hand, error)
}

// Server serves the round API.
type Server struct {
	game     Game
	router   *mux.Router
	profiler *profiler.Profiler
}

// SimulationResponse is the body of a simulated round.
type SimulationResponse struct {
	Round *controller.Round `json:"round"`
	Hands []janken.Hand     `json:"hands"`
}

// New creates a server and registers its routes.
//
// Arguments:
//   - game: The game every request is played against.
//
// Returns:
//   - *Server: The server.
func New(game Game) *Server {
	s := &Server{game: game, router: mux.NewRouter()}
	s.router.Use(requestID)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/rounds", s.handleRound).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/simulations", s.handleSimulation).Methods(http.MethodPost)
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	return s
}

// WithProfiler exposes the statistics of p under /metrics and records request timings in it.
func (s *Server) WithProfiler(p *profiler.Profiler) *Server {
	s.profiler = p
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:      s.router,
		Addr:         addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("🛑 Shutting down server on %s", addr)
		return srv.Shutdown(shutdownCtx)
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, s.profiler.Snapshot())
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	data, err := readImage(r)
	if err != nil {
		sendErrorResponse(w, "invalid_request", "failed to read image", err, http.StatusBadRequest)
		return
	}

	if _, err := images.CheckSize(data, MaxImagePixels); err != nil {
		if errors.Is(err, images.ErrTooLarge) {
			sendErrorResponse(w, "image_too_large", "image dimensions exceed the limit", err, http.StatusRequestEntityTooLarge)
			return
		}
		sendErrorResponse(w, "invalid_image", "failed to decode image", err, http.StatusBadRequest)
		return
	}

	img, err := images.DecodeBytes(data)
	if err != nil {
		sendErrorResponse(w, "invalid_image", "failed to decode image", err, http.StatusBadRequest)
		return
	}

	round, err := s.game.Play(r.Context(), img)
	if err != nil {
		perr := &ProcessingError{Message: "failed to play round", Cause: err}
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		log.Printf("❌ [%s] %v", w.Header().Get(RequestIDHeader), perr)
		sendErrorResponse(w, "processing_error", perr.Message, perr.Cause, status)
		return
	}

	elapsed := time.Since(start)
	s.profiler.RecordOperation("request", elapsed)
	s.profiler.Add("verdict_"+round.Verdict.String(), 1)
	log.Printf("🎮 [%s] %s in %v", w.Header().Get(RequestIDHeader), round, elapsed)
	sendJSON(w, http.StatusOK, round)
}

func (s *Server) handleSimulation(w http.ResponseWriter, r *http.Request) {
	players := 2
	if v := r.URL.Query().Get("players"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > MaxSimulatedPlayers {
			sendErrorResponse(w, "invalid_request", "players must be an integer in [0, 1000]", err, http.StatusBadRequest)
			return
		}
		players = n
	}

	round, hands, err := s.game.Simulate(players)
	if err != nil {
		sendErrorResponse(w, "processing_error", "failed to simulate round", err, http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, SimulationResponse{Round: round, Hands: hands})
}

// readImage extracts the image bytes from a multipart form field "image", a JSON body
// {"image": "<base64>"} or the raw body.
func readImage(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	case "application/json":
		var req struct {
			Image string `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(req.Image)
	default:
		return io.ReadAll(r.Body)
	}
}
