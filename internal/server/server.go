// Package server exposes the Piper voice over HTTP. It is a thin
// wrapper: request parsing, post-processing, and health reporting; the
// synthesis itself is delegated to the engine behind the Synthesizer.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/nandakiran-r/TestPiper/internal/audio"
)

// Synthesizer renders text to WAV bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Server handles the HTTP surface around a loaded voice. A nil voice is
// valid: the server starts and reports unavailable until restarted with
// a model in place, mirroring the container health check contract.
type Server struct {
	voice   Synthesizer
	metrics *metrics
}

func New(voice Synthesizer) *Server {
	return &Server{
		voice:   voice,
		metrics: newMetrics(),
	}
}

// Router builds the route table. CORS is open to all origins; the
// wrapper sits behind whatever ingress the operator chooses.
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Recoverer)

	router.Get("/", s.home)
	router.Get("/tts", s.tts)
	router.Get("/health", s.health)
	router.Handle("/metrics", s.metrics.handler())

	return router
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "running",
		"usage":  "/tts?text=YourTextHere",
	})
}

// health is polled by the container runtime every 30 seconds.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.voice == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) tts(w http.ResponseWriter, r *http.Request) {
	if s.voice == nil {
		s.fail(w, r, http.StatusServiceUnavailable, "TTS model is not loaded. Check server logs.")
		return
	}

	text := r.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		s.fail(w, r, http.StatusBadRequest, "Text cannot be empty")
		return
	}

	params, err := paramsFromQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if params.Bass != 0 || params.Treble != 0 {
		log.WithField("request_id", middleware.GetReqID(r.Context())).
			Warn("bass/treble equalization is not applied by this wrapper")
	}

	start := time.Now()
	wav, err := s.voice.Synthesize(r.Context(), text)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.synthesis.Observe(time.Since(start).Seconds())

	processed, err := audio.Process(wav, params)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.requests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(processed)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, code int, detail string) {
	log.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"code":       code,
	}).Error(detail)

	s.metrics.requests.WithLabelValues(strconv.Itoa(code)).Inc()
	respondJSON(w, code, map[string]string{"detail": detail})
}

func paramsFromQuery(r *http.Request) (audio.Params, error) {
	params := audio.DefaultParams()
	q := r.URL.Query()

	var err error
	if params.Pitch, err = floatParam("pitch", q.Get("pitch"), params.Pitch); err != nil {
		return params, err
	}
	if params.Bass, err = floatParam("bass", q.Get("bass"), params.Bass); err != nil {
		return params, err
	}
	if params.Treble, err = floatParam("treble", q.Get("treble"), params.Treble); err != nil {
		return params, err
	}
	if params.Gain, err = floatParam("gain", q.Get("gain"), params.Gain); err != nil {
		return params, err
	}

	if raw := q.Get("speed"); raw != "" {
		speed, err := strconv.Atoi(raw)
		if err != nil || speed <= 0 {
			return params, &paramError{"speed", raw}
		}
		params.Speed = speed
	}

	if raw := q.Get("normalize"); raw != "" {
		normalize, err := strconv.ParseBool(raw)
		if err != nil {
			return params, &paramError{"normalize", raw}
		}
		params.Normalize = normalize
	}

	return params, nil
}

func floatParam(name, raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, &paramError{name, raw}
	}
	return v, nil
}

type paramError struct {
	name string
	raw  string
}

func (e *paramError) Error() string {
	return "invalid " + e.name + " parameter: " + e.raw
}

func respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
