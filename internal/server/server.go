// Package server assembles the HTTP router, its middleware stack and the listener.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/CropCycle_Go/internal/checklist"
	"github.com/osse101/CropCycle_Go/internal/cropcycle"
	"github.com/osse101/CropCycle_Go/internal/database"
	"github.com/osse101/CropCycle_Go/internal/handler"
	"github.com/osse101/CropCycle_Go/internal/logger"
	"github.com/osse101/CropCycle_Go/internal/metrics"
	"github.com/osse101/CropCycle_Go/internal/recommendation"
)

// Config holds listener and middleware settings
type Config struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	MaxBodyBytes   int64
	Detector       DetectorConfig
}

// Services are the collaborators the routes are served from.
// DB is nil for the in-memory store; readiness then always succeeds.
type Services struct {
	DB              database.Pool
	Cycles          cropcycle.Service
	Recommendations recommendation.Service
	Checklists      checklist.Planner
}

// Server is the HTTP front of the service
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(cfg Config, svcs Services) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(cfg, svcs),
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
		},
	}
}

// NewRouter builds the routed handler with the full middleware stack
func NewRouter(cfg Config, svcs Services) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetectorWithConfig(cfg.Detector)

	r.Use(loggingMiddleware)
	r.Use(SecurityHeadersMiddleware())
	r.Use(RateLimitMiddleware(cfg.TrustedProxies, detector))
	r.Use(AuthMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
	r.Use(metrics.Middleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(svcs.DB))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	cycles := handler.NewCropCycleHandler(svcs.Cycles)
	checklists := handler.NewChecklistHandler(svcs.Checklists)
	recs := handler.NewRecommendationHandler(svcs.Recommendations)

	r.Route("/crop-cycles", func(r chi.Router) {
		r.Get("/", cycles.HandleListCycles)
		r.Post("/", cycles.HandleCreateCycle)
		r.Post("/checklist", checklists.HandleGenerateChecklist)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", cycles.HandleGetCycle)
			r.Put("/", cycles.HandleUpdateCycle)
			r.Delete("/", cycles.HandleDeleteCycle)

			r.Post("/activate", cycles.HandleActivateCycle)
			r.Post("/complete", cycles.HandleCompleteCycle)
			r.Post("/fail", cycles.HandleFailCycle)

			r.Get("/tasks", cycles.HandleListTasks)
			r.Post("/tasks", cycles.HandleAddTask)
			r.Put("/tasks/{taskId}/status", cycles.HandleUpdateTaskStatus)

			r.Get("/observations", cycles.HandleListObservations)
			r.Post("/observations", cycles.HandleAddObservation)

			r.Get("/stages", cycles.HandleListStages)
			r.Put("/stages/{stageId}", cycles.HandleUpdateStage)

			r.Get("/risks", cycles.HandleListRisks)
			r.Put("/risks/{riskId}/acknowledge", cycles.HandleAcknowledgeRisk)
			r.Put("/risks/{riskId}/resolve", cycles.HandleResolveRisk)
		})
	})

	r.Route("/recommendations", func(r chi.Router) {
		r.Post("/", recs.HandleGenerate)
		r.Get("/{client_id}", recs.HandleGetCached)
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// loggingMiddleware tags the context with a request id (echoed in X-Request-ID) and logs
// start and completion of every request except probes
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, requestID)

		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())
		log.Debug(LogMsgRequestHeaders, "headers", redactHeaders(r.Header))

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

func isQuietPath(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func redactHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for k, v := range in {
		if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
			out[k] = []string{RedactedValue}
		} else {
			out[k] = v
		}
	}
	return out
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	slog.Default().Info(LogMsgServerStopping)
	return s.httpServer.Shutdown(ctx)
}
