package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appanalysis "github.com/bryanwahyu/aio-strategy/internal/application/analysis"
	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
	"github.com/bryanwahyu/aio-strategy/internal/middleware"
)

const maxBodyBytes = 1 << 20

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeUpstream      = "UPSTREAM_ERROR"
	CodeTimeout       = "TIMEOUT"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL"
)

type Options struct {
	Service        *appanalysis.Service
	Metrics        *middleware.Metrics
	Checkers       map[string]middleware.HealthChecker
	Ready          middleware.HealthChecker
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

type Router struct {
	svc *appanalysis.Service
	log logrus.FieldLogger
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := &Router{svc: opts.Service, log: log}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(log))
	mux.Use(metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:     origins,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type", "Authorization"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))
	mux.Use(preflight)

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/healthz/ready", middleware.ReadinessHandler(opts.Ready))
	mux.Get("/metrics", metrics.Handler)

	mux.Post("/analyze", r.wrap(r.handleAnalyze))
	mux.Get("/analysis/{id}", r.wrap(r.handleGet))
	mux.With(middleware.RequireCaller(r.svc, r.writeError)).
		Get("/history", r.wrap(r.handleHistory))

	return mux
}

// preflight answers every OPTIONS request with 200 once CORS headers are set.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, req)
	})
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			r.writeError(w, req, err)
		}
	}
}

func (r *Router) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status, code, msg := classify(err)
	if status >= 500 {
		r.log.WithError(err).WithFields(logrus.Fields{
			"path":       req.URL.Path,
			"code":       code,
			"request_id": chimw.GetReqID(req.Context()),
		}).Error("request failed")
	}
	writeJSON(w, status, envelope{Error: msg, Code: code})
}

// classify maps an error to status, stable code and client-facing message.
// Configuration details stay in the server log.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidation, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, CodeConfiguration, "the analysis service is not configured"
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, CodeTimeout, "the analysis timed out"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusInternalServerError, CodeUpstream, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, "analysis not found"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	body.Success = status < 300
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// POST /analyze
// Body: analysis input. Header: Authorization: Bearer <token>.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var in domain.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		return domain.Validation("request body must be a JSON object")
	}

	rec, err := r.svc.Submit(req.Context(), middleware.SanitizeInput(in), middleware.BearerToken(req))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, envelope{Data: map[string]any{
		"id":     rec.ID,
		"result": rec.Result,
	}})
	return nil
}

// GET /analysis/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return domain.ErrNotFound
	}
	rec, err := r.svc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, envelope{Data: rec})
	return nil
}

// GET /history?limit=10&offset=0
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))

	list, err := r.svc.History(req.Context(), middleware.CallerFromContext(req.Context()), limit, offset)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, envelope{Data: map[string]any{
		"analyses": list,
		"total":    len(list),
	}})
	return nil
}
