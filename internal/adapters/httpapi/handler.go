package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
	"github.com/atvirokodosprendimai/mutanox/internal/core/usecase"
)

type ctxKey string

const (
	principalCtxKey ctxKey = "principal"

	creator = "@MutanoX"
)

// Metrics is the slice of the Prometheus collectors the transport feeds.
type Metrics interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
	IncAuthFailure(reason string)
	IncQuery(kind domain.QueryKind, success bool)
	Handler() http.Handler
}

type Handler struct {
	authService  *usecase.AuthService
	keyService   *usecase.KeyService
	queryService *usecase.QueryService
	telemetry    *usecase.Telemetry
	metrics      Metrics
	logger       *slog.Logger
}

// NewHandler wires the services into the HTTP surface. metrics may be nil,
// in which case /metrics is not served.
func NewHandler(authService *usecase.AuthService, keyService *usecase.KeyService, queryService *usecase.QueryService, telemetry *usecase.Telemetry, metrics Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		authService:  authService,
		keyService:   keyService,
		queryService: queryService,
		telemetry:    telemetry,
		metrics:      metrics,
		logger:       logger,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.observe)
	r.Use(h.recoverer)
	r.Use(cors)
	r.Use(requireWellFormedQuery)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", h.index)
	r.Get("/healthz", h.healthz)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAPIKey)
		pr.Get("/api/consultas", h.query)
		pr.Get("/api/dashboard/metricas", h.dashboardMetrics)
		pr.Get("/api/dashboard/logs", h.dashboardLogs)
	})

	// The guard sits on the sub-router so unknown paths and wrong methods
	// under /api/admin are authenticated before 404/405.
	r.Route("/api/admin", func(ar chi.Router) {
		ar.Use(h.requireAdmin)
		ar.Get("/validate", h.validateAdmin)
		ar.Get("/stats", h.adminStats)
		ar.Get("/keys", h.listKeys)
		ar.Post("/keys", h.issueKey)
		ar.Delete("/keys", h.revokeKey)
		ar.Post("/toggle", h.toggleKey)
		ar.Get("/logs", h.adminLogs)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("encode json response", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		slog.Debug("write response", "err", err)
	}
}

// writeError uses the auth/admin envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// writeQueryError uses the query envelope.
func writeQueryError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"sucesso": false, "erro": message, "criador": creator})
}

func writeInternalError(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"sucesso":  false,
		"erro":     "Erro interno do servidor",
		"detalhes": detail,
		"criador":  creator,
	})
}

func handleDomainError(w http.ResponseWriter, err error) {
	var inputErr *domain.InputError
	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Message)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid or missing API Key")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Admin required")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Key not found")
	default:
		writeInternalError(w, err.Error())
	}
}

func principalFromContext(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalCtxKey).(domain.Principal)
	return p
}
