package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mssola/useragent"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

const adminValidatePath = "/api/admin/validate"

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, DELETE")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type, x-api-key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireWellFormedQuery rejects requests whose query string cannot be
// decoded, before any key is looked at.
func requireWellFormedQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := url.ParseQuery(r.URL.RawQuery); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"erro": "URL inválida", "criador": creator})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			detail := fmt.Sprint(rec)
			h.logger.ErrorContext(r.Context(), "panic serving request",
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"panic", detail,
				"stack", string(debug.Stack()),
			)
			h.telemetry.Record(r.Context(), domain.LogError, "Erro interno do servidor", detail)
			writeInternalError(w, detail)
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		if h.metrics != nil {
			h.metrics.ObserveRequest(route, r.Method, status, elapsed)
		}
		h.logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// requireAPIKey runs the auth guard for the public API.
func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := apiKeyFromRequest(r)
		principal, err := h.authService.Authenticate(r.Context(), key)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				handleDomainError(w, err)
				return
			}
			h.denied(r, key, "Acesso negado")
			writeError(w, http.StatusUnauthorized, "Invalid or missing API Key")
			return
		}

		h.telemetry.Record(r.Context(), domain.LogRequest, accessMessage(principal.Owner, r), accessDetails(key, r))
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// requireAdmin runs the auth guard and demands the admin role. Any failure,
// including an unknown key, is reported as 403. The validate endpoint does
// its own check without accounting.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSuffix(r.URL.Path, "/") == adminValidatePath {
			next.ServeHTTP(w, r)
			return
		}
		key := apiKeyFromRequest(r)
		principal, err := h.authService.Authenticate(r.Context(), key)
		if err != nil && !errors.Is(err, domain.ErrUnauthorized) {
			handleDomainError(w, err)
			return
		}
		if err != nil || !principal.IsAdmin {
			h.denied(r, key, "Acesso negado ao Admin")
			writeError(w, http.StatusForbidden, "Admin required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

func (h *Handler) denied(r *http.Request, key, prefix string) {
	reason := "invalid_key"
	if key == "" {
		reason = "missing_key"
	}
	if h.metrics != nil {
		h.metrics.IncAuthFailure(reason)
	}
	h.telemetry.Record(r.Context(), domain.LogAuth, prefix+": "+accessMessage("", r), accessDetails(key, r))
}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// apiKeyFromRequest reads the apikey query parameter, then x-api-key, then a
// bearer token.
func apiKeyFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.URL.Query().Get("apikey")); key != "" {
		return key
	}
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func accessMessage(owner string, r *http.Request) string {
	if owner == "" {
		owner = "DESCONHECIDO"
	}
	return fmt.Sprintf("Usuário: %s | Rota: %s", owner, r.URL.Path)
}

func accessDetails(key string, r *http.Request) string {
	return fmt.Sprintf("Key: %s | UA: %s", domain.MaskKey(key), userAgentSummary(r.UserAgent()))
}

// userAgentSummary renders "Browser major on OS", or the raw header when it
// does not parse.
func userAgentSummary(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown"
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		name, _ := ua.Browser()
		return truncate("bot "+name, 80)
	}

	browser, version := ua.Browser()
	if browser == "" {
		return truncate(raw, 80)
	}
	if major, _, _ := strings.Cut(version, "."); major != "" {
		browser += " " + major
	}
	if os := ua.OS(); os != "" {
		browser += " on " + os
	}
	return truncate(browser, 80)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
