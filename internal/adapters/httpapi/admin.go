package httpapi

import (
	"errors"
	"net/http"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

// validateAdmin answers whether the presented key is the reserved admin key.
// It does not touch usage accounting.
func (h *Handler) validateAdmin(w http.ResponseWriter, r *http.Request) {
	if h.authService.IsReservedAdmin(apiKeyFromRequest(r)) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keyService.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	snap := h.telemetry.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"keys":          keys,
		"endpointHits":  snap.EndpointHits,
		"totalRequests": snap.TotalRequests,
		"uptime":        snap.UptimeMillis,
	})
}

func (h *Handler) listKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keyService.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "keys": keys})
}

func (h *Handler) adminLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "logs": h.telemetry.Logs()})
}

func (h *Handler) issueKey(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := h.keyService.Issue(r.Context(), q.Get("owner"), q.Get("role"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	h.telemetry.Record(r.Context(), domain.LogAdmin, "Nova chave: "+domain.MaskKey(key.Key), "Dono: "+key.Owner)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "key": key.Key, "owner": key.Owner})
}

func (h *Handler) toggleKey(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	key, err := h.keyService.Toggle(r.Context(), target)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	status := "INATIVO"
	if key.Active {
		status = "ATIVO"
	}
	h.telemetry.Record(r.Context(), domain.LogAdmin, "Status alterado: "+domain.MaskKey(target), "Novo status: "+status)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "key": target, "active": key.Active})
}

func (h *Handler) revokeKey(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	err := h.keyService.Revoke(r.Context(), target)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
		writeError(w, http.StatusBadRequest, "Invalid target")
		return
	}
	if err != nil {
		handleDomainError(w, err)
		return
	}

	h.telemetry.Record(r.Context(), domain.LogAdmin, "Chave removida: "+domain.MaskKey(target), "")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Key deleted"})
}
