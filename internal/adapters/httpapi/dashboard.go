package httpapi

import (
	"net/http"
)

func (h *Handler) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "dados": h.telemetry.Snapshot()})
}

func (h *Handler) dashboardLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"dados":   map[string]any{"logs": h.telemetry.Logs()},
	})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type routeInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"descricao"`
}

var routeIndex = []routeInfo{
	{http.MethodGet, "/api/consultas?tipo=cpf&cpf=XXXXX", "Consulta por CPF"},
	{http.MethodGet, "/api/consultas?tipo=nome&q=NOME", "Consulta por nome"},
	{http.MethodGet, "/api/consultas?tipo=numero&q=NUMERO", "Consulta por número"},
	{http.MethodGet, "/api/dashboard/metricas", "Métricas do dashboard"},
	{http.MethodGet, "/api/dashboard/logs", "Logs recentes"},
	{http.MethodGet, "/api/admin/validate", "Valida a chave de administrador"},
	{http.MethodGet, "/api/admin/stats", "Estatísticas e chaves"},
	{http.MethodGet, "/api/admin/keys", "Lista chaves"},
	{http.MethodPost, "/api/admin/keys?owner=NOME&role=user", "Emite chave"},
	{http.MethodPost, "/api/admin/toggle?target=CHAVE", "Ativa ou desativa chave"},
	{http.MethodDelete, "/api/admin/keys?target=CHAVE", "Remove chave"},
	{http.MethodGet, "/api/admin/logs", "Logs recentes"},
}

// index lists the public routes.
func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"nome":      "MutanoX API",
		"endpoints": routeIndex,
		"criador":   creator,
	})
}
