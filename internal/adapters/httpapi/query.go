package httpapi

import (
	"errors"
	"net/http"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawKind := q.Get("tipo")
	term := q.Get("q")
	if kind, _ := domain.ParseQueryKind(rawKind); kind == domain.QueryCPF {
		term = q.Get("cpf")
	}

	res, err := h.queryService.Run(r.Context(), rawKind, term)
	if err != nil {
		var inputErr *domain.InputError
		switch {
		case errors.As(err, &inputErr) && errors.Is(err, domain.ErrUnknownKind):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"sucesso":          false,
				"erro":             inputErr.Message,
				"tiposDisponiveis": domain.QueryKinds,
				"criador":          creator,
			})
		case errors.As(err, &inputErr):
			writeQueryError(w, http.StatusBadRequest, inputErr.Message)
		default:
			h.logger.ErrorContext(r.Context(), "query failed", "tipo", rawKind, "owner", principalFromContext(r.Context()).Owner, "err", err)
			writeInternalError(w, err.Error())
		}
		return
	}

	if h.metrics != nil {
		h.metrics.IncQuery(res.Kind, res.Success)
	}
	writeJSON(w, http.StatusOK, queryEnvelope(res))
}

// queryEnvelope renders the wire shape. List kinds always carry a
// resultados array, even when empty.
func queryEnvelope(res domain.QueryResult) map[string]any {
	if !res.Success {
		body := map[string]any{"sucesso": false, "erro": res.Error, "criador": creator}
		if len(res.Raw) > 0 {
			body["resposta"] = res.Raw
		}
		return body
	}
	if res.Kind.IsList() {
		results := res.Results
		if results == nil {
			results = []domain.PersonSummary{}
		}
		return map[string]any{
			"sucesso":         true,
			"totalResultados": len(results),
			"resultados":      results,
			"criador":         creator,
		}
	}
	return map[string]any{"sucesso": true, "dados": res.Record, "criador": creator}
}
