package domain

import (
	"encoding/json"
	"strings"
)

type QueryKind string

const (
	QueryCPF    QueryKind = "cpf"
	QueryName   QueryKind = "nome"
	QueryNumber QueryKind = "numero"
)

// QueryKinds lists the supported kinds in the order they are advertised.
var QueryKinds = []QueryKind{QueryCPF, QueryName, QueryNumber}

func ParseQueryKind(raw string) (QueryKind, bool) {
	kind := QueryKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range QueryKinds {
		if k == kind {
			return k, true
		}
	}
	return kind, false
}

// IsList reports whether the kind returns a sequence of summaries.
func (k QueryKind) IsList() bool {
	return k == QueryName || k == QueryNumber
}

// QueryResult is the dispatcher outcome. Exactly one of Record and Results
// is meaningful on success; on failure Error is set and Raw may carry the
// provider payload that could not be normalized.
type QueryResult struct {
	Kind    QueryKind
	Success bool
	Record  *PersonRecord
	Results []PersonSummary
	Error   string
	Raw     json.RawMessage
}

// ProviderPayload is a decoded 2xx answer from the lookup provider.
type ProviderPayload struct {
	Result string
	Raw    json.RawMessage
}
