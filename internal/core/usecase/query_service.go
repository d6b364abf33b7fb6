package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
	"github.com/atvirokodosprendimai/mutanox/internal/core/parser"
	"github.com/atvirokodosprendimai/mutanox/internal/core/ports"
)

const (
	msgKindMissing    = "Tipo de consulta não especificado"
	msgInvalidCPF     = "CPF inválido ou vazio"
	msgInvalidName    = "Nome inválido ou vazio"
	msgInvalidNumber  = "Número inválido ou vazio"
	msgInvalidPayload = "Resposta inválida da API"
)

type QueryService struct {
	provider  ports.Provider
	telemetry *Telemetry
}

func NewQueryService(provider ports.Provider, telemetry *Telemetry) *QueryService {
	return &QueryService{provider: provider, telemetry: telemetry}
}

// Run routes one query. Caller mistakes come back as *domain.InputError;
// provider trouble is folded into an unsuccessful QueryResult.
func (s *QueryService) Run(ctx context.Context, rawKind, term string) (domain.QueryResult, error) {
	if strings.TrimSpace(rawKind) == "" {
		return domain.QueryResult{}, domain.NewInputError(domain.ErrUnknownKind, msgKindMissing)
	}
	kind, ok := domain.ParseQueryKind(rawKind)
	if !ok {
		return domain.QueryResult{}, domain.NewInputError(domain.ErrUnknownKind, "Tipo desconhecido: "+rawKind)
	}
	s.telemetry.Hit(kind)

	term, err := normalizeTerm(kind, term)
	if err != nil {
		return domain.QueryResult{}, err
	}

	payload, err := s.provider.Lookup(ctx, kind, term)
	if err != nil {
		var pe *domain.ProviderError
		if !errors.As(err, &pe) {
			return domain.QueryResult{}, fmt.Errorf("lookup %s: %w", kind, err)
		}
		s.telemetry.Record(ctx, domain.LogError, fmt.Sprintf("Falha na consulta %s", kind), pe.Error())
		return domain.QueryResult{Kind: kind, Error: pe.Message, Raw: pe.Raw}, nil
	}

	result, err := normalize(kind, payload.Result)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidResponse) {
			return domain.QueryResult{}, err
		}
		s.telemetry.Record(ctx, domain.LogWarn, fmt.Sprintf("Resposta não normalizável: %s", kind), err.Error())
		return domain.QueryResult{Kind: kind, Error: msgInvalidPayload, Raw: payload.Raw}, nil
	}
	return result, nil
}

func normalizeTerm(kind domain.QueryKind, term string) (string, error) {
	term = strings.TrimSpace(term)
	switch kind {
	case domain.QueryCPF:
		digits := domain.NormalizeCPF(term)
		if !domain.ValidCPF(digits) {
			return "", domain.NewInputError(domain.ErrInvalidInput, msgInvalidCPF)
		}
		return digits, nil
	case domain.QueryName:
		if term == "" {
			return "", domain.NewInputError(domain.ErrInvalidInput, msgInvalidName)
		}
	case domain.QueryNumber:
		if term == "" {
			return "", domain.NewInputError(domain.ErrInvalidInput, msgInvalidNumber)
		}
	}
	return term, nil
}

func normalize(kind domain.QueryKind, report string) (domain.QueryResult, error) {
	switch kind {
	case domain.QueryCPF:
		rec, err := parser.ParsePerson(report)
		if err != nil {
			return domain.QueryResult{}, err
		}
		return domain.QueryResult{Kind: kind, Success: true, Record: &rec}, nil
	case domain.QueryName:
		results, err := parser.ParseNameResults(report)
		if err != nil {
			return domain.QueryResult{}, err
		}
		return domain.QueryResult{Kind: kind, Success: true, Results: results}, nil
	default:
		results, err := parser.ParsePhoneResults(report)
		if err != nil {
			return domain.QueryResult{}, err
		}
		return domain.QueryResult{Kind: kind, Success: true, Results: results}, nil
	}
}
