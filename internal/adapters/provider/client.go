// Package provider calls the upstream personal-records lookup service.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

const (
	DefaultBaseURL = "https://world-ecletix.onrender.com"
	DefaultTimeout = 15 * time.Second

	maxBodyBytes = 1 << 20
)

const (
	msgTimeout     = "Tempo limite excedido ao consultar a API"
	msgUnreachable = "Falha ao contatar a API"
	msgBadURL      = "URL inválida"
	msgBadPayload  = "Resposta inválida da API"
)

// endpoint is the path and query parameter the provider expects per kind.
type endpoint struct {
	path  string
	param string
}

var endpoints = map[domain.QueryKind]endpoint{
	domain.QueryCPF:    {path: "/api/consultarcpf", param: "cpf"},
	domain.QueryName:   {path: "/api/nome-completo", param: "q"},
	domain.QueryNumber: {path: "/api/numero", param: "q"},
}

// Observer receives one call per finished lookup.
type Observer interface {
	ObserveProvider(kind domain.QueryKind, outcome string, elapsed time.Duration)
}

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	RPS      float64
	Burst    int
	Observer Observer
}

// Client performs one GET per lookup, with no retries. Every failure is
// returned as *domain.ProviderError.
type Client struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	contract *payloadContract
	observer Observer
}

// New builds a client. A zero or negative timeout falls back to
// DefaultTimeout; a non-positive RPS disables the limiter.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("provider base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	contract, err := newPayloadContract()
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		client:   &http.Client{Timeout: opts.Timeout},
		limiter:  limiter,
		contract: contract,
		observer: opts.Observer,
	}, nil
}

func (c *Client) Lookup(ctx context.Context, kind domain.QueryKind, term string) (domain.ProviderPayload, error) {
	start := time.Now()
	payload, err := c.lookup(ctx, kind, term)
	if c.observer != nil {
		outcome := "ok"
		if err != nil {
			outcome = string(domain.ProviderErrorCategoryOf(err))
		}
		c.observer.ObserveProvider(kind, outcome, time.Since(start))
	}
	return payload, err
}

func (c *Client) lookup(ctx context.Context, kind domain.QueryKind, term string) (domain.ProviderPayload, error) {
	target, err := c.buildURL(kind, term)
	if err != nil {
		return domain.ProviderPayload{}, &domain.ProviderError{Category: domain.ProviderInternal, Message: msgBadURL, Underlying: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.ProviderPayload{}, transportError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.ProviderPayload{}, &domain.ProviderError{Category: domain.ProviderInternal, Message: msgBadURL, Underlying: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ProviderPayload{}, transportError(err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.ProviderPayload{}, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ProviderPayload{}, &domain.ProviderError{
			Category: domain.ProviderOutage,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("API retornou status %d", resp.StatusCode),
			Raw:      rawPayload(body),
		}
	}

	result, err := c.contract.result(body)
	if err != nil {
		return domain.ProviderPayload{}, &domain.ProviderError{
			Category:   domain.ProviderBadData,
			Status:     resp.StatusCode,
			Message:    msgBadPayload,
			Raw:        rawPayload(body),
			Underlying: err,
		}
	}
	return domain.ProviderPayload{Result: result, Raw: json.RawMessage(body)}, nil
}

func (c *Client) buildURL(kind domain.QueryKind, term string) (string, error) {
	ep, ok := endpoints[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}
	u, err := url.Parse(c.baseURL + ep.path)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set(ep.param, term)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func transportError(err error) *domain.ProviderError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.ProviderError{Category: domain.ProviderTimeout, Message: msgTimeout, Underlying: err}
	}
	if errors.Is(err, context.Canceled) {
		return &domain.ProviderError{Category: domain.ProviderInternal, Message: msgUnreachable, Underlying: err}
	}
	return &domain.ProviderError{Category: domain.ProviderOutage, Message: msgUnreachable, Underlying: err}
}

// rawPayload keeps a JSON body as is and wraps anything else as a JSON string.
func rawPayload(body []byte) json.RawMessage {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
