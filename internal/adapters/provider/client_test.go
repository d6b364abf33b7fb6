package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveProvider(_ domain.QueryKind, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func providerError(t *testing.T, err error) *domain.ProviderError {
	t.Helper()
	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	return pe
}

func TestLookupRoutesEachKind(t *testing.T) {
	cases := []struct {
		kind  domain.QueryKind
		term  string
		path  string
		param string
	}{
		{domain.QueryCPF, "52998224725", "/api/consultarcpf", "cpf"},
		{domain.QueryName, "Ana Costa", "/api/nome-completo", "q"},
		{domain.QueryNumber, "65999701064", "/api/numero", "q"},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tc.path, r.URL.Path)
				assert.Equal(t, tc.term, r.URL.Query().Get(tc.param))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"resultado":"• Nome: Ana"}`))
			}, Options{})

			payload, err := c.Lookup(context.Background(), tc.kind, tc.term)
			require.NoError(t, err)
			assert.Equal(t, "• Nome: Ana", payload.Result)
			assert.JSONEq(t, `{"resultado":"• Nome: Ana"}`, string(payload.Raw))
		})
	}
}

func TestLookupNon2xx(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}, Options{Observer: obs})

	_, err := c.Lookup(context.Background(), domain.QueryName, "ana")
	pe := providerError(t, err)
	assert.Equal(t, domain.ProviderOutage, pe.Category)
	assert.Equal(t, http.StatusBadGateway, pe.Status)
	assert.Equal(t, "API retornou status 502", pe.Message)
	assert.JSONEq(t, `"upstream down"`, string(pe.Raw))
	assert.Equal(t, []string{"provider_outage"}, obs.outcomes)
}

func TestLookupMissingResultado(t *testing.T) {
	for name, body := range map[string]string{
		"absent":     `{"status":"ok"}`,
		"empty":      `{"resultado":""}`,
		"not string": `{"resultado":42}`,
		"not object": `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}, Options{})

			_, err := c.Lookup(context.Background(), domain.QueryCPF, "52998224725")
			pe := providerError(t, err)
			assert.Equal(t, domain.ProviderBadData, pe.Category)
			assert.Equal(t, "Resposta inválida da API", pe.Message)
			assert.JSONEq(t, body, string(pe.Raw))
		})
	}
}

func TestLookupNonJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}, Options{})

	_, err := c.Lookup(context.Background(), domain.QueryNumber, "1")
	pe := providerError(t, err)
	assert.Equal(t, domain.ProviderBadData, pe.Category)
	assert.JSONEq(t, `"<html>oops</html>"`, string(pe.Raw))
}

func TestLookupTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, Options{Timeout: 50 * time.Millisecond})
	defer close(release)

	_, err := c.Lookup(context.Background(), domain.QueryName, "ana")
	pe := providerError(t, err)
	assert.Equal(t, domain.ProviderTimeout, pe.Category)
	assert.Equal(t, "Tempo limite excedido ao consultar a API", pe.Message)
}

func TestLookupCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}, Options{RPS: 1, Burst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Lookup(ctx, domain.QueryName, "ana")
	pe := providerError(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, domain.ProviderInternal, pe.Category)
}

func TestLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), domain.QueryCPF, "52998224725")
	pe := providerError(t, err)
	assert.Equal(t, domain.ProviderOutage, pe.Category)
	assert.Equal(t, "Falha ao contatar a API", pe.Message)
}

func TestLookupUnknownKind(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), domain.QueryKind("placa"), "x")
	pe := providerError(t, err)
	assert.Equal(t, "URL inválida", pe.Message)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestNewDefaults(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)

	_, err = New(Options{BaseURL: "::not a url"})
	assert.Error(t, err)
}
