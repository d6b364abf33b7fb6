package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atvirokodosprendimai/mutanox/internal/adapters/filestore"
	"github.com/atvirokodosprendimai/mutanox/internal/adapters/httpapi"
	"github.com/atvirokodosprendimai/mutanox/internal/adapters/metrics"
	"github.com/atvirokodosprendimai/mutanox/internal/adapters/provider"
	sqliteadapter "github.com/atvirokodosprendimai/mutanox/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/mutanox/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
	"github.com/atvirokodosprendimai/mutanox/internal/core/ports"
	"github.com/atvirokodosprendimai/mutanox/internal/core/usecase"
	"github.com/atvirokodosprendimai/mutanox/migrations"
)

const shutdownTimeout = 10 * time.Second

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Server is a configured gateway ready to listen.
type Server struct {
	HTTP      *http.Server
	Telemetry *usecase.Telemetry

	closer io.Closer
	logger *slog.Logger
}

func (s *Server) Close() error {
	return s.closer.Close()
}

func NewServer(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	seed := func() []domain.APIKey {
		return usecase.SeedKeys(cfg.AdminKey, cfg.TestKey, time.Now())
	}
	store, closer, err := openKeyStore(ctx, cfg, seed)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	keys, err := store.Load(loadCtx)
	cancel()
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("load keys: %w", err)
	}

	m := metrics.New()
	client, err := provider.New(provider.Options{
		BaseURL:  cfg.ProviderURL,
		Timeout:  cfg.ProviderTimeout,
		RPS:      cfg.ProviderRPS,
		Burst:    cfg.ProviderBurst,
		Observer: m,
	})
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	telemetry := usecase.NewTelemetry(logger)
	handler := httpapi.NewHandler(
		usecase.NewAuthService(store, telemetry, cfg.AdminKey),
		usecase.NewKeyService(store, cfg.AdminKey, cfg.KeyPrefix),
		usecase.NewQueryService(client, telemetry),
		telemetry,
		m,
		logger,
	)

	telemetry.Record(ctx, domain.LogInfo, fmt.Sprintf("Chaves carregadas: %d", len(keys)), "store: "+cfg.Store)
	telemetry.Record(ctx, domain.LogAdmin, "Admin Key: "+domain.MaskKey(cfg.AdminKey), "")
	if cfg.TestKey != "" {
		telemetry.Record(ctx, domain.LogInfo, "Test Key: "+domain.MaskKey(cfg.TestKey), "")
	}

	return &Server{
		HTTP: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		Telemetry: telemetry,
		closer:    closer,
		logger:    logger,
	}, nil
}

func openKeyStore(ctx context.Context, cfg Config, seed func() []domain.APIKey) (ports.KeyStore, io.Closer, error) {
	if cfg.Store == StoreFile {
		return filestore.New(cfg.KeysFile, seed), resourceCloser{}, nil
	}

	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migrateCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return sqliteadapter.NewKeyRepository(db, seed), resourceCloser{closers: []io.Closer{db}}, nil
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Telemetry.Record(gctx, domain.LogSuccess, "Servidor rodando em "+ln.Addr().String(), "")
		if err := s.HTTP.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down", "reason", context.Cause(gctx))
		return s.HTTP.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Run builds the server, listens on cfg.Addr and blocks until ctx is done.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	srv, err := NewServer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			srv.logger.Error("close resources", "err", err)
		}
	}()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	return srv.Serve(ctx, ln)
}
