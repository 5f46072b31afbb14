package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/bkniffler/myranor/internal/platform/timeouts"
	"github.com/bkniffler/myranor/internal/services/game/api/httpapi"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
	"github.com/bkniffler/myranor/internal/services/game/engine"
	"github.com/bkniffler/myranor/internal/services/game/storage"
	"golang.org/x/sync/errgroup"
)

const defaultAddr = ":8080"

const timeoutBody = `{"code":"REQUEST_TIMEOUT","message":"request timed out"}`

// Options configures a Server.
type Options struct {
	Addr string
	// Storage selects the backend; empty means file.
	Storage StorageKind
	// DataDir holds the file store and the default SQLite database.
	DataDir    string
	SQLitePath string
	// RulesPath is an optional JSON file overriding the default rules.
	RulesPath     string
	Serialize     bool
	RetryAttempts int
	// Logger receives request logs; nil logs JSON to stderr.
	Logger *slog.Logger
}

// Server hosts the game HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      storage.Store
}

// New opens storage, wires the engine and binds the listener.
func New(opts Options) (*Server, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		addr = defaultAddr
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}

	catalog := rules.NewCatalog(opts.RulesPath)
	if _, err := catalog.Rules(); err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	store, err := openStore(opts)
	if err != nil {
		return nil, err
	}
	repo, err := storage.NewRepository(store, store)
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("create repository: %w", err)
	}
	service, err := engine.New(engine.Config{
		Repository:  repo,
		Rules:       catalog,
		Serialize:   opts.Serialize,
		MaxAttempts: opts.RetryAttempts,
	})
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("create engine: %w", err)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	routes := httpapi.NewHandler(service, storeHealth(store), logger).Routes()
	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           http.TimeoutHandler(routes, timeouts.Request, timeoutBody),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store: store,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve handles requests until ctx is cancelled or the listener fails, then
// shuts down gracefully and closes the store.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer closeStore(s.store)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("game server listening at %v", s.listener.Addr())
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Run creates a server and serves until ctx is done.
func Run(ctx context.Context, opts Options) error {
	srv, err := New(opts)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func closeStore(store storage.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		log.Printf("close campaign store: %v", err)
	}
}
