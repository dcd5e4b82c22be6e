// Package server exposes the GraphQL schema over HTTP.
//
// Routes:
//
//	POST /graphql         JSON body {"query", "variables", "operationName"}
//	GET  /graphql         same fields as URL parameters, variables as JSON
//	POST /schema/rebuild  rediscover storage types and swap the schema
//	GET  /healthz         200 once a schema is installed
//	GET  /metrics         Prometheus exposition, when metrics are enabled
//
// The schema is replaced atomically: requests in flight keep the schema
// they started with.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/rs/cors"
	"github.com/sourcegraph/conc"

	gqlschema "github.com/roach88/worldgraph/internal/graphql/schema"
	"github.com/roach88/worldgraph/internal/log"
	"github.com/roach88/worldgraph/internal/metrics"
	"github.com/roach88/worldgraph/internal/typemap"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// ErrNoSchema is returned while no schema has been built yet.
var ErrNoSchema = errors.New("schema not built")

type Server struct {
	src     gqlschema.Source
	parse   typemap.ParseFunc
	log     log.Logger
	metrics *metrics.Metrics
	ids     IDGenerator
	origins []string

	schema  atomic.Pointer[graphql.Schema]
	types   atomic.Pointer[[]string]
	rebuild sync.Mutex
}

type Option func(*Server)

func WithLogger(l log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics enables request metrics and the /metrics route.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithParse replaces typemap.Parse, typically with a typemap.Cache.
func WithParse(parse typemap.ParseFunc) Option {
	return func(s *Server) { s.parse = parse }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Server) { s.ids = g }
}

// WithCORSOrigins sets the allowed origins. "*" allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

func New(src gqlschema.Source, opts ...Option) *Server {
	s := &Server{
		src:     src,
		parse:   typemap.Parse,
		log:     log.NewNop(),
		ids:     UUIDv7Generator{},
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("server")
	return s
}

// Rebuild discovers the current storage types, builds a new schema and
// installs it. On failure the previous schema stays in place.
func (s *Server) Rebuild(ctx context.Context) ([]string, error) {
	s.rebuild.Lock()
	defer s.rebuild.Unlock()

	start := time.Now()
	objects, err := gqlschema.Discover(ctx, s.src, s.parse, s.log)
	if err == nil {
		var sch graphql.Schema
		if sch, err = gqlschema.Build(objects...); err == nil {
			s.schema.Store(&sch)
		}
	}

	if err != nil {
		s.observeRebuild(err, 0, 0)
		s.log.Errorw("Schema rebuild failed", "err", err)
		return nil, fmt.Errorf("rebuild schema: %w", err)
	}

	types := make([]string, 0, len(objects)-1)
	for _, o := range objects[1:] {
		types = append(types, o.TypeName())
	}
	s.types.Store(&types)
	s.observeRebuild(nil, len(objects), len(types))
	s.log.Infow("Schema installed", "storageTypes", types, "took", time.Since(start))
	return types, nil
}

func (s *Server) observeRebuild(err error, objects, storage int) {
	if s.metrics != nil {
		s.metrics.ObserveRebuild(err, objects, storage)
	}
}

// Schema returns the installed schema.
func (s *Server) Schema() (graphql.Schema, error) {
	sch := s.schema.Load()
	if sch == nil {
		return graphql.Schema{}, ErrNoSchema
	}
	return *sch, nil
}

// StorageTypes lists the storage types of the installed schema.
func (s *Server) StorageTypes() []string {
	types := s.types.Load()
	if types == nil {
		return nil
	}
	return append([]string(nil), (*types)...)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphql", s.handleGraphQL)
	mux.HandleFunc("GET /graphql", s.handleGraphQL)
	mux.HandleFunc("POST /schema/rebuild", s.handleRebuild)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler(s.withRequestID(mux))
}

// Run serves on listener until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Addr:    listener.Addr().String(),
		Handler: s.Handler(),
		// ReadTimeout also sets ReadHeaderTimeout and IdleTimeout.
		ReadTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	defer close(errCh)

	var wg conc.WaitGroup
	defer wg.Wait()
	wg.Go(func() {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	s.log.Infow("Listening", "addr", listener.Addr().String())
	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// ListenAndRun listens on addr and calls Run.
func (s *Server) ListenAndRun(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Run(ctx, listener)
}
