package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Wryz/bible-modules/internal/kv"
	memoryverse "github.com/Wryz/bible-modules/internal/memory_verse"
	"github.com/Wryz/bible-modules/internal/metrics"
	"github.com/Wryz/bible-modules/internal/picker"
	"github.com/Wryz/bible-modules/internal/scripture"
	"github.com/Wryz/bible-modules/internal/widget"
	"github.com/Wryz/bible-modules/pkg/config"
)

type Server struct {
	port      string
	cfg       *config.Config
	log       *zap.Logger
	store     kv.Store
	registry  *prometheus.Registry
	handler   http.Handler
	mvService *memoryverse.MemoryVerseService

	cancel context.CancelFunc
	jobs   sync.WaitGroup
}

// NewServer loads the corpus, opens the configured store and wires the
// verse engine behind the HTTP routes.
func NewServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	corpus, err := scripture.LoadCorpusFile(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	idx := scripture.NewIndex(corpus)
	log.Info("corpus loaded",
		zap.String("version", corpus.Version),
		zap.Int("books", len(corpus.Books)),
		zap.Int("verses", idx.Size()),
	)

	store, err := kv.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	log.Info("store opened", zap.String("driver", cfg.Store.Driver))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	repo := memoryverse.NewMemoryVerseRepo(store, log)
	mvService := memoryverse.NewMemoryVerseService(
		repo,
		idx,
		picker.New(idx, seed),
		widget.NewSharedDefaults(store, cfg.WidgetGroup),
		memoryverse.Options{
			BookScope:       idx.BooksFrom(cfg.BookScopeFrom),
			PopulateCount:   cfg.PopulateCount,
			PromoteInterval: cfg.PromoteInterval,
			WidgetTimeout:   cfg.WidgetTimeout,
			Logger:          log.Named("memoryverse"),
			Metrics:         metrics.NewMetrics(registry),
		},
	)

	s := &Server{
		port:      cfg.Port,
		cfg:       cfg,
		log:       log,
		store:     store,
		registry:  registry,
		mvService: mvService,
	}

	s.handler = s.RegisterRoutes()
	return s, nil
}

// Service exposes the verse engine to the CLI commands.
func (s *Server) Service() *memoryverse.MemoryVerseService {
	return s.mvService
}

// HTTPServer returns the actual *http.Server instance
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartBackgroundJobs runs scheduled jobs
func (s *Server) StartBackgroundJobs() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		s.mvService.StartScheduler(ctx)
	}()
	s.log.Info("verse scheduler started")
}

func (s *Server) StopBackgroundJobs() {
	if s.cancel != nil {
		s.cancel()
		s.jobs.Wait()
		s.log.Info("background jobs stopped gracefully")
	}
}

// Close stops background work, drains pending widget updates and closes
// the store.
func (s *Server) Close() error {
	s.StopBackgroundJobs()
	s.mvService.Wait()
	return s.store.Close()
}
