// Package internal provides the application wiring and the entry points
// behind the command line.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lcsc2kicad/internal/api"
	"github.com/starford/lcsc2kicad/internal/batch"
	"github.com/starford/lcsc2kicad/internal/componentservice"
	"github.com/starford/lcsc2kicad/internal/converter"
	"github.com/starford/lcsc2kicad/internal/easyeda"
	"github.com/starford/lcsc2kicad/internal/index"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/logging"
	"github.com/starford/lcsc2kicad/internal/mcpserver"
	"github.com/starford/lcsc2kicad/internal/sse"
)

// runtime holds the components shared by every entry point.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	out    io.Writer
	lib    *library.Library
	db     *index.DB
	svc    *componentservice.Service
	app    *application
}

func setup(opts []Option, events componentservice.Publisher) (*runtime, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = logging.New(logging.Options{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	}
	out := app.out
	if out == nil {
		out = os.Stdout
	}

	logger.Debug("Configuration loaded",
		slog.String("library_dir", cfg.Library.Dir),
		slog.String("library_name", cfg.Library.Name),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	lib, err := library.Open(cfg.Library.Dir, cfg.Library.Name, logger)
	if err != nil {
		return nil, fmt.Errorf("init library: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	client := easyeda.New(cfg.Source.ClientOptions(), logger)
	conv := converter.New(client, lib, db, logger)
	svc := componentservice.NewService(conv, lib, db, events, cfg.defaultOptions(), logger)

	return &runtime{cfg: cfg, logger: logger, out: out, lib: lib, db: db, svc: svc, app: app}, nil
}

func (rt *runtime) close() {
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("close index failed", slog.String("error", err.Error()))
	}
}

// defaultOptions converts everything with the configured model path style.
func (c *Config) defaultOptions() converter.Options {
	return converter.Options{
		Symbol:          true,
		Footprint:       true,
		Model3D:         true,
		Overwrite:       c.Library.Overwrite,
		ProjectRelative: c.Library.ProjectRelative,
		GlobalEnv:       c.Library.GlobalEnv,
	}
}

// ConvertRequest describes one convert invocation.
type ConvertRequest struct {
	IDs     []string
	Options converter.Options
	Batch   batch.Options
}

// Convert converts the requested ids and prints a summary table.
func Convert(ctx context.Context, req ConvertRequest, opts ...Option) (batch.Report, error) {
	rt, err := setup(opts, nil)
	if err != nil {
		return batch.Report{}, err
	}
	defer rt.close()

	if err := req.Options.Validate(); err != nil {
		return batch.Report{}, err
	}
	if len(req.IDs) == 0 {
		return batch.Report{}, fmt.Errorf("no component ids given")
	}

	logger := logging.WithRunID(rt.logger)
	logger.Info("convert: starting",
		slog.Int("components", len(req.IDs)),
		slog.Int("parallel", req.Batch.Parallel))

	task := func(ctx context.Context, id string) error {
		_, err := rt.svc.Convert(ctx, id, req.Options)
		return err
	}
	rep, err := batch.Run(ctx, req.IDs, task, req.Batch, logger)
	if len(req.IDs) > 1 || rep.Failed > 0 {
		fmt.Fprint(rt.out, batchSummary(rep))
	}
	logger.Info("convert: finished",
		slog.Int("success", rep.Success),
		slog.Int("failed", rep.Failed))
	if err != nil {
		return rep, err
	}
	if rep.Failed > 0 {
		return rep, fmt.Errorf("%d of %d components failed", rep.Failed, rep.Total)
	}
	return rep, nil
}

// Remove deletes every artifact of the given ids and prints what went.
func Remove(ctx context.Context, ids []string, opts ...Option) error {
	rt, err := setup(opts, nil)
	if err != nil {
		return err
	}
	defer rt.close()

	reports := make(map[string]library.RemoveReport, len(ids))
	var errs []error
	for _, id := range ids {
		rep, err := rt.svc.Remove(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
		reports[id] = rep
	}
	fmt.Fprint(rt.out, removeSummary(reports, ids))
	return errors.Join(errs...)
}

// ListRequest describes one list invocation.
type ListRequest struct {
	Query  string
	Limit  int
	Offset int
	Sort   string
	Sync   bool
}

// List prints the catalogued components, optionally reconciling the catalog
// with the library first.
func List(ctx context.Context, req ListRequest, opts ...Option) error {
	rt, err := setup(opts, nil)
	if err != nil {
		return err
	}
	defer rt.close()

	if req.Sync {
		if err := index.Sync(ctx, rt.db, rt.lib, rt.logger); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}

	if req.Query != "" {
		items, err := rt.svc.Search(ctx, req.Query, req.Limit)
		if err != nil {
			return err
		}
		fmt.Fprint(rt.out, componentTable(items, len(items)))
		return nil
	}
	items, total, err := rt.svc.ListComponents(ctx, req.Limit, req.Offset, req.Sort)
	if err != nil {
		return err
	}
	fmt.Fprint(rt.out, componentTable(items, total))
	return nil
}

// Watch follows a batch list file and converts every id added to it until
// ctx is cancelled.
func Watch(ctx context.Context, file string, conv converter.Options, bopts batch.Options, opts ...Option) error {
	rt, err := setup(opts, nil)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := conv.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return index.Watch(ctx, file, rt.logger, rt.watchCallback(ctx, conv, bopts))
}

// watchCallback converts each pass with ContinueOnError forced on so every
// id gets an outcome, and hands the failures back for retry.
func (rt *runtime) watchCallback(ctx context.Context, conv converter.Options, bopts batch.Options) index.IDCallback {
	bopts.ContinueOnError = true
	return func(ids []string) []string {
		logger := logging.WithRunID(rt.logger)
		rep, err := rt.svc.ConvertBatch(ctx, ids, conv, bopts)
		if err != nil {
			logger.Error("watch: batch failed", slog.String("error", err.Error()))
		}
		fmt.Fprint(rt.out, batchSummary(rep))
		return rep.FailedIDs
	}
}

// ServeMCP runs the MCP server on stdin/stdout.
func ServeMCP(_ context.Context, opts ...Option) error {
	rt, err := setup(opts, nil)
	if err != nil {
		return err
	}
	defer rt.close()

	version := rt.app.version
	if version == "" {
		version = "dev"
	}
	rt.logger.Info("mcp: serving on stdio")
	return mcpserver.New(rt.svc, version).ServeStdio()
}

// Serve starts the HTTP service with the given options.
func Serve(ctx context.Context, opts ...Option) error {
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, err := setup(opts, broker)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := rt.cfg
	logger := rt.logger

	// Drop catalog rows whose files were deleted while we were down.
	if err := index.Sync(ctx, rt.db, rt.lib, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	files := api.NewFileHandler(rt.lib.Store(), rt.lib.SymbolFile(), rt.lib.FootprintDir(), rt.lib.ModelDir())
	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, files)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if _, err := rt.db.AllIDs(req.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	if rt.app.watchFile != "" {
		g.Go(func() error {
			cb := rt.watchCallback(gCtx, cfg.defaultOptions(), batch.Options{
				Parallel:        cfg.Batch.Parallel,
				ContinueOnError: true,
			})
			return index.Watch(gCtx, rt.app.watchFile, logger, cb)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		cancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
