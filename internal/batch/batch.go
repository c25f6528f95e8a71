// Package batch converts many components, sequentially or with bounded
// parallelism.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/starford/lcsc2kicad/internal/metrics"
)

// Task converts one component.
type Task func(ctx context.Context, id string) error

// Options controls a batch run.
type Options struct {
	// Parallel caps in-flight conversions. Values <= 1 run sequentially.
	Parallel int
	// ContinueOnError keeps going after a failure. When false the first
	// failure stops the run and is returned.
	ContinueOnError bool
}

// Run converts every id with task and returns the aggregated report.
//
// In parallel mode an admission gate of capacity Parallel is acquired before
// each conversion starts and released after it fully completes, so at most
// Parallel conversions are ever in flight.
func Run(ctx context.Context, ids []string, task Task, opts Options, logger *slog.Logger) (Report, error) {
	tally := &Tally{}
	var err error
	if opts.Parallel <= 1 || len(ids) <= 1 {
		err = runSequential(ctx, ids, task, opts, tally, logger)
	} else {
		err = runParallel(ctx, ids, task, opts, tally, logger)
	}
	rep := tally.Report(len(ids))
	logger.Info("batch: finished",
		slog.Int("total", rep.Total),
		slog.Int("success", rep.Success),
		slog.Int("failed", rep.Failed))
	return rep, err
}

func runSequential(ctx context.Context, ids []string, task Task, opts Options, tally *Tally, logger *slog.Logger) error {
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info("batch: converting", slog.String("id", id), slog.Int("n", i+1), slog.Int("of", len(ids)))
		if err := task(ctx, id); err != nil {
			tally.Fail(id, err)
			logger.Error("batch: conversion failed", slog.String("id", id), slog.String("error", err.Error()))
			if !opts.ContinueOnError {
				return fmt.Errorf("batch: %s: %w", id, err)
			}
			continue
		}
		tally.Succeed()
	}
	return nil
}

func runParallel(ctx context.Context, ids []string, task Task, opts Options, tally *Tally, logger *slog.Logger) error {
	gate := semaphore.NewWeighted(int64(opts.Parallel))
	// admit only gates new conversions. Tasks run on ctx so a failure never
	// cancels conversions already in flight.
	admit, stop := context.WithCancel(ctx)
	defer stop()

	var g errgroup.Group
	for _, id := range ids {
		if err := gate.Acquire(admit, 1); err != nil {
			break
		}
		if admit.Err() != nil {
			gate.Release(1)
			break
		}
		metrics.BatchInFlight.Inc()
		g.Go(func() error {
			defer gate.Release(1)
			defer metrics.BatchInFlight.Dec()

			logger.Info("batch: converting", slog.String("id", id))
			if err := task(ctx, id); err != nil {
				tally.Fail(id, err)
				logger.Error("batch: conversion failed", slog.String("id", id), slog.String("error", err.Error()))
				if !opts.ContinueOnError {
					// Stop admission before the slot is released.
					stop()
					return fmt.Errorf("batch: %s: %w", id, err)
				}
				return nil
			}
			tally.Succeed()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

var idRe = regexp.MustCompile(`C\d+`)

// ReadIDs extracts every LCSC part number from r, in order of first
// appearance and without duplicates. Any surrounding text is ignored.
func ReadIDs(r io.Reader) ([]string, error) {
	seen := map[string]bool{}
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		for _, id := range idRe.FindAllString(sc.Text(), -1) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("batch: read ids: %w", err)
	}
	return ids, nil
}
