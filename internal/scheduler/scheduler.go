// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/bordertrade/internal/metrics"
)

// UsageResetter zeroes every resident's monthly usage count.
type UsageResetter interface {
	ResetMonthlyUsage(ctx context.Context) (int64, error)
}

// Ticker advances a simulation by one step.
type Ticker interface {
	Tick(ctx context.Context) (int, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	store   UsageResetter
	sim     Ticker
	metrics *metrics.Metrics
}

// New creates a Scheduler. Jobs run with ctx; sim and m may be nil.
func New(ctx context.Context, store UsageResetter, sim Ticker, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		store:   store,
		sim:     sim,
		metrics: m,
	}
}

// RegisterAll registers the monthly usage reset and, when tickSpec is set and a
// simulator is present, the grab simulation tick.
func (s *Scheduler) RegisterAll(resetSpec, tickSpec string) error {
	if _, err := s.cron.AddFunc(resetSpec, s.ResetMonthlyUsage); err != nil {
		return fmt.Errorf("register monthly reset: %w", err)
	}
	if tickSpec != "" && s.sim != nil {
		if _, err := s.cron.AddFunc(tickSpec, s.TickGrab); err != nil {
			return fmt.Errorf("register grab tick: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	slog.Info("Scheduler stopped")
}

// ResetMonthlyUsage runs the monthly reset immediately.
func (s *Scheduler) ResetMonthlyUsage() {
	n, err := s.store.ResetMonthlyUsage(s.ctx)
	if err != nil {
		slog.Error("Monthly usage reset failed", "error", err)
		return
	}
	s.metrics.ObserveUsageReset()
	slog.Info("Monthly usage reset", "residents", n)
}

// TickGrab runs one grab simulation step immediately.
func (s *Scheduler) TickGrab() {
	if s.sim == nil {
		return
	}
	n, err := s.sim.Tick(s.ctx)
	if err != nil {
		slog.Error("Grab simulation tick failed", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("Grab simulation tick", "claims", n)
	}
}
