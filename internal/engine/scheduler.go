package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler manages the periodic heartbeats of the server: the simulation
// tick, the news poll and the autosave. It does NOT know about coins or
// cash - only cadence. Tasks are registered once at wiring time and run
// until the context is cancelled.
type Scheduler struct {
	log   *zap.Logger
	tasks []scheduledTask
}

type scheduledTask struct {
	name     string
	interval time.Duration
	run      func()
}

// NewScheduler creates an empty scheduler.
func NewScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Every registers a named periodic task. Call before Start; registration
// after Start has no effect.
func (s *Scheduler) Every(name string, interval time.Duration, run func()) {
	s.tasks = append(s.tasks, scheduledTask{name: name, interval: interval, run: run})
}

// Start spawns one goroutine per registered task. All tasks stop when ctx
// is done.
func (s *Scheduler) Start(ctx context.Context) {
	for _, t := range s.tasks {
		go s.runTask(ctx, t)
	}
}

func (s *Scheduler) runTask(ctx context.Context, t scheduledTask) {
	s.log.Info("scheduler task started",
		zap.String("task", t.name),
		zap.Duration("interval", t.interval))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler task stopped", zap.String("task", t.name))
			return
		case <-ticker.C:
			t.run()
		}
	}
}
