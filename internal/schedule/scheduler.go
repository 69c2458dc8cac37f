// Package schedule fires recurring migration submissions on a cron spec,
// grounded on the teacher's trigger Engine (internal/triggers/engine.go),
// which schedules cron.AddFunc jobs keyed by a stable id and fires them by
// invoking the owning subsystem rather than re-deriving behavior inline.
package schedule

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/cedricziel/migrated/internal/workflow"
)

// Scheduler owns a cron.Cron instance and a table of recurring migration
// submissions, each identified by its own stable id distinct from the
// Workflow ids it produces (one schedule entry fires many workflow runs
// over its lifetime).
type Scheduler struct {
	cron     *cron.Cron
	engine   *workflow.Engine
	registry *workflow.Registry
	logger   *log.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewScheduler returns a Scheduler driving engine/registry. A nil logger
// falls back to log.Default().
func NewScheduler(engine *workflow.Engine, registry *workflow.Registry, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		engine:   engine,
		registry: registry,
		logger:   logger,
		entries:  make(map[string]cron.EntryID),
	}
}

// Start begins firing scheduled jobs in the background and calls Stop once
// ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop halts the scheduler, letting any in-flight job finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// ScheduleRecurringMigration registers a recurring submission of input under
// the standard five-field cron spec, keyed by id. Scheduling twice under the
// same id replaces the earlier entry.
func (s *Scheduler) ScheduleRecurringMigration(id, cronSpec string, input workflow.MigrationInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[id]; ok {
		s.cron.Remove(existing)
		delete(s.entries, id)
	}

	entryID, err := s.cron.AddFunc(cronSpec, func() { s.fire(id, input) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", id, err)
	}
	s.entries[id] = entryID
	s.logger.Printf("scheduler: registered %q with cron %q", id, cronSpec)
	return nil
}

// Unschedule removes the recurring submission registered under id, if any.
func (s *Scheduler) Unschedule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
		s.logger.Printf("scheduler: unregistered %q", id)
	}
}

// fire submits a fresh Workflow for input and runs it to completion in the
// background; per-run failures are logged, never panicked on, since a
// scheduled recurrence must survive one bad tick.
func (s *Scheduler) fire(scheduleID string, input workflow.MigrationInput) {
	wf := workflow.NewWorkflow(uuid.NewString(), input)
	s.registry.Submit(wf)
	s.logger.Printf("scheduler: firing %q as workflow %s", scheduleID, wf.ID)

	if err := s.engine.Start(context.Background(), wf); err != nil {
		s.logger.Printf("scheduler: workflow %s (schedule %q) failed: %v", wf.ID, scheduleID, err)
	}
}
