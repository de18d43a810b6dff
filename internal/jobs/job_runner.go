package jobs

import (
	"fmt"
	"sort"

	"library-circulation/internal/config"
	"library-circulation/internal/logger"
	"library-circulation/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *service.Services
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *service.Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	log := logger.WithJob(jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	log.Info("Starting job")
	jobFunc()
	log.Info("Job completed")
}

// RunAll runs every job once, in schedule order
func (jr *JobRunner) RunAll() {
	jr.SweepExpired()
	jr.SendOverdueReminders()
	jr.FlagOverdueFines()
}

// Jobs maps command-line job names to runner methods
func (jr *JobRunner) Jobs() map[string]func() {
	return map[string]func(){
		"sweep-expired":          jr.SweepExpired,
		"send-overdue-reminders": jr.SendOverdueReminders,
		"flag-overdue-fines":     jr.FlagOverdueFines,
		"all":                    jr.RunAll,
	}
}

// JobNames lists the names accepted by Run
func (jr *JobRunner) JobNames() []string {
	var names []string
	for name := range jr.Jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named job once
func (jr *JobRunner) Run(name string) error {
	job, ok := jr.Jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	job()
	return nil
}
