// Package scheduler runs the processor jobs on fixed intervals.
package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// StaleWithdrawalInterval is how often pending withdrawals are checked.
const StaleWithdrawalInterval = 15 * time.Minute

// Jobs is the work the scheduler drives.
type Jobs interface {
	ProcessTournaments(ctx context.Context, now time.Time, dryRun bool) (int, error)
	ProcessCompensations(ctx context.Context, dryRun bool) (int, error)
	FlagStaleWithdrawals(ctx context.Context, now time.Time, dryRun bool) (int, error)
}

type Scheduler struct {
	sched gocron.Scheduler
	jobs  Jobs
	ctx   context.Context
	stop  context.CancelFunc
}

// New registers the tournament, compensation and stale-withdrawal jobs.
// Each job runs in singleton mode so a slow run is never overlapped.
func New(jobs Jobs, interval time.Duration, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}
	ctx, stop := context.WithCancel(context.Background())
	s := &Scheduler{sched: sched, jobs: jobs, ctx: ctx, stop: stop}

	definitions := []struct {
		name  string
		every time.Duration
		run   func(context.Context)
	}{
		{"process-tournaments", interval, s.processTournaments},
		{"process-compensations", interval, s.processCompensations},
		{"flag-stale-withdrawals", StaleWithdrawalInterval, s.flagStaleWithdrawals},
	}
	for _, d := range definitions {
		run := d.run
		_, err := sched.NewJob(
			gocron.DurationJob(d.every),
			gocron.NewTask(func() { run(s.ctx) }),
			gocron.WithName(d.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			stop()
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Info("Starting scheduler", "jobs", len(s.sched.Jobs()))
	s.sched.Start()
}

// Shutdown cancels running jobs and waits for them to return.
func (s *Scheduler) Shutdown() error {
	s.stop()
	return s.sched.Shutdown()
}

func (s *Scheduler) processTournaments(ctx context.Context) {
	if _, err := s.jobs.ProcessTournaments(ctx, time.Now(), false); err != nil {
		log.Error("Scheduled tournament processing failed", "error", err)
	}
}

func (s *Scheduler) processCompensations(ctx context.Context) {
	if _, err := s.jobs.ProcessCompensations(ctx, false); err != nil {
		log.Error("Scheduled compensation processing failed", "error", err)
	}
}

func (s *Scheduler) flagStaleWithdrawals(ctx context.Context) {
	if _, err := s.jobs.FlagStaleWithdrawals(ctx, time.Now(), false); err != nil {
		log.Error("Scheduled withdrawal check failed", "error", err)
	}
}
