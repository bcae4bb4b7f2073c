package bot

import (
	"community-bot/model"
	"community-bot/utils/database"
	"context"
	"log"
	"sync"
	"time"
)

// ticketCheckInterval is how often idle tickets are looked for.
const ticketCheckInterval = time.Hour

// Task is a piece of periodic work.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Scheduler runs each task on its own ticker until stopped.
type Scheduler struct {
	tasks  []Task
	done   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewScheduler creates the maintenance schedule for svc plus any extra tasks.
// onClosed receives tickets closed for inactivity.
func NewScheduler(svc *Services, onClosed func([]model.Ticket), extra ...Task) *Scheduler {
	return newScheduler(maintenanceTasks(svc, onClosed, extra...))
}

func newScheduler(tasks []Task) *Scheduler {
	return &Scheduler{tasks: tasks, done: make(chan struct{})}
}

// maintenanceTasks lists the periodic jobs. A job whose interval is not
// positive is left out.
func maintenanceTasks(svc *Services, onClosed func([]model.Ticket), extra ...Task) []Task {
	cfg := svc.Config
	all := []Task{
		{Name: "expiry-sweep", Interval: cfg.ExpirySweepInterval, Run: func(ctx context.Context) {
			svc.Maintenance.SweepExpired(ctx)
		}},
		{Name: "ticket-autoclose", Interval: ticketCheckInterval, Run: func(ctx context.Context) {
			closed, err := svc.Maintenance.AutoCloseTickets(ctx)
			if err == nil && len(closed) > 0 && onClosed != nil {
				onClosed(closed)
			}
		}},
		{Name: "cleanup", Interval: cfg.CleanupInterval, Run: func(ctx context.Context) {
			svc.Maintenance.Cleanup(ctx)
		}},
		{Name: "cooldown-prune", Interval: time.Hour, Run: func(context.Context) {
			if n := svc.PunishCooldown.Prune(); n > 0 {
				log.Printf("Pruned %d punish cooldowns", n)
			}
		}},
	}
	if svc.DB.DriverName() == database.DriverSQLite {
		all = append(all, Task{Name: "backup", Interval: cfg.BackupInterval, Run: func(ctx context.Context) {
			svc.Maintenance.BackupDatabase(ctx)
		}})
	}
	all = append(all, extra...)

	tasks := all[:0]
	for _, t := range all {
		if t.Interval > 0 {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Start launches one goroutine per task.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(len(s.tasks))
	for _, t := range s.tasks {
		go s.loop(ctx, t)
	}
	log.Printf("Scheduler started with %d tasks", len(s.tasks))
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	defer s.wg.Done()
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Printf("Running scheduled task %s...", t.Name)
			t.Run(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop terminates all scheduled tasks and waits for running ones to finish.
// It is safe to call more than once, and before Start.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		log.Println("Stopping scheduler...")
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		log.Println("Scheduler stopped.")
	})
}
