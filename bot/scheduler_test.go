package bot

import (
	"community-bot/model"
	"community-bot/rulestore"
	"community-bot/utils/testutil"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *model.Config {
	return &model.Config{
		BackupKeep:            2,
		LogRetention:          90 * 24 * time.Hour,
		TicketAutoClose:       72 * time.Hour,
		MaxOpenTicketsPerUser: 3,
		RulesSearchLimit:      10,
	}
}

func TestSchedulerRunsTasksUntilStopped(t *testing.T) {
	var fast, slow atomic.Int32
	s := newScheduler([]Task{
		{Name: "fast", Interval: 5 * time.Millisecond, Run: func(context.Context) { fast.Add(1) }},
		{Name: "slow", Interval: time.Hour, Run: func(context.Context) { slow.Add(1) }},
	})
	s.Start(context.Background())

	require.Eventually(t, func() bool { return fast.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	after := fast.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, fast.Load())
	assert.Zero(t, slow.Load())
}

func TestSchedulerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newScheduler([]Task{{Name: "noop", Interval: time.Millisecond, Run: func(context.Context) {}}})
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task loop did not exit after cancel")
	}
	s.Stop()
}

func TestMaintenanceTasksSkipDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.ExpirySweepInterval = time.Minute
	cfg.BackupInterval = 6 * time.Hour
	svc := NewServices(cfg, testutil.OpenDB(t), nil, nil)

	var names []string
	extra := []Task{
		{Name: "report", Interval: time.Hour, Run: func(context.Context) {}},
		{Name: "disabled-report", Run: func(context.Context) {}},
	}
	for _, task := range maintenanceTasks(svc, nil, extra...) {
		names = append(names, task.Name)
	}
	assert.ElementsMatch(t, []string{"expiry-sweep", "ticket-autoclose", "cooldown-prune", "backup", "report"}, names)
}

func TestPrepareSeedsAndIndexes(t *testing.T) {
	svc := NewServices(testConfig(), testutil.OpenDB(t), nil, nil)
	require.NoError(t, svc.Prepare(context.Background()))
	require.NoError(t, svc.Prepare(context.Background()))

	assert.Equal(t, len(rulestore.SampleRules), svc.Index.Len())
	results := svc.Index.Search("traffic laws", "")
	require.NotEmpty(t, results)
	assert.Equal(t, "VH001", results[0].Rule.ID)
}
