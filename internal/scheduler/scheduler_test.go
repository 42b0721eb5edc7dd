package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group-lead-scraper-go/internal/config"
	"group-lead-scraper-go/internal/metrics"
	"group-lead-scraper-go/internal/models"
	"group-lead-scraper-go/internal/pipeline"
)

type stubRunner struct {
	mu      sync.Mutex
	calls   int
	groups  []models.Group
	release chan struct{}
	started chan struct{}
}

func (r *stubRunner) RunBatch(ctx context.Context, groups []models.Group) pipeline.BatchReport {
	r.mu.Lock()
	r.calls++
	r.groups = groups
	r.mu.Unlock()

	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}

	now := time.Now()
	report := pipeline.BatchReport{StartedAt: now, FinishedAt: now, Cutoff: "2024-05-01"}
	for _, g := range groups {
		report.Groups = append(report.Groups, pipeline.GroupReport{GroupURL: g.URL})
	}
	return report
}

var testGroups = []models.Group{{URL: "g1", MaxPosts: 10, ViewOption: models.SortChronological}}

func TestSchedulerRestart(t *testing.T) {
	sched := NewScheduler(&config.SchedulerConfig{IntervalMinutes: 60}, &stubRunner{}, testGroups, metrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	assert.Error(t, sched.Start(), "double start must fail")

	require.NoError(t, sched.Stop())
	assert.False(t, sched.IsRunning())
	assert.True(t, sched.GetNextRun().IsZero())

	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	assert.NoError(t, sched.ctx.Err(), "scheduler context should be active after restart")
	require.NoError(t, sched.Stop())
}

func TestSchedulerRejectsBadInterval(t *testing.T) {
	sched := NewScheduler(&config.SchedulerConfig{IntervalMinutes: 0}, &stubRunner{}, testGroups, nil)
	assert.Error(t, sched.Start())
	assert.False(t, sched.IsRunning())
}

func TestRunOnce(t *testing.T) {
	runner := &stubRunner{}
	sched := NewScheduler(&config.SchedulerConfig{IntervalMinutes: 60}, runner, testGroups, nil)
	assert.Nil(t, sched.LastReport())

	report, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Groups, 1)
	assert.Equal(t, 1, runner.calls)
	require.NotNil(t, sched.LastReport())
	assert.Equal(t, "g1", sched.LastReport().Groups[0].GroupURL)
}

func TestRunOnceWhileBatchInProgress(t *testing.T) {
	runner := &stubRunner{release: make(chan struct{}), started: make(chan struct{}, 1)}
	sched := NewScheduler(&config.SchedulerConfig{IntervalMinutes: 60}, runner, testGroups, nil)

	done := make(chan error, 1)
	go func() {
		_, err := sched.RunOnce(context.Background())
		done <- err
	}()
	<-runner.started

	_, err := sched.RunOnce(context.Background())
	assert.True(t, errors.Is(err, ErrBatchInProgress))

	close(runner.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, runner.calls)
}

func TestSetGroups(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	runner := &stubRunner{}
	sched := NewScheduler(&config.SchedulerConfig{IntervalMinutes: 60}, runner, testGroups, m)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfiguredGroups))

	next := []models.Group{
		{URL: "g2", MaxPosts: 5, ViewOption: models.SortTopPosts},
		{URL: "g3", MaxPosts: 5, ViewOption: models.SortRecentActivity},
	}
	sched.SetGroups(next)
	next[0].URL = "mutated"

	assert.Equal(t, "g2", sched.Groups()[0].URL)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConfiguredGroups))

	_, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, runner.groups, 2)
	assert.Equal(t, "g3", runner.groups[1].URL)
}

type blockingRunner struct {
	started chan struct{}
}

func (r *blockingRunner) RunBatch(ctx context.Context, groups []models.Group) pipeline.BatchReport {
	started := time.Now()
	select {
	case r.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return pipeline.BatchReport{StartedAt: started, FinishedAt: time.Now()}
}

func TestStopDuringScheduledBatch(t *testing.T) {
	runner := &blockingRunner{started: make(chan struct{}, 1)}
	sched := NewScheduler(&config.SchedulerConfig{IntervalMinutes: 60}, runner, testGroups, nil)
	require.NoError(t, sched.Start())

	_, err := sched.cron.AddFunc("@every 1s", sched.runScheduledBatch)
	require.NoError(t, err)

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled batch did not start")
	}

	status := make(chan bool, 1)
	go func() { status <- sched.IsRunning() }()
	select {
	case running := <-status:
		assert.True(t, running)
	case <-time.After(time.Second):
		t.Fatal("IsRunning blocked during a batch")
	}

	begin := time.Now()
	require.NoError(t, sched.Stop())
	assert.Less(t, time.Since(begin), 5*time.Second)
	assert.False(t, sched.IsRunning())
	assert.NotNil(t, sched.LastReport(), "cancelled batch should still record its report")
}
