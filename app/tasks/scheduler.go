package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lovlytt/lovlytt/app/cfg"
	"github.com/lovlytt/lovlytt/app/feed"
	"github.com/lovlytt/lovlytt/app/fetch"
	"github.com/lovlytt/lovlytt/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache    *sources.Cache
	markers        MarkerStore
	httpClient     *http.Client
	parser         *feed.Parser
	ingest         IngestSubmitter
	userAgent      string
	interval       time.Duration
	workerCount    int
	pacingInterval int
	coldStartLimit int
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface

	// Per-source poll state: a source is never polled concurrently with
	// itself, and not before its refresh interval has elapsed.
	mu        sync.Mutex
	inflight  map[string]bool
	nextFetch map[string]time.Time
}

func NewScheduler(configCache *sources.Cache, markers MarkerStore, httpClient *http.Client,
	parser *feed.Parser, ingest IngestSubmitter) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache:    configCache,
		markers:        markers,
		httpClient:     httpClient,
		parser:         parser,
		ingest:         ingest,
		userAgent:      cfg.UserAgent,
		interval:       time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:    cfg.WorkerCount,
		pacingInterval: cfg.PacingInterval,
		coldStartLimit: cfg.ColdStartLimit,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 300),
		inflight:       make(map[string]bool),
		nextFetch:      make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueuePollTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueuePollTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueuePollTasks() {
	sourceConfigs := s.configCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	slog.Debug("Checking sources for task scheduling", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		if !s.claimSource(sourceConfig) {
			continue
		}

		pollTask := NewPollFeedTask(sourceConfig.Name, sourceConfig, s.httpClient, s.parser,
			s.markers, s.ingest, s.userAgent, s.pacingInterval, s.coldStartLimit)
		if err := s.EnqueueTask(pollTask); err != nil {
			slog.Warn("Failed to enqueue PollFeedTask", "source", sourceConfig.Name, "error", err)
			s.releaseSource(sourceConfig.Name)
		}
	}
}

// claimSource reports whether a source is due for polling and not already in
// flight, and records the claim. A claimed source stays claimed through any
// retries of its poll task.
func (s *Scheduler) claimSource(sourceConfig *sources.Config) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	if s.inflight[sourceConfig.Name] {
		slog.Debug("Source poll already in flight", "source", sourceConfig.Name)
		return false
	}
	if next, ok := s.nextFetch[sourceConfig.Name]; ok && next.After(now) {
		slog.Debug("Source not due for refresh yet", "source", sourceConfig.Name, "next_fetch_at", next)
		return false
	}

	s.inflight[sourceConfig.Name] = true
	s.nextFetch[sourceConfig.Name] = now.Add(time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second)
	return true
}

func (s *Scheduler) releaseSource(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, name)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err == nil {
		s.taskResolved(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if task.CanRetry() && fetch.IsRetryable(err) {
		task.IncrementRetryCount()
		retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

		go func() {
			time.Sleep(retryDelay)
			select {
			case <-s.ctx.Done():
				slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			default:
				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					s.taskResolved(task)
				}
			}
		}()
		return
	}

	if !fetch.IsRetryable(err) {
		slog.Error("Task failed with non-retryable error", "type", string(task.GetType()), "id", task.GetID(), "error", err)
	} else {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
	}
	s.taskResolved(task)
}

// taskResolved releases the source claim once a poll task has finished for
// good, successfully or not.
func (s *Scheduler) taskResolved(task TaskInterface) {
	if task.GetType() == TaskTypePollFeed {
		s.releaseSource(task.GetSourceName())
	}
}
