package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/openfooty/schedsync/internal/domain/match"
	"github.com/openfooty/schedsync/internal/domain/schedule"
	"github.com/openfooty/schedsync/internal/platform/logging"
)

const (
	taskStatusSuccess = "success"
	taskStatusFailed  = "failed"

	maxSyncWorkers = 4
)

// CompetitionTarget is one competition season to fetch and reconcile.
type CompetitionTarget struct {
	Competition string
	Family      schedule.Family
	Season      string
}

type RunInput struct {
	Targets    []CompetitionTarget
	MaxWorkers int
}

type RunResult struct {
	TaskCount    int          `json:"task_count"`
	SuccessCount int          `json:"success_count"`
	FailedCount  int          `json:"failed_count"`
	WorkerCount  int          `json:"worker_count"`
	Tasks        []TaskResult `json:"tasks"`
}

// TaskResult reports one family run. A family is the unit of success or
// failure: its competitions share a store and reconcile as one batch.
type TaskResult struct {
	Family       schedule.Family `json:"family"`
	Competitions []string        `json:"competitions"`
	Status       string          `json:"status"`
	Records      int             `json:"records"`
	NewMatches   int             `json:"new_matches"`
	Modified     int             `json:"modified"`
	DurationMs   int64           `json:"duration_ms"`
	Message      string          `json:"message,omitempty"`
}

// SyncService runs the full pipeline per competition family: fetch every
// configured competition, normalize, assign identities, reconcile against the
// family store, persist. Families are independent and one family's failure
// never blocks another.
type SyncService struct {
	fetcher    ScheduleFetcher
	stores     map[schedule.Family]ScheduleStore
	normalizer *Normalizer
	logger     *logging.Logger
	now        func() time.Time
}

func NewSyncService(
	fetcher ScheduleFetcher,
	stores map[schedule.Family]ScheduleStore,
	normalizer *Normalizer,
	logger *logging.Logger,
	now func() time.Time,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &SyncService{
		fetcher:    fetcher,
		stores:     stores,
		normalizer: normalizer,
		logger:     logger,
		now:        now,
	}
}

func (s *SyncService) Run(ctx context.Context, input RunInput) (RunResult, error) {
	if s.fetcher == nil || s.normalizer == nil {
		return RunResult{}, fmt.Errorf("%w: sync service is not fully configured", ErrDependencyUnavailable)
	}
	if len(input.Targets) == 0 {
		return RunResult{}, fmt.Errorf("%w: at least one competition target is required", ErrInvalidInput)
	}

	tasks := groupTargetsByFamily(input.Targets)
	for _, task := range tasks {
		if _, ok := s.stores[task.family]; !ok {
			return RunResult{}, fmt.Errorf("%w: no store configured for family %q", ErrDependencyUnavailable, task.family)
		}
	}

	workerCount := normalizeWorkerCount(input.MaxWorkers, len(tasks))
	result := RunResult{
		TaskCount:   len(tasks),
		WorkerCount: workerCount,
		Tasks:       make([]TaskResult, 0, len(tasks)),
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RunResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan TaskResult, len(tasks))
	var successCount, failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.runFamily(ctx, task.family, task.targets)
			row.DurationMs = time.Since(start).Milliseconds()

			if row.Status == taskStatusSuccess {
				successCount.Add(1)
			} else {
				failedCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return RunResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].Family < result.Tasks[j].Family
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	return result, nil
}

type familyTask struct {
	family  schedule.Family
	targets []CompetitionTarget
}

func groupTargetsByFamily(targets []CompetitionTarget) []familyTask {
	order := make([]schedule.Family, 0, 2)
	byFamily := make(map[schedule.Family][]CompetitionTarget)
	for _, target := range targets {
		if _, ok := byFamily[target.Family]; !ok {
			order = append(order, target.Family)
		}
		byFamily[target.Family] = append(byFamily[target.Family], target)
	}

	tasks := make([]familyTask, 0, len(order))
	for _, family := range order {
		tasks = append(tasks, familyTask{family: family, targets: byFamily[family]})
	}
	return tasks
}

// runFamily fetches every competition of the family and reconciles them as
// one batch. Any fetch failure fails the whole family before the store is
// touched: a partial batch would make the untouched competitions' records
// look withdrawn.
func (s *SyncService) runFamily(ctx context.Context, family schedule.Family, targets []CompetitionTarget) TaskResult {
	row := TaskResult{
		Family:       family,
		Competitions: competitionNames(targets),
		Status:       taskStatusFailed,
	}

	logger := s.logger.With("family", family, "competitions", strings.Join(row.Competitions, ","))

	var rows []match.RawRow
	for _, target := range targets {
		fetched, err := s.fetcher.FetchSchedule(ctx, family, target.Competition, target.Season)
		if err != nil {
			logger.Error("fetch schedule failed", "competition", target.Competition, "season", target.Season, "error", err)
			row.Message = fmt.Sprintf("fetch schedule %s %s: %v", target.Competition, target.Season, err)
			return row
		}
		rows = append(rows, fetched...)
	}

	facts, err := s.normalizer.NormalizeBatch(family, rows)
	if err != nil {
		logger.Error("normalize schedule failed", "error", err)
		row.Message = fmt.Sprintf("normalize schedule: %v", err)
		return row
	}

	store := s.stores[family]
	exists, err := store.Exists(ctx)
	if err != nil {
		row.Message = fmt.Sprintf("check store: %v", err)
		return row
	}

	var seq []schedule.SequenceEntry
	var prior []schedule.Record
	if exists {
		if seq, err = store.ReadSequence(ctx); err != nil {
			logger.Error("read sequence failed", "error", err)
			row.Message = fmt.Sprintf("read sequence: %v", err)
			return row
		}
		if prior, err = store.ReadSchedule(ctx); err != nil {
			logger.Error("read schedule failed", "error", err)
			row.Message = fmt.Sprintf("read schedule: %v", err)
			return row
		}
	}
	initial := !exists

	extended, added := NewAssigner(family).Extend(seq, facts)
	reconciled := NewReconciler(family, s.now).Reconcile(extended, facts, prior, initial)

	if err := store.WriteRun(ctx, schedule.RunOutput{
		Sequence:   extended,
		Schedule:   reconciled.Schedule,
		UpdateInfo: reconciled.UpdateInfo,
		Summary:    reconciled.Summary,
	}); err != nil {
		logger.Error("persist run failed", "error", err)
		row.Message = fmt.Sprintf("persist run: %v", err)
		return row
	}

	logger.Info("schedule reconciled",
		"rows", len(rows),
		"records", len(reconciled.Schedule),
		"new_matches", added,
		"modified", reconciled.Modified,
		"initial", initial,
	)

	row.Status = taskStatusSuccess
	row.Records = len(reconciled.Schedule)
	row.NewMatches = added
	row.Modified = reconciled.Modified
	return row
}

func competitionNames(targets []CompetitionTarget) []string {
	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, target.Competition)
	}
	sort.Strings(names)
	return names
}

func normalizeWorkerCount(value, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > maxSyncWorkers {
		value = maxSyncWorkers
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
