package usecase

import (
	"context"

	"github.com/openfooty/schedsync/internal/domain/match"
	"github.com/openfooty/schedsync/internal/domain/schedule"
)

// ScheduleFetcher retrieves the raw schedule rows for one competition season.
// Implementations own transport fallback and retry; a returned error is final
// for that competition unit.
type ScheduleFetcher interface {
	FetchSchedule(ctx context.Context, family schedule.Family, competition, season string) ([]match.RawRow, error)
}

// ScheduleStore is one durable store of reconciliation state. WriteRun must
// replace the Sequence, Schedule, Update_Info and Summary partitions
// atomically, and the first-ever write must create the Sequence and Schedule
// partitions with their declared column sets before any data lands.
type ScheduleStore interface {
	Exists(ctx context.Context) (bool, error)
	ReadSequence(ctx context.Context) ([]schedule.SequenceEntry, error)
	ReadSchedule(ctx context.Context) ([]schedule.Record, error)
	WriteRun(ctx context.Context, out schedule.RunOutput) error
}
