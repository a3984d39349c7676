package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/openfooty/schedsync/internal/domain/schedule"
	"github.com/openfooty/schedsync/internal/usecase"
)

func testRun() schedule.RunOutput {
	return schedule.RunOutput{
		Sequence: []schedule.SequenceEntry{{
			Season: "2024/25", Competition: "epl",
			HomeTeamID: "ARS", AwayTeamID: "CHE",
			MatchRound: "1. Round", MatchStage: "League",
			MatchInSeason: 1, MatchID: "epl_2024/25_1",
		}},
		Schedule: []schedule.Record{{
			MatchID:       "epl_2024/25_1",
			MatchInSeason: 1,
			Note:          "Initial scrape",
		}},
		UpdateInfo: []schedule.CountRow{{Season: "2024/25", Competition: "epl", MatchRound: "1. Round", Count: 1}},
		Summary:    []schedule.CountRow{{Season: "2024/25", Competition: "epl", MatchRound: "1. Round", Count: 1}},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schedule_league.json")
	s := NewFileStore(path)

	exists, err := s.Exists(ctx)
	if err != nil || exists {
		t.Fatalf("Exists before write = (%v, %v)", exists, err)
	}
	if _, err := s.ReadSequence(ctx); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first write, got %v", err)
	}

	if err := s.WriteRun(ctx, testRun()); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	exists, err = s.Exists(ctx)
	if err != nil || !exists {
		t.Fatalf("Exists after write = (%v, %v)", exists, err)
	}

	seq, err := s.ReadSequence(ctx)
	if err != nil {
		t.Fatalf("ReadSequence: %v", err)
	}
	if len(seq) != 1 || seq[0].MatchID != "epl_2024/25_1" {
		t.Fatalf("sequence = %+v", seq)
	}

	recs, err := s.ReadSchedule(ctx)
	if err != nil {
		t.Fatalf("ReadSchedule: %v", err)
	}
	if len(recs) != 1 || recs[0].Note != "Initial scrape" {
		t.Fatalf("schedule = %+v", recs)
	}
}

func TestFileStoreDeclaresColumnSets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schedule_cup.json")
	s := NewFileStore(path)

	if err := s.WriteRun(ctx, schedule.RunOutput{}); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}
	var wb workbook
	if err := sonic.Unmarshal(data, &wb); err != nil {
		t.Fatalf("decode store file: %v", err)
	}

	if len(wb.Columns[schedule.PartitionSequence]) != len(schedule.SequenceColumns) {
		t.Fatalf("sequence columns = %v", wb.Columns[schedule.PartitionSequence])
	}
	if len(wb.Columns[schedule.PartitionSchedule]) != len(schedule.ScheduleColumns) {
		t.Fatalf("schedule columns = %v", wb.Columns[schedule.PartitionSchedule])
	}
	if wb.Sequence == nil || wb.Schedule == nil || wb.UpdateInfo == nil || wb.Summary == nil {
		t.Fatal("expected empty partitions to be present, not null")
	}
}

func TestFileStoreReplacesPartitionsOnEveryRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "schedule_league.json"))

	if err := s.WriteRun(ctx, testRun()); err != nil {
		t.Fatalf("first WriteRun: %v", err)
	}

	next := testRun()
	next.Sequence = append(next.Sequence, schedule.SequenceEntry{
		Season: "2024/25", Competition: "epl",
		HomeTeamID: "LIV", AwayTeamID: "MUN",
		MatchRound: "1. Round", MatchStage: "League",
		MatchInSeason: 2, MatchID: "epl_2024/25_2",
	})
	next.UpdateInfo = nil
	if err := s.WriteRun(ctx, next); err != nil {
		t.Fatalf("second WriteRun: %v", err)
	}

	seq, err := s.ReadSequence(ctx)
	if err != nil {
		t.Fatalf("ReadSequence: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("sequence rows = %d, want 2", len(seq))
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schedule_league.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, err := s.ReadSequence(context.Background()); !errors.Is(err, usecase.ErrStoreCorrupt) {
		t.Fatalf("expected ErrStoreCorrupt, got %v", err)
	}
}
