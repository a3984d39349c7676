package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/openfooty/schedsync/internal/domain/schedule"
	"github.com/openfooty/schedsync/internal/usecase"
)

// workbook is the on-disk layout of a file store: the four partitions plus the
// declared column set of each, so an empty partition still carries its shape.
type workbook struct {
	Columns    map[string][]string      `json:"columns"`
	Sequence   []schedule.SequenceEntry `json:"Sequence"`
	Schedule   []schedule.Record        `json:"Schedule"`
	UpdateInfo []schedule.CountRow      `json:"Update_Info"`
	Summary    []schedule.CountRow      `json:"Summary"`
}

func newWorkbook() workbook {
	return workbook{
		Columns: map[string][]string{
			schedule.PartitionSequence: schedule.SequenceColumns,
			schedule.PartitionSchedule: schedule.ScheduleColumns,
		},
		Sequence:   []schedule.SequenceEntry{},
		Schedule:   []schedule.Record{},
		UpdateInfo: []schedule.CountRow{},
		Summary:    []schedule.CountRow{},
	}
}

// FileStore keeps one competition family's reconciliation state in a single
// JSON file. Writes go through a temp file and rename, so readers never see a
// half-written run.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Exists(context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat store file %s: %w", s.path, err)
}

func (s *FileStore) ReadSequence(ctx context.Context) ([]schedule.SequenceEntry, error) {
	wb, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return wb.Sequence, nil
}

func (s *FileStore) ReadSchedule(ctx context.Context) ([]schedule.Record, error) {
	wb, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return wb.Schedule, nil
}

func (s *FileStore) WriteRun(ctx context.Context, out schedule.RunOutput) error {
	exists, err := s.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.write(newWorkbook()); err != nil {
			return err
		}
	}

	wb := newWorkbook()
	if out.Sequence != nil {
		wb.Sequence = out.Sequence
	}
	if out.Schedule != nil {
		wb.Schedule = out.Schedule
	}
	if out.UpdateInfo != nil {
		wb.UpdateInfo = out.UpdateInfo
	}
	if out.Summary != nil {
		wb.Summary = out.Summary
	}
	return s.write(wb)
}

func (s *FileStore) read(context.Context) (workbook, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return workbook{}, fmt.Errorf("%w: store file %s", usecase.ErrNotFound, s.path)
		}
		return workbook{}, fmt.Errorf("read store file %s: %w", s.path, err)
	}

	var wb workbook
	if err := sonic.Unmarshal(data, &wb); err != nil {
		return workbook{}, fmt.Errorf("%w: decode store file %s: %v", usecase.ErrStoreCorrupt, s.path, err)
	}
	return wb, nil
}

func (s *FileStore) write(wb workbook) error {
	data, err := sonic.MarshalIndent(wb, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace store file %s: %w", s.path, err)
	}
	return nil
}
