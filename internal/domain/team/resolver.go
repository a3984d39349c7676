package team

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Identity is a resolved team: a stable code plus the canonical display name.
type Identity struct {
	ID   string
	Name string
}

// Resolver maps a raw scraped team name to a stable identity. Lookups are
// case-insensitive. A false return means the name is unknown; callers keep the
// row and leave the identity fields absent.
type Resolver interface {
	Resolve(rawName string) (Identity, bool)
}

// AliasTable is an in-memory Resolver backed by an alias mapping.
type AliasTable struct {
	byAlias map[string]Identity
}

func NewAliasTable(entries map[string]Identity) *AliasTable {
	byAlias := make(map[string]Identity, len(entries))
	for alias, identity := range entries {
		byAlias[normalizeAlias(alias)] = identity
	}
	return &AliasTable{byAlias: byAlias}
}

func (t *AliasTable) Resolve(rawName string) (Identity, bool) {
	if t == nil {
		return Identity{}, false
	}
	identity, ok := t.byAlias[normalizeAlias(rawName)]
	return identity, ok
}

func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byAlias)
}

// LoadAliasCSV reads an alias file with columns alias,team_id,team_name. A
// header row is skipped when the first cell is the literal "alias".
func LoadAliasCSV(path string) (*AliasTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open team alias file: %w", err)
	}
	defer f.Close()

	table, err := ReadAliasCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read team alias file %s: %w", path, err)
	}
	return table, nil
}

func ReadAliasCSV(r io.Reader) (*AliasTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	entries := make(map[string]Identity)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: expected alias,team_id,team_name", line)
		}
		alias := strings.TrimSpace(record[0])
		if line == 1 && strings.EqualFold(alias, "alias") {
			continue
		}
		if alias == "" {
			continue
		}
		entries[alias] = Identity{
			ID:   strings.TrimSpace(record[1]),
			Name: strings.TrimSpace(record[2]),
		}
	}

	return NewAliasTable(entries), nil
}

func normalizeAlias(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
