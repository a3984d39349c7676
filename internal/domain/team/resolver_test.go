package team

import (
	"strings"
	"testing"
)

func TestAliasTableResolve(t *testing.T) {
	t.Parallel()

	table := NewAliasTable(map[string]Identity{
		"Arsenal FC": {ID: "ARS", Name: "Arsenal"},
		"bvb":        {ID: "DOR", Name: "Borussia Dortmund"},
	})

	identity, ok := table.Resolve("arsenal fc")
	if !ok || identity.ID != "ARS" || identity.Name != "Arsenal" {
		t.Fatalf("Resolve(arsenal fc) = (%+v, %v)", identity, ok)
	}
	if _, ok := table.Resolve("  BVB  "); !ok {
		t.Fatal("expected trimmed, case-insensitive lookup to match")
	}
	if _, ok := table.Resolve("Unknown Town"); ok {
		t.Fatal("expected unknown name to miss")
	}
}

func TestReadAliasCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"alias,team_id,team_name",
		"Arsenal FC,ARS,Arsenal",
		"The Gunners,ARS,Arsenal",
		",skipped,row",
		"BVB,DOR,Borussia Dortmund",
	}, "\n")

	table, err := ReadAliasCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadAliasCSV returned error: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 aliases, got %d", table.Len())
	}

	identity, ok := table.Resolve("the gunners")
	if !ok || identity.ID != "ARS" {
		t.Fatalf("Resolve(the gunners) = (%+v, %v)", identity, ok)
	}
}

func TestReadAliasCSVRejectsShortRows(t *testing.T) {
	t.Parallel()

	if _, err := ReadAliasCSV(strings.NewReader("only-one-column\n")); err == nil {
		t.Fatal("expected error for malformed row")
	}
}
