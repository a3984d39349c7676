package schedule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/openfooty/schedsync/internal/domain/match"
)

// Family selects the identity grouping policy for a competition.
type Family string

const (
	FamilyLeague Family = "league"
	FamilyCup    Family = "cup"
)

func ParseFamily(v string) (Family, error) {
	switch Family(v) {
	case FamilyLeague, FamilyCup:
		return Family(v), nil
	default:
		return "", fmt.Errorf("unknown competition family %q", v)
	}
}

// GroupKey identifies one real-world match across re-scrapes. Bucket is the
// match round for leagues and the match stage for cups: the two legs of a cup
// tie share a stage but differ in round, so stage is the stable part.
type GroupKey struct {
	Season      string
	Competition string
	HomeTeamID  string
	AwayTeamID  string
	Bucket      string
}

func KeyForFact(family Family, fact match.Fact) GroupKey {
	key := GroupKey{
		Season:      fact.Season,
		Competition: fact.Competition,
		HomeTeamID:  fact.HomeTeamID,
		AwayTeamID:  fact.AwayTeamID,
		Bucket:      fact.MatchRound,
	}
	if family == FamilyCup {
		key.Bucket = fact.MatchStage
	}
	return key
}

// SequenceEntry is one row of the append-only Sequence partition. Key fields
// are never mutated and ordinals are never reassigned.
type SequenceEntry struct {
	Season        string `json:"season"`
	Competition   string `json:"competition"`
	HomeTeamID    string `json:"hometeam_id"`
	HomeTeam      string `json:"hometeam"`
	AwayTeamID    string `json:"awayteam_id"`
	AwayTeam      string `json:"awayteam"`
	MatchRound    string `json:"match_round"`
	MatchStage    string `json:"match_stage"`
	MatchInSeason int    `json:"Match_in_Season"`
	MatchID       string `json:"match_id"`
}

func (e SequenceEntry) Key(family Family) GroupKey {
	key := GroupKey{
		Season:      e.Season,
		Competition: e.Competition,
		HomeTeamID:  e.HomeTeamID,
		AwayTeamID:  e.AwayTeamID,
		Bucket:      e.MatchRound,
	}
	if family == FamilyCup {
		key.Bucket = e.MatchStage
	}
	return key
}

// MatchID joins competition, season and ordinal with underscores.
func MatchID(competition, season string, ordinal int) string {
	return competition + "_" + season + "_" + strconv.Itoa(ordinal)
}

// Record is one row of the Schedule partition: the sequence identity joined
// with the latest observed fact. Everything except ModifiedTime and Note is
// recomputed from the current batch on every run.
type Record struct {
	MatchID string `json:"match_id"`
	match.Fact
	MatchInSeason int        `json:"Match_in_Season"`
	ModifiedTime  *time.Time `json:"modified_time"`
	Note          string     `json:"note"`
}

// CountRow is one line of the Update_Info / Summary report partitions.
type CountRow struct {
	Season      string `json:"season"`
	Competition string `json:"competition"`
	MatchRound  string `json:"match_round"`
	Count       int    `json:"count"`
}

// RunOutput is the full persisted state of one reconciliation run. The store
// adapter must replace all four partitions atomically.
type RunOutput struct {
	Sequence   []SequenceEntry
	Schedule   []Record
	UpdateInfo []CountRow
	Summary    []CountRow
}

// Partition names in the persisted store.
const (
	PartitionSequence   = "Sequence"
	PartitionSchedule   = "Schedule"
	PartitionUpdateInfo = "Update_Info"
	PartitionSummary    = "Summary"
)

// SequenceColumns is the declared column set of an empty Sequence partition.
var SequenceColumns = []string{
	"season", "competition",
	"hometeam_id", "hometeam", "awayteam_id", "awayteam",
	"match_round", "match_stage",
	"Match_in_Season", "match_id",
}

// ScheduleColumns is the declared column set of an empty Schedule partition.
var ScheduleColumns = []string{
	"match_id",
	"season", "competition",
	"hometeam_id", "hometeam", "awayteam_id", "awayteam", "match",
	"match_round", "match_stage", "match_group", "match_leg",
	"kickoff_time", "finish_time", "live_timeslot",
	"bj_kickoff", "bj_finish", "match_dur_s",
	"hometeam_score", "awayteam_score", "hometeam_result", "awayteam_result", "status",
	"date", "match_url", "home_url", "away_url",
	"modified_time", "Match_in_Season", "note",
}
