package usecase

import (
	"github.com/openfooty/schedsync/internal/domain/match"
	"github.com/openfooty/schedsync/internal/domain/schedule"
)

// Assigner extends the append-only sequence with entries for grouping keys it
// has not seen before. Existing entries are never touched or renumbered.
type Assigner struct {
	family schedule.Family
}

func NewAssigner(family schedule.Family) *Assigner {
	return &Assigner{family: family}
}

type seasonCompetition struct {
	season, competition string
}

// Extend returns the sequence with new entries appended and the count of
// appended entries. Ordinals continue from the persisted per-(season,
// competition) maximum, in the order keys first appear in the batch.
func (a *Assigner) Extend(existing []schedule.SequenceEntry, facts []match.Fact) ([]schedule.SequenceEntry, int) {
	seen := make(map[schedule.GroupKey]struct{}, len(existing))
	maxOrdinal := make(map[seasonCompetition]int)
	for _, entry := range existing {
		seen[entry.Key(a.family)] = struct{}{}
		group := seasonCompetition{entry.Season, entry.Competition}
		if entry.MatchInSeason > maxOrdinal[group] {
			maxOrdinal[group] = entry.MatchInSeason
		}
	}

	out := append([]schedule.SequenceEntry(nil), existing...)
	added := 0
	for _, fact := range facts {
		key := schedule.KeyForFact(a.family, fact)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		group := seasonCompetition{fact.Season, fact.Competition}
		ordinal := maxOrdinal[group] + 1
		maxOrdinal[group] = ordinal

		out = append(out, schedule.SequenceEntry{
			Season:        fact.Season,
			Competition:   fact.Competition,
			HomeTeamID:    fact.HomeTeamID,
			HomeTeam:      fact.HomeTeam,
			AwayTeamID:    fact.AwayTeamID,
			AwayTeam:      fact.AwayTeam,
			MatchRound:    fact.MatchRound,
			MatchStage:    fact.MatchStage,
			MatchInSeason: ordinal,
			MatchID:       schedule.MatchID(fact.Competition, fact.Season, ordinal),
		})
		added++
	}

	return out, added
}
