package usecase

import (
	"sort"
	"time"

	"github.com/openfooty/schedsync/internal/domain/match"
	"github.com/openfooty/schedsync/internal/domain/schedule"
)

// Reconciler merges the latest normalized batch into the persisted schedule.
// The schedule is a view over the sequence: every run recomputes it from the
// current batch, carrying only modified_time forward from the prior snapshot.
type Reconciler struct {
	family schedule.Family
	now    func() time.Time
}

func NewReconciler(family schedule.Family, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{family: family, now: now}
}

type ReconcileResult struct {
	Schedule   []schedule.Record
	UpdateInfo []schedule.CountRow
	Summary    []schedule.CountRow
	Modified   int
}

// Reconcile left-joins the sequence with the batch facts and diffs the result
// against the prior snapshot. A row counts as modified only when its status
// changed; a score correction under an unchanged status is not flagged.
func (r *Reconciler) Reconcile(seq []schedule.SequenceEntry, facts []match.Fact, prior []schedule.Record, initial bool) ReconcileResult {
	today := r.today()

	factByKey := make(map[schedule.GroupKey]match.Fact, len(facts))
	for _, fact := range facts {
		key := schedule.KeyForFact(r.family, fact)
		if _, ok := factByKey[key]; !ok {
			factByKey[key] = fact
		}
	}

	priorByID := make(map[string]schedule.Record, len(prior))
	for _, rec := range prior {
		priorByID[rec.MatchID] = rec
	}

	result := ReconcileResult{Schedule: make([]schedule.Record, 0, len(seq))}
	changed := make([]bool, 0, len(seq))
	for _, entry := range seq {
		rec := schedule.Record{
			MatchID:       entry.MatchID,
			MatchInSeason: entry.MatchInSeason,
		}

		fact, observed := factByKey[entry.Key(r.family)]
		old, hadPrior := priorByID[entry.MatchID]

		if observed {
			rec.Fact = fact
		} else {
			rec.Fact = unobservedFact(entry)
			if hadPrior && old.MatchRound != "" {
				rec.MatchRound = old.MatchRound
			}
		}

		oldStatus := ""
		if hadPrior {
			oldStatus = old.Status
		}
		modified := rec.Status != oldStatus && !(rec.Status == "" && oldStatus == "")

		switch {
		case initial:
			rec.ModifiedTime = &today
			rec.Note = "Initial scrape"
		case modified:
			rec.ModifiedTime = &today
			rec.Note = "Modified"
		case hadPrior:
			// Only the timestamp survives a quiet run. The note marks the run
			// that changed the row, so it resets to absent.
			rec.ModifiedTime = old.ModifiedTime
		}

		if modified && !initial {
			result.Modified++
		}
		result.Schedule = append(result.Schedule, rec)
		if initial {
			changed = append(changed, rec.Status != "")
		} else {
			changed = append(changed, modified)
		}
	}

	result.UpdateInfo = countByRound(result.Schedule, func(i int, _ schedule.Record) bool {
		return changed[i]
	})
	result.Summary = countByRound(result.Schedule, func(_ int, rec schedule.Record) bool {
		return rec.Status != ""
	})

	return result
}

// unobservedFact carries only the identity half of a record whose fixture was
// not in the current batch. Fact fields stay absent per left-join semantics.
func unobservedFact(entry schedule.SequenceEntry) match.Fact {
	fact := match.Fact{
		Season:      entry.Season,
		Competition: entry.Competition,
		HomeTeamID:  entry.HomeTeamID,
		HomeTeam:    entry.HomeTeam,
		AwayTeamID:  entry.AwayTeamID,
		AwayTeam:    entry.AwayTeam,
		MatchRound:  entry.MatchRound,
		MatchStage:  entry.MatchStage,
	}
	if fact.HomeTeam != "" && fact.AwayTeam != "" {
		fact.Match = fact.HomeTeam + " vs. " + fact.AwayTeam
	}
	return fact
}

func countByRound(records []schedule.Record, include func(int, schedule.Record) bool) []schedule.CountRow {
	type roundKey struct {
		season, competition, round string
	}
	counts := make(map[roundKey]int)
	for i, rec := range records {
		if !include(i, rec) {
			continue
		}
		counts[roundKey{rec.Season, rec.Competition, rec.MatchRound}]++
	}

	out := make([]schedule.CountRow, 0, len(counts))
	for key, count := range counts {
		out = append(out, schedule.CountRow{
			Season:      key.season,
			Competition: key.competition,
			MatchRound:  key.round,
			Count:       count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		if out[i].Competition != out[j].Competition {
			return out[i].Competition < out[j].Competition
		}
		return out[i].MatchRound < out[j].MatchRound
	})
	return out
}

func (r *Reconciler) today() time.Time {
	now := r.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
