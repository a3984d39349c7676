package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/openfooty/schedsync/internal/domain/match"
	"github.com/openfooty/schedsync/internal/domain/schedule"
)

// classifyFunc fills the family-specific round/stage/group/leg fields of a
// normalized batch in place. dates carries the raw (unadjusted) calendar date
// of each row, which drives round numbering and leg ordering.
type classifyFunc func(rows []match.RawRow, dates []time.Time, facts []match.Fact)

var roundClassifiers = map[schedule.Family]classifyFunc{
	schedule.FamilyLeague: classifyLeagueRounds,
	schedule.FamilyCup:    classifyCupRounds,
}

func classifyLeagueRounds(rows []match.RawRow, _ []time.Time, facts []match.Fact) {
	for i := range facts {
		facts[i].MatchRound = rows[i].Round
		facts[i].MatchStage = "League"
	}
}

var knockoutRoundRe = regexp.MustCompile(`(?i)semi|quarter|play-off|round of|third`)

func classifyCupRounds(rows []match.RawRow, dates []time.Time, facts []match.Fact) {
	numberGroupPhaseRounds(rows, dates, facts)

	for i := range facts {
		raw := rows[i].Round
		if !isGroupPhase(raw) {
			facts[i].MatchRound = raw
		}
		facts[i].MatchStage = cupStage(raw)
		if strings.Contains(raw, "Group") {
			facts[i].MatchGroup = raw
		}
	}

	labelKnockoutLegs(rows, dates, facts)
}

func isGroupPhase(round string) bool {
	return strings.Contains(round, "Group") || strings.Contains(round, "League phase")
}

// cupStage maps a raw round label to a stage. Generic numbered knockout rounds
// ("Round 3") carry no stage; "Round of N" and named rounds keep their label.
func cupStage(round string) string {
	switch {
	case isGroupPhase(round):
		return "Group Stage"
	case strings.HasPrefix(round, "Round of"):
		return round
	case strings.HasPrefix(round, "Round "):
		return ""
	default:
		return round
	}
}

// numberGroupPhaseRounds walks each (competition, season, raw round) partition
// in date/kickoff order and starts a new round number whenever consecutive
// matches sit more than two days apart. Only group-phase rows use the number.
func numberGroupPhaseRounds(rows []match.RawRow, dates []time.Time, facts []match.Fact) {
	type partKey struct {
		competition, season, round string
	}
	order := make([]partKey, 0, 8)
	members := make(map[partKey][]int)
	for i, row := range rows {
		key := partKey{row.Competition, row.Season, row.Round}
		if _, ok := members[key]; !ok {
			order = append(order, key)
		}
		members[key] = append(members[key], i)
	}

	for _, key := range order {
		idx := append([]int(nil), members[key]...)
		sortByKickoff(idx, dates, facts)

		roundNum := 1
		for pos, i := range idx {
			if pos > 0 {
				prev := idx[pos-1]
				if dates[i].Sub(dates[prev]) > 48*time.Hour {
					roundNum++
				}
			}
			if isGroupPhase(rows[i].Round) {
				facts[i].MatchRound = fmt.Sprintf("Round %02d", roundNum)
			}
		}
	}
}

// labelKnockoutLegs numbers the legs of multi-match knockout ties. A tie is
// the unordered team pair within one (competition, season, raw round); single
// matches stay unlabeled.
func labelKnockoutLegs(rows []match.RawRow, dates []time.Time, facts []match.Fact) {
	type tieKey struct {
		competition, season, round string
		teamA, teamB               string
	}
	ties := make(map[tieKey][]int)
	for i, row := range rows {
		if !knockoutRoundRe.MatchString(row.Round) {
			continue
		}
		a := teamPairKey(facts[i].HomeTeamID, row.HomeTeam)
		b := teamPairKey(facts[i].AwayTeamID, row.AwayTeam)
		if a > b {
			a, b = b, a
		}
		key := tieKey{row.Competition, row.Season, row.Round, a, b}
		ties[key] = append(ties[key], i)
	}

	for _, idx := range ties {
		if len(idx) < 2 {
			continue
		}
		sortByKickoff(idx, dates, facts)
		for pos, i := range idx {
			label := legLabel(pos + 1)
			facts[i].MatchLeg = label
			facts[i].MatchRound = rows[i].Round + " - " + label
		}
	}
}

func teamPairKey(teamID, rawName string) string {
	if teamID != "" {
		return teamID
	}
	return strings.ToLower(rawName)
}

func legLabel(n int) string {
	switch n {
	case 1:
		return "1st Leg"
	case 2:
		return "2nd Leg"
	case 3:
		return "3rd Leg"
	default:
		return fmt.Sprintf("%dth Leg", n)
	}
}

// sortByKickoff orders row indices by raw date, then kickoff timestamp with
// unscheduled rows last, then original position for stability.
func sortByKickoff(idx []int, dates []time.Time, facts []match.Fact) {
	sort.SliceStable(idx, func(x, y int) bool {
		i, j := idx[x], idx[y]
		if !dates[i].Equal(dates[j]) {
			return dates[i].Before(dates[j])
		}
		ki, kj := facts[i].BJKickoff, facts[j].BJKickoff
		switch {
		case ki == nil && kj == nil:
			return i < j
		case ki == nil:
			return false
		case kj == nil:
			return true
		case !ki.Equal(*kj):
			return ki.Before(*kj)
		default:
			return i < j
		}
	})
}
