package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openfooty/schedsync/internal/domain/match"
	"github.com/openfooty/schedsync/internal/domain/schedule"
	"github.com/openfooty/schedsync/internal/domain/team"
	"github.com/openfooty/schedsync/internal/platform/logging"
)

const rawDateLayout = "2006-01-02"

// Normalizer converts raw scraped rows into canonical match facts. Rows are
// validated once here; downstream components never see raw positional data.
type Normalizer struct {
	resolver team.Resolver
	validate *validator.Validate
	logger   *logging.Logger
}

func NewNormalizer(resolver team.Resolver, logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{
		resolver: resolver,
		validate: validator.New(),
		logger:   logger,
	}
}

// NormalizeBatch normalizes every row and applies the family-specific round
// classification across the batch. Rows with unresolved team names are kept
// with absent identity fields; malformed rows fail the whole batch.
func (n *Normalizer) NormalizeBatch(family schedule.Family, rows []match.RawRow) ([]match.Fact, error) {
	facts := make([]match.Fact, len(rows))
	dates := make([]time.Time, len(rows))
	unknownNames := make(map[string]struct{})

	for i, row := range rows {
		fact, rawDate, err := n.normalizeRow(row, unknownNames)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s vs %s): %w", i, row.HomeTeam, row.AwayTeam, err)
		}
		facts[i] = fact
		dates[i] = rawDate
	}

	classify, ok := roundClassifiers[family]
	if !ok {
		return nil, fmt.Errorf("%w: unknown competition family %q", ErrInvalidInput, family)
	}
	classify(rows, dates, facts)

	return facts, nil
}

func (n *Normalizer) normalizeRow(row match.RawRow, unknownNames map[string]struct{}) (match.Fact, time.Time, error) {
	if err := n.validate.Struct(row); err != nil {
		return match.Fact{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	rawDate, err := time.Parse(rawDateLayout, strings.TrimSpace(row.Date))
	if err != nil {
		return match.Fact{}, time.Time{}, fmt.Errorf("%w: parse date %q: %v", ErrInvalidInput, row.Date, err)
	}

	fact := match.Fact{
		Season:      match.FormatSeason(row.Season),
		Competition: row.Competition,
		MatchURL:    row.MatchURL,
		HomeURL:     row.HomeURL,
		AwayURL:     row.AwayURL,
	}

	n.resolveTeams(row, &fact, unknownNames)

	homeScore, awayScore, status := parseScore(row.Score)
	fact.HomeScore = homeScore
	fact.AwayScore = awayScore
	fact.Status = status
	fact.HomeResult, fact.AwayResult = match.Results(homeScore, awayScore)

	n.applyTiming(row, rawDate, &fact)

	return fact, rawDate, nil
}

func (n *Normalizer) resolveTeams(row match.RawRow, fact *match.Fact, unknownNames map[string]struct{}) {
	if n.resolver != nil {
		if identity, ok := n.resolver.Resolve(row.HomeTeam); ok {
			fact.HomeTeamID = identity.ID
			fact.HomeTeam = identity.Name
		} else {
			n.warnUnknownTeam(row.HomeTeam, unknownNames)
		}
		if identity, ok := n.resolver.Resolve(row.AwayTeam); ok {
			fact.AwayTeamID = identity.ID
			fact.AwayTeam = identity.Name
		} else {
			n.warnUnknownTeam(row.AwayTeam, unknownNames)
		}
	}
	if fact.HomeTeam != "" && fact.AwayTeam != "" {
		fact.Match = fact.HomeTeam + " vs. " + fact.AwayTeam
	}
}

func (n *Normalizer) warnUnknownTeam(name string, seen map[string]struct{}) {
	if _, ok := seen[name]; ok {
		return
	}
	seen[name] = struct{}{}
	n.logger.Warn("new team name detected in the schedule", "team", name)
}

// parseScore splits a raw "H:A SUFFIX" score cell into goal counts and a
// status. A dnp suffix voids the goals even when they parsed.
func parseScore(raw string) (*int, *int, string) {
	primary, suffix, _ := strings.Cut(strings.TrimSpace(raw), " ")

	var homeScore, awayScore *int
	if h, a, ok := strings.Cut(primary, ":"); ok {
		if hv, err := strconv.Atoi(strings.TrimSpace(h)); err == nil {
			if av, err := strconv.Atoi(strings.TrimSpace(a)); err == nil {
				homeScore, awayScore = &hv, &av
			}
		}
	}

	status := ""
	switch {
	case strings.Contains(suffix, "dnp"):
		return nil, nil, match.StatusNotPlayed
	case strings.Contains(suffix, "pso"):
		status = match.StatusPenaltyShootout
	case strings.Contains(suffix, "aet"):
		status = match.StatusExtraTime
	case strings.Contains(suffix, "dec."):
		status = match.StatusDecision
	case strings.Contains(suffix, "annulled"):
		status = match.StatusAnnulled
	case homeScore != nil:
		status = match.StatusFullTime
	}

	return homeScore, awayScore, status
}

// applyTiming fills the kickoff/finish fields. An absent status leaves every
// timing field absent, including the attributed date.
func (n *Normalizer) applyTiming(row match.RawRow, rawDate time.Time, fact *match.Fact) {
	if fact.Status == "" {
		return
	}

	durSecs, hasDur := match.DurationSeconds(fact.Status)
	if hasDur {
		fact.DurationS = &durSecs
	}

	kickoff26, hasKickoff := match.Format26(row.Time)
	fact.KickoffTime = kickoff26

	// Matches past local midnight belong to the previous broadcast day; so do
	// fixtures with a known status but no listed time.
	date := rawDate
	if !hasKickoff || hour26(kickoff26) >= 24 {
		date = rawDate.AddDate(0, 0, -1)
	}
	fact.Date = &date

	hh, mm, hasClock := parseClock(row.Time)
	kickTS := rawDate
	if hasClock {
		kickTS = rawDate.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
	}
	fact.BJKickoff = &kickTS

	if hasDur {
		finishTS := kickTS.Add(time.Duration(durSecs) * time.Second)
		fact.BJFinish = &finishTS
	}

	if hasClock && hasDur {
		finishClock := time.Date(2000, 1, 1, hh, mm, 0, 0, time.UTC).Add(time.Duration(durSecs) * time.Second)
		if finish26, ok := match.Format26(finishClock.Format("15:04")); ok {
			fact.FinishTime = finish26
		}
	}

	if fact.KickoffTime != "" && fact.FinishTime != "" {
		fact.LiveTimeslot = fact.KickoffTime + "-" + fact.FinishTime
	}
}

func parseClock(raw string) (int, int, bool) {
	h, rest, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, 0, false
	}
	m, _, _ := strings.Cut(rest, ":")
	hh, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, false
	}
	mm, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, 0, false
	}
	return hh, mm, true
}

func hour26(formatted string) int {
	h, _, _ := strings.Cut(formatted, ":")
	v, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return v
}
