package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Match statuses. An empty status means the fixture has not concluded and no
// result-derived fields may be populated.
const (
	StatusFullTime        = "full_time"
	StatusExtraTime       = "extra_time"
	StatusPenaltyShootout = "penalty_shootout"
	StatusDecision        = "decision"
	StatusAnnulled        = "annulled"
	StatusNotPlayed       = "not_played"
)

const (
	ResultWin  = "W"
	ResultLoss = "L"
	ResultTie  = "T"
)

// RawRow is one scraped table row as delivered by the fetcher. Date is a
// calendar date in YYYY-MM-DD form; Time is a 24-hour HH:MM string or empty.
type RawRow struct {
	Season      string `json:"season" validate:"required"`
	Competition string `json:"competition" validate:"required"`
	Round       string `json:"round" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time"`
	HomeTeam    string `json:"home_team" validate:"required"`
	AwayTeam    string `json:"away_team" validate:"required"`
	Score       string `json:"score"`
	MatchURL    string `json:"match_url"`
	HomeURL     string `json:"home_url"`
	AwayURL     string `json:"away_url"`
}

// Fact is the canonical record for one observed match. Pointer and empty-string
// fields are absent: a Fact with empty Status carries no timing or result data.
type Fact struct {
	Season      string `json:"season"`
	Competition string `json:"competition"`

	HomeTeamID string `json:"hometeam_id"`
	HomeTeam   string `json:"hometeam"`
	AwayTeamID string `json:"awayteam_id"`
	AwayTeam   string `json:"awayteam"`
	Match      string `json:"match"`

	MatchRound string `json:"match_round"`
	MatchStage string `json:"match_stage"`
	MatchGroup string `json:"match_group"`
	MatchLeg   string `json:"match_leg"`

	KickoffTime  string     `json:"kickoff_time"`
	FinishTime   string     `json:"finish_time"`
	LiveTimeslot string     `json:"live_timeslot"`
	BJKickoff    *time.Time `json:"bj_kickoff"`
	BJFinish     *time.Time `json:"bj_finish"`
	DurationS    *int       `json:"match_dur_s"`

	HomeScore  *int   `json:"hometeam_score"`
	AwayScore  *int   `json:"awayteam_score"`
	HomeResult string `json:"hometeam_result"`
	AwayResult string `json:"awayteam_result"`
	Status     string `json:"status"`

	Date *time.Time `json:"date"`

	MatchURL string `json:"match_url"`
	HomeURL  string `json:"home_url"`
	AwayURL  string `json:"away_url"`
}

// Durations from kickoff to the end of the broadcast slot, by status.
var durationByStatus = map[string]int{
	StatusFullTime:        7200,
	StatusExtraTime:       9000,
	StatusPenaltyShootout: 10800,
	StatusDecision:        1,
	StatusNotPlayed:       0,
}

// DurationSeconds returns the slot duration for a status. Statuses without an
// explicit entry (annulled) fall back to the full-time duration. An empty
// status has no duration.
func DurationSeconds(status string) (int, bool) {
	if status == "" {
		return 0, false
	}
	if secs, ok := durationByStatus[status]; ok {
		return secs, true
	}
	return durationByStatus[StatusFullTime], true
}

// Format26 renders a 24-hour HH:MM(:SS) string in the 26-hour display
// convention: hours before 02:00, and 02:00 sharp, belong to the previous
// broadcast day and are shown as hour+24. Minutes keep their zero padding, the
// hour does not gain one.
func Format26(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", false
	}
	hh, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", false
	}
	mm, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", false
	}
	ss := 0
	if len(parts) == 3 {
		ss, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return "", false
		}
	}

	if hh < 2 || (hh == 2 && mm+ss == 0) {
		hh += 24
	}
	return fmt.Sprintf("%d:%02d", hh, mm), true
}

// FormatSeason converts "YYYY-YYYY" into "YYYY/YY". Anything else passes
// through unchanged.
func FormatSeason(season string) string {
	start, end, ok := strings.Cut(season, "-")
	if !ok || len(start) != 4 || len(end) != 4 {
		return season
	}
	if _, err := strconv.Atoi(start); err != nil {
		return season
	}
	if _, err := strconv.Atoi(end); err != nil {
		return season
	}
	return start + "/" + end[2:]
}

// Results derives the per-side outcome from a score pair. Both results are
// absent unless both scores are present.
func Results(home, away *int) (string, string) {
	if home == nil || away == nil {
		return "", ""
	}
	switch {
	case *home > *away:
		return ResultWin, ResultLoss
	case *home < *away:
		return ResultLoss, ResultWin
	default:
		return ResultTie, ResultTie
	}
}
