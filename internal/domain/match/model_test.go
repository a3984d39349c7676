package match

import "testing"

func TestFormat26(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "14:00", want: "14:00", ok: true},
		{in: "00:05", want: "24:05", ok: true},
		{in: "01:30", want: "25:30", ok: true},
		{in: "02:00", want: "26:00", ok: true},
		{in: "02:00:00", want: "26:00", ok: true},
		{in: "02:15", want: "2:15", ok: true},
		{in: "02:00:30", want: "2:00", ok: true},
		{in: "23:45", want: "23:45", ok: true},
		{in: "", want: "", ok: false},
		{in: "midnight", want: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := Format26(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Format26(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatSeason(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "2024-2025", want: "2024/25"},
		{in: "1999-2000", want: "1999/00"},
		{in: "2024", want: "2024"},
		{in: "2024-25", want: "2024-25"},
		{in: "abcd-efgh", want: "abcd-efgh"},
	}

	for _, tc := range cases {
		if got := FormatSeason(tc.in); got != tc.want {
			t.Errorf("FormatSeason(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResults(t *testing.T) {
	t.Parallel()

	two, one := 2, 1
	if home, away := Results(&two, &one); home != ResultWin || away != ResultLoss {
		t.Errorf("Results(2,1) = (%q, %q)", home, away)
	}
	if home, away := Results(&one, &two); home != ResultLoss || away != ResultWin {
		t.Errorf("Results(1,2) = (%q, %q)", home, away)
	}
	if home, away := Results(&one, &one); home != ResultTie || away != ResultTie {
		t.Errorf("Results(1,1) = (%q, %q)", home, away)
	}
	if home, away := Results(nil, &one); home != "" || away != "" {
		t.Errorf("Results(nil,1) = (%q, %q), want absent", home, away)
	}
}

func TestDurationSeconds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status string
		want   int
		ok     bool
	}{
		{status: StatusFullTime, want: 7200, ok: true},
		{status: StatusExtraTime, want: 9000, ok: true},
		{status: StatusPenaltyShootout, want: 10800, ok: true},
		{status: StatusDecision, want: 1, ok: true},
		{status: StatusNotPlayed, want: 0, ok: true},
		{status: StatusAnnulled, want: 7200, ok: true},
		{status: "", want: 0, ok: false},
	}

	for _, tc := range cases {
		got, ok := DurationSeconds(tc.status)
		if got != tc.want || ok != tc.ok {
			t.Errorf("DurationSeconds(%q) = (%d, %v), want (%d, %v)", tc.status, got, ok, tc.want, tc.ok)
		}
	}
}
