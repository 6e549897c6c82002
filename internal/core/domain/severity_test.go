package domain

import "testing"

func TestSeverityFromCategory(t *testing.T) {
	cases := []struct {
		category string
		want     Severity
	}{
		{"Critical", SeverityHigh},
		{"critical", SeverityHigh},
		{"Suspicious", SeverityMedium},
		{"Compliance", SeverityLow},
		{"Informational", SeverityLow},
		{"something else", SeverityLow},
		{"", SeverityLow},
	}
	for _, tc := range cases {
		if got := SeverityFromCategory(tc.category); got != tc.want {
			t.Errorf("SeverityFromCategory(%q) = %s, want %s", tc.category, got, tc.want)
		}
	}
}

func TestSeverityFromScore(t *testing.T) {
	cases := []struct {
		score int
		want  Severity
	}{
		{100, SeverityHigh},
		{76, SeverityHigh},
		{75, SeverityMedium},
		{46, SeverityMedium},
		{45, SeverityLow},
		{0, SeverityLow},
	}
	for _, tc := range cases {
		if got := SeverityFromScore(tc.score); got != tc.want {
			t.Errorf("SeverityFromScore(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
