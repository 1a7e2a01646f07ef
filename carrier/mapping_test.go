package carrier

import (
	"testing"
	"time"

	"github.com/goliatone/go-carrier-sync/core"
)

func TestClosestCoverageCode(t *testing.T) {
	cases := []struct {
		name   string
		codes  []coverageCode
		amount int
		want   string
	}{
		{name: "exact aggregate", codes: aggregateCodes, amount: 1_000_000, want: "1Musd"},
		{name: "rounds down between entries", codes: aggregateCodes, amount: 60_000, want: "50Kusd"},
		{name: "rounds up when closer", codes: aggregateCodes, amount: 90_000, want: "100Kusd"},
		{name: "below minimum snaps to smallest", codes: aggregateCodes, amount: 1, want: "25Kusd"},
		{name: "above maximum snaps to largest", codes: aggregateCodes, amount: 50_000_000, want: "5Musd"},
		{name: "retention default", codes: retentionCodes, amount: 7_500, want: "75Kusd"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := closestCoverageCode(tc.codes, tc.amount); got.Code != tc.want {
				t.Fatalf("closestCoverageCode(%d) = %q, want %q", tc.amount, got.Code, tc.want)
			}
		})
	}
}

func TestEntityTypeCode(t *testing.T) {
	cases := map[string]string{
		"Corporation":               "corporation",
		"corp":                      "corporation",
		"LLC":                       "llc",
		"limited liability company": "llc",
		"Partnership":               "partnership",
		"sole proprietorship":       "sole_proprietorship",
		"nonprofit":                 "nonprofit",
		"":                          "other",
		"something else":            "other",
	}
	for in, want := range cases {
		if got := entityTypeCode(in); got != want {
			t.Fatalf("entityTypeCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIndustryCode(t *testing.T) {
	cases := map[string]string{
		"technology":         "tech",
		"Healthcare":         "healthcare",
		"financial_services": "financial",
		"unknown":            "other",
		"":                   "other",
	}
	for in, want := range cases {
		if got := industryCode(in); got != want {
			t.Fatalf("industryCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpiryDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := expiryDate("2025-01-15", now); got != "2026-01-15" {
		t.Fatalf("expiryDate = %q", got)
	}
	if got := expiryDate("not-a-date", now); got != "2026-06-01" {
		t.Fatalf("expiryDate fallback = %q", got)
	}
}

func TestParseLimit(t *testing.T) {
	fields := core.FieldMap{
		"coverage_amount": "$1,000,000",
		"deductible":      "7.5k",
		"bogus":           "not a number",
	}

	if got := parseLimit(fields, 50_000, "coverage_amount"); got != 1_000_000 {
		t.Fatalf("parseLimit coverage = %d", got)
	}
	if got := parseLimit(fields, 7_500, "deductible"); got != 7_500 {
		t.Fatalf("parseLimit deductible = %d", got)
	}
	if got := parseLimit(fields, 5_000, "bogus"); got != 5_000 {
		t.Fatalf("parseLimit fallback = %d", got)
	}
	if got := parseLimit(fields, 10_000, "missing"); got != 10_000 {
		t.Fatalf("parseLimit missing = %d", got)
	}
}
