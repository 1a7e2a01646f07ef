package carrier

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-carrier-sync/core"
)

// coverageCode is a carrier choice-list entry for a monetary coverage term.
type coverageCode struct {
	Amount int
	Code   string
	Name   string
}

// Choice lists published by the carrier for the cyber liability pattern. The
// builder picks the entry closest to the requested amount; the carrier rejects
// amounts outside its choice lists.
var (
	aggregateCodes = []coverageCode{
		{25_000, "25Kusd", "25,000"},
		{50_000, "50Kusd", "50,000"},
		{100_000, "100Kusd", "100,000"},
		{250_000, "250Kusd", "250,000"},
		{500_000, "500Kusd", "500,000"},
		{1_000_000, "1Musd", "1,000,000"},
		{2_000_000, "2Musd", "2,000,000"},
		{5_000_000, "5Musd", "5,000,000"},
	}
	busIncomeCodes = []coverageCode{
		{10_000, "10Kusd", "10,000"},
		{25_000, "25Kusd", "25,000"},
		{50_000, "50Kusd", "50,000"},
		{100_000, "100Kusd", "100,000"},
		{250_000, "250Kusd", "250,000"},
	}
	extortionCodes = []coverageCode{
		{5_000, "5Kusd", "5,000"},
		{10_000, "10Kusd", "10,000"},
		{25_000, "25Kusd", "25,000"},
		{50_000, "50Kusd", "50,000"},
	}
	retentionCodes = []coverageCode{
		{1_000, "1Kusd", "1,000"},
		{2_500, "25Kusd", "2,500"},
		{5_000, "5Kusd", "5,000"},
		{7_500, "75Kusd", "7,500"},
		{10_000, "10Kusd", "10,000"},
	}
)

// closestCoverageCode returns the list entry with the smallest absolute
// distance from the requested amount. Ties resolve to the lower entry.
func closestCoverageCode(codes []coverageCode, amount int) coverageCode {
	best := codes[0]
	bestDistance := absInt(best.Amount - amount)
	for _, candidate := range codes[1:] {
		distance := absInt(candidate.Amount - amount)
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func entityTypeCode(entityType string) string {
	switch normalizeCode(entityType) {
	case "corporation", "corp":
		return "corporation"
	case "llc", "limited liability company":
		return "llc"
	case "partnership":
		return "partnership"
	case "sole proprietorship":
		return "sole_proprietorship"
	case "nonprofit":
		return "nonprofit"
	default:
		return "other"
	}
}

func industryCode(industry string) string {
	switch normalizeCode(industry) {
	case "technology":
		return "tech"
	case "healthcare":
		return "healthcare"
	case "financial_services":
		return "financial"
	case "manufacturing":
		return "manufacturing"
	case "retail":
		return "retail"
	case "education":
		return "education"
	case "government":
		return "government"
	default:
		return "other"
	}
}

// expiryDate returns the annual policy expiration for an effective date in
// YYYY-MM-DD form. Unparseable input falls back to one year from today.
func expiryDate(effectiveDate string, now time.Time) string {
	parsed, err := time.Parse("2006-01-02", effectiveDate)
	if err != nil {
		parsed = now
	}
	return parsed.AddDate(1, 0, 0).Format("2006-01-02")
}

// parseLimit parses a human-entered limit into whole dollars, falling back to
// the given default.
func parseLimit(fields core.FieldMap, fallback int, keys ...string) int {
	amount := fields.Money(float64(fallback), keys...)
	if amount <= 0 {
		return fallback
	}
	return int(amount)
}

// formatFinancial renders a carrier money string like "121212.00".
func formatFinancial(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func normalizeCode(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
