// Package narrative extracts structured metrics from the free-form text the
// vision-language backend generates. It is a deliberate best-effort,
// single-pass extractor: the first match wins and anything that cannot be
// found is simply left unset.
package narrative

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
)

// Metrics is one category's parsed block. Nil means "not determined",
// never zero.
type Metrics struct {
	TotalCount       *int     `json:"totalCount,omitempty"`
	PigmentedPercent *float64 `json:"pigmentedPercent,omitempty"`
	Count            *int     `json:"count,omitempty"`
	Severity         string   `json:"severity"`
}

var (
	acneTotalRe = regexp.MustCompile(`total.*?(\d+).*?lesion`)
	percentRe   = regexp.MustCompile(`(\d+\.?\d*)\s*%`)
	// The wrinkle count is the integer nearest the word, so earlier numbers
	// in the same sentence must not be picked up.
	wrinkleCntRe = regexp.MustCompile(`(\d+)[^\d]*?wrinkle`)
)

// Parse extracts metrics from text for the requested analysis category.
// Category "full" runs all three extractions against the same text and merges
// the results under their respective keys. Parse never fails.
func Parse(text, category string) map[string]Metrics {
	parsed := make(map[string]Metrics)
	lower := strings.ToLower(text)
	severity := extractSeverity(lower)

	if category == "acne" || category == "full" {
		m := Metrics{Severity: severity}
		if match := acneTotalRe.FindStringSubmatch(lower); match != nil {
			if n, err := strconv.Atoi(match[1]); err == nil {
				m.TotalCount = &n
			}
		}
		parsed["acne"] = m
	}

	if category == "pigmentation" || category == "full" {
		m := Metrics{Severity: severity}
		if match := percentRe.FindStringSubmatch(lower); match != nil {
			if f, err := strconv.ParseFloat(match[1], 64); err == nil {
				m.PigmentedPercent = &f
			}
		}
		parsed["pigmentation"] = m
	}

	if category == "wrinkles" || category == "full" {
		m := Metrics{Severity: severity}
		if match := wrinkleCntRe.FindStringSubmatch(lower); match != nil {
			if n, err := strconv.Atoi(match[1]); err == nil {
				m.Count = &n
			}
		}
		parsed["wrinkles"] = m
	}

	return parsed
}

// extractSeverity resolves in priority order, not text order: a text
// mentioning both "moderate" and "mild" is Moderate.
func extractSeverity(lower string) string {
	switch {
	case strings.Contains(lower, "severe"):
		return SeveritySevere
	case strings.Contains(lower, "moderate"):
		return SeverityModerate
	default:
		return SeverityMild
	}
}
