package middleware

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

var recordIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// SanitizeInput applies SanitizeString to every field of the form.
func SanitizeInput(in analysis.Input) analysis.Input {
	return analysis.Input{
		BrandName:      SanitizeString(in.BrandName),
		OfficialURLs:   SanitizeString(in.OfficialURLs),
		AdditionalURLs: SanitizeString(in.AdditionalURLs),
		Competitors:    SanitizeString(in.Competitors),
		Goal:           SanitizeString(in.Goal),
		Conditions:     SanitizeString(in.Conditions),
		ExtraNotes:     SanitizeString(in.ExtraNotes),
	}
}

// ValidateRecordID checks the id shape before it reaches a store.
func ValidateRecordID(id string) error {
	if !recordIDPattern.MatchString(id) {
		return fmt.Errorf("invalid analysis id format")
	}
	return nil
}
