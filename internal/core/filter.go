package core

import (
	"strings"

	"github.com/jo-hoe/imagelabels/internal/backend/database"
)

// ParseObjectFilter splits a comma separated filter into lower-cased, trimmed
// terms. Empty terms are kept. An empty input yields no terms.
func ParseObjectFilter(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		terms = append(terms, strings.ToLower(strings.TrimSpace(part)))
	}
	return terms
}

// MatchesAny reports whether any of the record's labels equals one of the
// targets, ignoring case on the record side.
func MatchesAny(record *database.ImageRecord, targets []string) bool {
	if record == nil {
		return false
	}
	for _, label := range record.Objects {
		lower := strings.ToLower(label)
		for _, target := range targets {
			if lower == target {
				return true
			}
		}
	}
	return false
}

// FilterImages keeps the records matching at least one target, preserving order.
func FilterImages(records []*database.ImageRecord, targets []string) []*database.ImageRecord {
	matched := make([]*database.ImageRecord, 0, len(records))
	for _, record := range records {
		if MatchesAny(record, targets) {
			matched = append(matched, record)
		}
	}
	return matched
}
