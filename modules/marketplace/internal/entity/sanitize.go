package entity

import "strings"

// sanitizeString strips null bytes and replaces invalid UTF-8 sequences.
// Postgres rejects text values containing U+0000, a single bad event must not
// poison a whole batch insert.
func sanitizeString(s string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(s, ""), "\x00", "")
}

func sanitizeStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeString(*s)
	return &clean
}
