package model

import "strings"

// Violation is a single tool finding anchored to a file and line of a pull
// request head. Column is carried for logging but deliberately excluded from
// identity: tools disagree on column conventions for the same finding.
type Violation struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Tool     string
}

// ViolationKey is the deduplication identity of a violation. Two violations
// with equal keys describe the same problem regardless of which tool reported
// them or how the message was spaced or cased.
type ViolationKey struct {
	FilePath string
	Line     int
	Message  string
}

// Key returns the deduplication identity of the violation.
func (v Violation) Key() ViolationKey {
	return ViolationKey{
		FilePath: v.FilePath,
		Line:     v.Line,
		Message:  NormalizeMessage(v.Message),
	}
}

// NormalizeMessage lowercases a message and collapses all runs of whitespace
// to single spaces, so that cosmetic differences between tool versions do not
// defeat deduplication.
func NormalizeMessage(msg string) string {
	return strings.Join(strings.Fields(strings.ToLower(msg)), " ")
}
