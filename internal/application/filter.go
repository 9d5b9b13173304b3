// Package application contains the review orchestration core: eligibility
// filtering, comment reconciliation, and the polling loop.
package application

import (
	"strings"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// Filter decides whether a pull request is eligible for automated review.
// It is pure and side-effect-free; all inputs are fixed at construction.
type Filter struct {
	whitelist map[string]bool
	blacklist map[string]bool
	marker    string // lowercased ignore marker, empty disables the rule
}

// NewFilter builds a filter from the configured author lists and ignore
// marker. Whitelist and blacklist are mutually exclusive; config validation
// enforces that before a Filter is ever built.
func NewFilter(whitelist, blacklist []string, ignoreMarker string) *Filter {
	return &Filter{
		whitelist: toLowerSet(whitelist),
		blacklist: toLowerSet(blacklist),
		marker:    strings.ToLower(ignoreMarker),
	}
}

// IsEligible applies the eligibility rules in order, first match wins:
// not open, blacklisted author, author missing from a non-empty whitelist,
// ignore marker in the description. force bypasses only the open-state rule
// and is honored solely for explicit single-PR review requests.
// The returned reason describes the first rule that rejected the PR.
func (f *Filter) IsEligible(pr model.PullRequestRef, force bool) (bool, string) {
	if !pr.IsOpen && !force {
		return false, "pull request is not open"
	}

	author := strings.ToLower(pr.Author)
	if len(f.blacklist) > 0 && f.blacklist[author] {
		return false, "author is blacklisted"
	}
	if len(f.whitelist) > 0 && !f.whitelist[author] {
		return false, "author is not whitelisted"
	}

	if f.marker != "" && strings.Contains(strings.ToLower(pr.Description), f.marker) {
		return false, "description contains ignore marker"
	}

	return true, ""
}

func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			set[item] = true
		}
	}
	return set
}
