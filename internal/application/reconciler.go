package application

import (
	"sort"
	"strings"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// CommentSignature is the first line of every comment the bot posts and is
// how the bot recognizes its own comments in later cycles.
const CommentSignature = "_[nitpick](https://github.com/nitpickbot/nitpick)_"

// FormatCommentBody renders the comment body for a violation: the signature
// line followed by the finding as a bullet. The bullet text doubles as the
// dedup message when the comment is read back on a later cycle, so it must be
// exactly the violation message.
func FormatCommentBody(v model.Violation) string {
	return CommentSignature + "\n* " + v.Message
}

// IsBotComment reports whether an existing comment was posted by this bot.
func IsBotComment(c model.ExistingComment) bool {
	return strings.HasPrefix(c.Body, CommentSignature)
}

// CountBotComments returns how many of the existing comments were posted by
// this bot. The per-PR comment budget is charged against this count, not
// against everything the token's user has written.
func CountBotComments(existing []model.ExistingComment) int {
	n := 0
	for _, c := range existing {
		if IsBotComment(c) {
			n++
		}
	}
	return n
}

// Reconcile compares candidate violations against the comments already on the
// pull request and decides what to post. Candidates are processed in
// deterministic order (file path ascending, then line ascending, then
// discovery order); a candidate is skipped when its key already exists
// remotely or was already chosen in this pass, and accepted only while the
// budget allows. Accepted-but-over-budget candidates are counted in
// suppressed, never posted, and never queued. The function is pure: calling
// it twice with the same inputs yields the same outputs.
func Reconcile(existing []model.ExistingComment, candidates []model.Violation, maxRemaining int) (toPost []model.Violation, suppressed int) {
	remote := existingKeys(existing)

	ordered := make([]model.Violation, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].FilePath != ordered[j].FilePath {
			return ordered[i].FilePath < ordered[j].FilePath
		}
		return ordered[i].Line < ordered[j].Line
	})

	chosen := make(map[model.ViolationKey]bool)
	for _, v := range ordered {
		key := v.Key()
		if remote[key] || chosen[key] {
			continue
		}
		chosen[key] = true
		if len(toPost) < maxRemaining {
			toPost = append(toPost, v)
		} else {
			suppressed++
		}
	}
	return toPost, suppressed
}

// existingKeys builds the dedup key set from remote comments. Comments posted
// by this bot are expanded into their individual bullet lines; foreign
// comments contribute their whole body as a single message.
func existingKeys(existing []model.ExistingComment) map[model.ViolationKey]bool {
	keys := make(map[model.ViolationKey]bool, len(existing))
	for _, c := range existing {
		for _, msg := range extractIssues(c) {
			keys[model.ViolationKey{
				FilePath: c.FilePath,
				Line:     c.Line,
				Message:  model.NormalizeMessage(msg),
			}] = true
		}
	}
	return keys
}

func extractIssues(c model.ExistingComment) []string {
	if !IsBotComment(c) {
		return []string{c.Body}
	}

	var issues []string
	lines := strings.Split(c.Body, "\n")
	for _, line := range lines[1:] {
		if msg, ok := strings.CutPrefix(line, "* "); ok && strings.TrimSpace(msg) != "" {
			issues = append(issues, msg)
		}
	}
	return issues
}
