package github

import (
	"regexp"
	"strconv"
	"strings"
)

// Hunk headers look like "@@ -12,5 +14,7 @@"; the first capture is the
// new-file start line.
var hunkHeaderRE = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// addedLines parses a unified-diff patch and returns the set of new-file line
// numbers introduced by it. An empty or missing patch yields an empty set.
func addedLines(patch string) map[int]bool {
	added := map[int]bool{}
	if patch == "" {
		return added
	}

	line := 0
	for _, raw := range strings.Split(patch, "\n") {
		if m := hunkHeaderRE.FindStringSubmatch(raw); m != nil {
			line, _ = strconv.Atoi(m[1])
			continue
		}

		switch {
		case strings.HasPrefix(raw, "+"):
			added[line] = true
			line++
		case strings.HasPrefix(raw, "-"):
			// Removed line, old side only.
		case strings.HasPrefix(raw, "\\"):
			// "\ No newline at end of file" marker.
		default:
			// Context line.
			line++
		}
	}
	return added
}
