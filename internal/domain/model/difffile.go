package model

// DiffFile represents one file's changed region within a pull request.
// Only lines present in AddedLines are eligible for new comments; commenting
// on unchanged context lines flags code the author never touched.
type DiffFile struct {
	Path       string
	Status     string       // "added", "modified", "removed", "renamed"
	AddedLines map[int]bool // New-file line numbers introduced by this PR.
	Patch      string
}

// LineAdded reports whether the given new-file line number was introduced by
// this pull request.
func (f DiffFile) LineAdded(line int) bool {
	return f.AddedLines[line]
}
