package model

// ExistingComment represents a review comment already present on a pull
// request. It is input to reconciliation only; the core never mutates remote
// comments.
type ExistingComment struct {
	FilePath string
	Line     int // 0 when the comment is attached to an outdated diff position.
	Body     string
	Author   string
}
