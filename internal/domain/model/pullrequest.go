package model

import "time"

// PullRequestRef represents a pull request as fetched from the code host.
// Instances are re-derived from the remote API every polling cycle and never
// cached across cycles.
type PullRequestRef struct {
	RepoFullName string // "owner/name"
	Number       int
	Title        string
	Author       string
	Description  string
	IsOpen       bool
	HeadSHA      string // Head commit SHA; comments and statuses attach here.
	URL          string
	UpdatedAt    time.Time
}
