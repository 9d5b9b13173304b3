package model

import (
	"errors"
	"fmt"
)

// Remote error kinds. Adapters wrap every code-host failure with one of
// these sentinels so callers can choose a containment level with errors.Is:
// transient failures abandon the current PR for this cycle, permanent
// failures disable the repository for the remainder of the run.
var (
	ErrTransientRemote = errors.New("transient remote error")
	ErrPermanentRemote = errors.New("permanent remote error")
)

// AdapterError reports a failed analyzer invocation. It is contained at the
// file level: the file's violations are dropped for the cycle and processing
// continues with the next file.
type AdapterError struct {
	Tool string
	Path string
	Err  error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("analyzer %s failed on %s: %v", e.Tool, e.Path, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
