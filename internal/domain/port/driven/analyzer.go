package driven

import (
	"context"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// Analyzer wraps one static-analysis tool behind a normalized interface.
// Analyze reports violations found in content, with FilePath set to the given
// path (not whatever staging location the tool actually ran against). A clean
// file yields an empty slice, not an error; execution failures return an
// error the caller contains at the file level.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, path string, content []byte) ([]model.Violation, error)
}
