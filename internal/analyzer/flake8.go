package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// Flake8 analyzes Python files with flake8.
type Flake8 struct{}

func (Flake8) Name() string { return "flake8" }

func (f Flake8) Analyze(ctx context.Context, path string, content []byte) ([]model.Violation, error) {
	tmp, cleanup, err := stageFile(path, content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// Exit code 1 means "violations found" and still produces valid output.
	out, err := runTool(ctx, []int{1}, "flake8", "--format=default", tmp)
	if err != nil {
		return nil, err
	}
	return parseLocationLines(out, path, f.Name()), nil
}

// parseLocationLines parses the "file:line:col: message" format shared by
// flake8 and several other Python linters. Unparseable lines are skipped.
func parseLocationLines(out []byte, path, tool string) []model.Violation {
	violations := []model.Violation{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 4)
		if len(parts) != 4 {
			continue
		}
		line, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		col, _ := strconv.Atoi(parts[2])
		msg := strings.TrimSpace(parts[3])
		if msg == "" {
			continue
		}
		violations = append(violations, model.Violation{
			FilePath: path,
			Line:     line,
			Column:   col,
			Message:  msg,
			Tool:     tool,
		})
	}
	return violations
}
