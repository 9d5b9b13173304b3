package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// Rubocop analyzes Ruby files with rubocop's JSON formatter.
type Rubocop struct{}

func (Rubocop) Name() string { return "rubocop" }

type rubocopReport struct {
	Files []struct {
		Path     string `json:"path"`
		Offenses []struct {
			Severity string `json:"severity"`
			Message  string `json:"message"`
			CopName  string `json:"cop_name"`
			Location struct {
				Line   int `json:"line"`
				Column int `json:"column"`
			} `json:"location"`
		} `json:"offenses"`
	} `json:"files"`
}

func (r Rubocop) Analyze(ctx context.Context, path string, content []byte) ([]model.Violation, error) {
	tmp, cleanup, err := stageFile(path, content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	out, err := runTool(ctx, []int{1}, "rubocop", "--format", "json", "--force-exclusion", tmp)
	if err != nil {
		return nil, err
	}
	return parseRubocop(out, path, r.Name())
}

func parseRubocop(out []byte, path, tool string) ([]model.Violation, error) {
	var report rubocopReport
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, fmt.Errorf("parsing rubocop output: %w", err)
	}

	violations := []model.Violation{}
	for _, file := range report.Files {
		for _, off := range file.Offenses {
			violations = append(violations, model.Violation{
				FilePath: path,
				Line:     off.Location.Line,
				Column:   off.Location.Column,
				Message:  fmt.Sprintf("%s: %s", off.CopName, off.Message),
				Tool:     tool,
			})
		}
	}
	return violations, nil
}
