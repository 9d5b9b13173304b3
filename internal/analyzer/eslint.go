package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// ESLint analyzes JavaScript and JSX files with eslint's JSON formatter.
type ESLint struct{}

func (ESLint) Name() string { return "eslint" }

type eslintResult struct {
	FilePath string `json:"filePath"`
	Messages []struct {
		RuleID  string `json:"ruleId"`
		Message string `json:"message"`
		Line    int    `json:"line"`
		Column  int    `json:"column"`
	} `json:"messages"`
}

func (e ESLint) Analyze(ctx context.Context, path string, content []byte) ([]model.Violation, error) {
	tmp, cleanup, err := stageFile(path, content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	out, err := runTool(ctx, []int{1}, "eslint", "--format", "json", tmp)
	if err != nil {
		return nil, err
	}
	return parseESLint(out, path, e.Name())
}

func parseESLint(out []byte, path, tool string) ([]model.Violation, error) {
	var results []eslintResult
	if err := json.Unmarshal(out, &results); err != nil {
		return nil, fmt.Errorf("parsing eslint output: %w", err)
	}

	violations := []model.Violation{}
	for _, res := range results {
		for _, msg := range res.Messages {
			text := msg.Message
			if msg.RuleID != "" {
				text = fmt.Sprintf("%s: %s", msg.RuleID, msg.Message)
			}
			violations = append(violations, model.Violation{
				FilePath: path,
				Line:     msg.Line,
				Column:   msg.Column,
				Message:  text,
				Tool:     tool,
			})
		}
	}
	return violations, nil
}
