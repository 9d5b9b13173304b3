package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// Pydocstyle analyzes Python docstring conventions with pydocstyle.
type Pydocstyle struct{}

func (Pydocstyle) Name() string { return "pydocstyle" }

// pydocstyle reports each violation on two lines:
//
//	/tmp/nitpick-x.py:1 at module level:
//	        D100: Missing docstring in public module
var pydocstyleLocRE = regexp.MustCompile(`:(\d+) `)

func (p Pydocstyle) Analyze(ctx context.Context, path string, content []byte) ([]model.Violation, error) {
	tmp, cleanup, err := stageFile(path, content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	out, err := runTool(ctx, []int{1}, "pydocstyle", tmp)
	if err != nil {
		return nil, err
	}
	return parsePydocstyle(out, path, p.Name()), nil
}

func parsePydocstyle(out []byte, path, tool string) []model.Violation {
	violations := []model.Violation{}
	line := 0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !strings.HasPrefix(text, " ") && !strings.HasPrefix(text, "\t") {
			// Location line.
			line = 0
			if m := pydocstyleLocRE.FindStringSubmatch(text); m != nil {
				line, _ = strconv.Atoi(m[1])
			}
			continue
		}
		// Message line following a location line.
		if line == 0 {
			continue
		}
		msg := strings.TrimSpace(text)
		if msg == "" {
			continue
		}
		violations = append(violations, model.Violation{
			FilePath: path,
			Line:     line,
			Message:  msg,
			Tool:     tool,
		})
		line = 0
	}
	return violations
}
