package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

func TestParseLocationLines(t *testing.T) {
	out := []byte(`/tmp/nitpick-1.py:3:1: E302 expected 2 blank lines, got 1
/tmp/nitpick-1.py:10:80: E501 line too long (88 > 79 characters)
garbage line without locations
`)

	got := parseLocationLines(out, "app/models.py", "flake8")

	require.Len(t, got, 2)
	assert.Equal(t, model.Violation{
		FilePath: "app/models.py",
		Line:     3,
		Column:   1,
		Message:  "E302 expected 2 blank lines, got 1",
		Tool:     "flake8",
	}, got[0])
	assert.Equal(t, 10, got[1].Line)
	assert.Equal(t, 80, got[1].Column)
}

func TestParseLocationLines_Empty(t *testing.T) {
	assert.Empty(t, parseLocationLines(nil, "a.py", "flake8"))
}

func TestParsePydocstyle(t *testing.T) {
	out := []byte(`/tmp/nitpick-2.py:1 at module level:
        D100: Missing docstring in public module
/tmp/nitpick-2.py:24 in public function 'load':
        D103: Missing docstring in public function
`)

	got := parsePydocstyle(out, "farm/load.py", "pydocstyle")

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, "D100: Missing docstring in public module", got[0].Message)
	assert.Equal(t, "farm/load.py", got[0].FilePath)
	assert.Equal(t, 24, got[1].Line)
	assert.Equal(t, "D103: Missing docstring in public function", got[1].Message)
}

func TestParsePydocstyle_OrphanMessageLine(t *testing.T) {
	// A message line with no preceding location line is dropped.
	out := []byte("        D100: Missing docstring in public module\n")
	assert.Empty(t, parsePydocstyle(out, "a.py", "pydocstyle"))
}
