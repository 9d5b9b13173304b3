package analyzer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitpickbot/nitpick/internal/analyzer"
	"github.com/nitpickbot/nitpick/internal/domain/model"
)

type fakeAnalyzer struct {
	name string
}

func (f fakeAnalyzer) Name() string { return f.name }

func (f fakeAnalyzer) Analyze(_ context.Context, _ string, _ []byte) ([]model.Violation, error) {
	return nil, nil
}

func TestRegistry_ResolveUnknownExtension(t *testing.T) {
	reg := analyzer.NewRegistry()
	require.NoError(t, reg.Register(".py", fakeAnalyzer{name: "a"}))
	reg.Freeze()

	assert.Empty(t, reg.Resolve(".xyz"), "unrecognized extensions resolve to an empty list, not an error")
}

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	reg := analyzer.NewRegistry()
	require.NoError(t, reg.Register(".py", fakeAnalyzer{name: "first"}))
	require.NoError(t, reg.Register(".py", fakeAnalyzer{name: "second"}))
	reg.Freeze()

	got := reg.Resolve(".py")
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name())
	assert.Equal(t, "second", got[1].Name())
}

func TestRegistry_RejectsRegistrationAfterFreeze(t *testing.T) {
	reg := analyzer.NewRegistry()
	require.NoError(t, reg.Register(".py", fakeAnalyzer{name: "a"}))
	reg.Freeze()

	err := reg.Register(".rb", fakeAnalyzer{name: "b"})
	assert.Error(t, err)
	assert.Empty(t, reg.Resolve(".rb"))
}

func TestRegistry_NormalizesExtensions(t *testing.T) {
	reg := analyzer.NewRegistry()
	require.NoError(t, reg.Register("PY", fakeAnalyzer{name: "a"}))
	reg.Freeze()

	assert.Len(t, reg.Resolve(".py"), 1)
	assert.Len(t, reg.Resolve(".PY"), 1)
}

func TestBuildRegistry(t *testing.T) {
	reg, err := analyzer.BuildRegistry(map[string][]string{
		".py": {"flake8", "pydocstyle"},
		".rb": {"rubocop"},
	})
	require.NoError(t, err)

	py := reg.Resolve(".py")
	require.Len(t, py, 2)
	assert.Equal(t, "flake8", py[0].Name())
	assert.Equal(t, "pydocstyle", py[1].Name())
	assert.Len(t, reg.Resolve(".rb"), 1)
}

func TestBuildRegistry_UnknownAnalyzer(t *testing.T) {
	_, err := analyzer.BuildRegistry(map[string][]string{".py": {"nope"}})
	assert.Error(t, err)
}
