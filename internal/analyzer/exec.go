package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// stageFile writes content to a temp file carrying the same extension as the
// original path, since most linters decide how to parse a file by its suffix.
// The returned cleanup func removes the file.
func stageFile(path string, content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "nitpick-*"+filepath.Ext(path))
	if err != nil {
		return "", nil, fmt.Errorf("staging %s: %w", path, err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("staging %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("staging %s: %w", path, err)
	}
	return f.Name(), cleanup, nil
}

// runTool executes the named tool and returns its stdout. Linters typically
// exit non-zero when they find issues, so callers list the exit codes that
// still carry valid output.
func runTool(ctx context.Context, okExitCodes []int, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s timed out: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range okExitCodes {
			if exitErr.ExitCode() == code {
				return stdout.Bytes(), nil
			}
		}
		return nil, fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), firstLine(stderr.Bytes()))
	}
	return nil, fmt.Errorf("running %s: %w", name, err)
}

func firstLine(out []byte) string {
	if i := bytes.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	return string(bytes.TrimSpace(out))
}
