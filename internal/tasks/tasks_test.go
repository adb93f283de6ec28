package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "makesite/internal/errors"
)

type fakeRunner struct {
	calls []string
	dirs  []string
	fail  string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) error {
	call := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, call)
	f.dirs = append(f.dirs, dir)
	if call == f.fail {
		return errors.New("exit status 1")
	}
	return nil
}

func newTasks(r Runner) *Tasks {
	return New(r, "/srv/site", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSetup(t *testing.T) {
	r := &fakeRunner{}
	require.NoError(t, newTasks(r).Setup(context.Background()))

	assert.Equal(t, []string{"go mod tidy", "go mod download"}, r.calls)
	assert.Equal(t, []string{"/srv/site", "/srv/site"}, r.dirs)
}

func TestSetup_StopsOnFailure(t *testing.T) {
	r := &fakeRunner{fail: "go mod tidy"}
	err := newTasks(r).Setup(context.Background())

	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRuntime))
	assert.Contains(t, err.Error(), "go mod tidy")
	assert.Equal(t, []string{"go mod tidy"}, r.calls)
}

func TestTest(t *testing.T) {
	tests := []struct {
		cover bool
		want  string
	}{
		{false, "go test ./..."},
		{true, "go test -cover ./..."},
	}
	for _, tt := range tests {
		r := &fakeRunner{}
		require.NoError(t, newTasks(r).Test(context.Background(), tt.cover))
		assert.Equal(t, []string{tt.want}, r.calls)
	}
}

func TestExecRunner_MissingCommand(t *testing.T) {
	err := ExecRunner{}.Run(context.Background(), t.TempDir(), "makesite-no-such-command")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}
