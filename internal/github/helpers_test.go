package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
)

const testTimeout = 30 * time.Second

// ghCall is one expected gh invocation and its canned result.
type ghCall struct {
	args   []string
	stdout string
	stderr string
	err    error
}

// fakeGh replays canned results and records every invocation.
type fakeGh struct {
	t     *testing.T
	calls []ghCall
	got   [][]string
}

func (f *fakeGh) run(_ context.Context, _ string, args ...string) (string, string, error) {
	f.t.Helper()
	f.got = append(f.got, args)
	idx := len(f.got) - 1
	if idx >= len(f.calls) {
		f.t.Fatalf("unexpected gh call #%d: %v", idx+1, args)
		return "", "", errors.New("unexpected call")
	}
	call := f.calls[idx]
	if want := strings.Join(call.args, " "); want != strings.Join(args, " ") {
		f.t.Errorf("gh call #%d:\nwant: %s\ngot:  %s", idx+1, want, strings.Join(args, " "))
	}
	return call.stdout, call.stderr, call.err
}

func newTestCli(t *testing.T, dryRun bool, calls ...ghCall) (*GitHubCli, *fakeGh) {
	fake := &fakeGh{t: t, calls: calls}
	return &GitHubCli{
		dryRun:     dryRun,
		log:        clog.New(io.Discard),
		run:        fake.run,
		timeout:    testTimeout,
		workingDir: "/repo",
	}, fake
}

func exitErr(code int) error {
	return fmt.Errorf("exit status %d", code)
}
