package git

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

const testTimeout = 30 * time.Second

// testRepo provides a temporary git repository for integration tests.
type testRepo struct {
	Git     *GitCli
	rootDir string
	t       *testing.T
}

// skipIfNoGit skips the test if the git binary is not installed.
func skipIfNoGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func newTestRepo(t *testing.T) *testRepo {
	return newTestRepoWithOptions(t, false)
}

// newTestRepoWithOptions creates an initialized git repository with one commit on main.
func newTestRepoWithOptions(t *testing.T, dryRun bool) *testRepo {
	t.Helper()
	skipIfNoGit(t)

	dir := t.TempDir()

	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	r := &testRepo{
		Git: &GitCli{
			dryRun:     dryRun,
			log:        clog.New(io.Discard),
			timeout:    testTimeout,
			workingDir: dir,
		},
		rootDir: dir,
		t:       t,
	}
	r.commit("initial commit")
	return r
}

// commit creates a new commit and returns the full SHA.
func (r *testRepo) commit(message string) string {
	r.t.Helper()
	appendToFile(r.t, filepath.Join(r.rootDir, "file.txt"), message+"\n")
	runGit(r.t, r.rootDir, "add", "-A")
	runGit(r.t, r.rootDir, "commit", "-m", message)
	return r.revParse("HEAD")
}

// addBareRemote creates a bare clone and registers it as a remote.
func (r *testRepo) addBareRemote(name string) string {
	r.t.Helper()
	remoteDir := filepath.Join(r.t.TempDir(), name+".git")
	runGit(r.t, r.rootDir, "clone", "--bare", r.rootDir, remoteDir)
	runGit(r.t, r.rootDir, "remote", "add", name, remoteDir)
	return remoteDir
}

func (r *testRepo) currentBranch() string {
	r.t.Helper()
	return strings.TrimSpace(runGit(r.t, r.rootDir, "rev-parse", "--abbrev-ref", "HEAD"))
}

func (r *testRepo) revParse(ref string) string {
	r.t.Helper()
	return strings.TrimSpace(runGit(r.t, r.rootDir, "rev-parse", ref))
}

func (r *testRepo) writeFile(name, content string) {
	r.t.Helper()
	require.NoError(r.t, os.WriteFile(filepath.Join(r.rootDir, name), []byte(content), 0644))
}

// path returns the root directory of the test repo (with symlinks resolved).
func (r *testRepo) path() string {
	resolved, err := filepath.EvalSymlinks(r.rootDir)
	if err != nil {
		return r.rootDir
	}
	return resolved
}

// runGit executes a git command and returns stdout.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	require.NoError(t, err, "git %v failed: %s", args, stderr.String())
	return stdout.String()
}

// appendToFile appends content to a file, creating it if necessary.
func appendToFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()
	_, err = f.WriteString(content)
	require.NoError(t, err)
}

// resolvePath resolves symlinks in a path (useful for macOS /var -> /private/var).
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}
