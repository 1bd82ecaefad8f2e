package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testEnv map[string]string

// newTestEnv isolates a CLI run: a fresh working directory (no stray
// presensi.yaml or .env) and a database in a temp dir.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	return testEnv{
		"PRESENSI_DB":       filepath.Join(dir, "presensi.db"),
		"PRESENSI_ADMIN_ID": "admin",
		"PRESENSI_TIMEZONE": "UTC",
	}
}

type cliRun struct {
	stdout string
	stderr string
	err    error
}

func (e testEnv) run(t *testing.T, stdin string, args ...string) cliRun {
	t.Helper()
	return e.runContext(t, context.Background(), stdin, args...)
}

func (e testEnv) runContext(t *testing.T, ctx context.Context, stdin string, args ...string) cliRun {
	t.Helper()
	opts := &RootOptions{
		LookupEnv: func(key string) (string, bool) {
			v, ok := e[key]
			return v, ok
		},
	}
	cmd := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return cliRun{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (r cliRun) requireOK(t *testing.T) cliRun {
	t.Helper()
	require.NoError(t, r.err, "stderr: %s", r.stderr)
	return r
}
