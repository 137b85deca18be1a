package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchard9/sdlc/internal/constants"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
)

// chdirTemp switches the working directory to a fresh temp dir for
// the duration of the test, mirroring chdirTemp(t).
func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// execCLI runs one full command invocation against the working
// directory, returning the combined output.
func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCLI(t, args...)
	require.NoError(t, err, "command %v\noutput:\n%s", args, out)
	return out
}

func TestCommandsRequireInit(t *testing.T) {
	chdirTemp(t)

	_, err := execCLI(t, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestInit(t *testing.T) {
	chdirTemp(t)

	out := mustCLI(t, "init", "demo")
	assert.Contains(t, out, "initialized project demo")

	_, err := execCLI(t, "init", "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestFeatureWorkflow(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")

	out := mustCLI(t, "feature", "create", "auth", "Authentication")
	assert.Contains(t, out, "created auth in draft")

	out = mustCLI(t, "next", "auth")
	assert.Contains(t, out, "create_spec")
	assert.Contains(t, out, ".sdlc/features/auth/spec.md")

	mustCLI(t, "artifact", "draft", "auth", "spec", ".sdlc/features/auth/spec.md")
	out = mustCLI(t, "next", "auth")
	assert.Contains(t, out, "wait_for_approval")

	out = mustCLI(t, "artifact", "approve", "auth", "spec", "--by", "alice")
	assert.Contains(t, out, "auth/spec is now approved")
	assert.Contains(t, out, "advanced to specified")

	out = mustCLI(t, "feature", "list")
	assert.Contains(t, out, "auth")
	assert.Contains(t, out, "specified")
}

func TestNextSuggestedCommandsParse(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "core", "Core library")
	mustCLI(t, "feature", "create", "auth", "Authentication")
	mustCLI(t, "feature", "depend", "auth", "core")

	out := mustCLI(t, "next", "auth")
	assert.Contains(t, out, "unblock_dependency")
	assert.Contains(t, out, "sdlc next --for core")

	// The suggested command must itself be runnable.
	out = mustCLI(t, "next", "--for", "core")
	assert.Contains(t, out, "create_spec")

	_, err := execCLI(t, "next", "auth", "--for", "core")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting feature arguments")
}

func TestNextWithoutArgsClassifiesActiveFeatures(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")

	out := mustCLI(t, "next")
	assert.Contains(t, out, "no active features")

	mustCLI(t, "feature", "create", "core", "Core library")
	mustCLI(t, "feature", "create", "auth", "Authentication")

	out = mustCLI(t, "next")
	assert.Contains(t, out, "core")
	assert.Contains(t, out, "auth")
	assert.Equal(t, 2, strings.Count(out, "create_spec"))
}

func TestTaskCommands(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")

	mustCLI(t, "task", "add", "auth", "set up schema")
	mustCLI(t, "task", "add", "auth", "write handlers", "--after", "T1")
	mustCLI(t, "task", "start", "auth", "T1")
	mustCLI(t, "task", "complete", "auth", "T1")
	mustCLI(t, "task", "block", "auth", "T2", "waiting on review")

	out := mustCLI(t, "feature", "show", "auth")
	assert.Contains(t, out, "T1")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "blocked")

	_, err := execCLI(t, "task", "start", "auth", "T99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task not found")
}

func TestBlockerCommentGatesClassification(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")

	out := mustCLI(t, "comment", "add", "auth", "waiting on security signoff", "--flag", "blocker", "--author", "alice")
	assert.Contains(t, out, "added C1")

	out = mustCLI(t, "next", "auth")
	assert.Contains(t, out, "resolve_blocker")
	assert.Contains(t, out, "C1")

	mustCLI(t, "comment", "resolve", "auth", "C1")
	out = mustCLI(t, "next", "auth")
	assert.Contains(t, out, "create_spec")

	_, err := execCLI(t, "comment", "resolve", "auth", "C1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comment not found")
}

func TestMilestoneAndPrepare(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "core", "Core engine")
	mustCLI(t, "feature", "create", "auth", "Authentication")
	mustCLI(t, "feature", "depend", "auth", "core")

	mustCLI(t, "milestone", "create", "mvp", "Minimum viable product")
	mustCLI(t, "milestone", "add", "mvp", "core")
	mustCLI(t, "milestone", "add", "mvp", "auth")

	out := mustCLI(t, "prepare")
	assert.Contains(t, out, "mvp")
	assert.Contains(t, out, "wave 1")
	assert.Contains(t, out, "wave 2")
	assert.Contains(t, out, "core")
	assert.Contains(t, out, "auth")

	out = mustCLI(t, "milestone", "show", "mvp")
	assert.Contains(t, out, "1. core")
	assert.Contains(t, out, "2. auth")
}

func TestFocusWalksMilestoneOrder(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "core", "Core engine")
	mustCLI(t, "feature", "create", "auth", "Authentication")
	mustCLI(t, "milestone", "create", "mvp", "Minimum viable product")
	mustCLI(t, "milestone", "add", "mvp", "core")
	mustCLI(t, "milestone", "add", "mvp", "auth")

	out := mustCLI(t, "focus")
	assert.Contains(t, out, "core")
	assert.Contains(t, out, "[mvp 1/2]")
	assert.Contains(t, out, "create_spec")
}

func TestStatusOverview(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")
	mustCLI(t, "feature", "block", "auth", "legal review")

	out := mustCLI(t, "status")
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "auth")
	assert.Contains(t, out, "legal review")

	mustCLI(t, "feature", "unblock", "auth")
	out = mustCLI(t, "status")
	assert.NotContains(t, out, "legal review")
}

func TestRunDryRun(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")

	out := mustCLI(t, "run", "auth", "--dry-run")
	assert.Contains(t, out, "create_spec")

	// Dry-run never records in-flight work.
	out = mustCLI(t, "status")
	assert.NotContains(t, out, "in flight")
}

func writeAgentConfig(t *testing.T, command string) {
	t.Helper()
	path := filepath.Join(constants.ProjectDir, constants.ConfigFileName)
	content := "agent:\n  command: \"" + command + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRunDispatchesAgent(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")
	writeAgentConfig(t, "cat >/dev/null")

	out := mustCLI(t, "run", "auth")
	assert.Contains(t, out, "create_spec")

	// The in-flight record is cleared once the run finishes.
	out = mustCLI(t, "status")
	assert.NotContains(t, out, "in flight")
}

func TestRunPassesAgentExitCodeThrough(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")
	writeAgentConfig(t, "exit 7")

	_, err := execCLI(t, "run", "auth")
	require.Error(t, err)
	assert.Equal(t, 7, sdlcerrors.ExitCode(err))
}

func TestRunNotActionableFailsInEveryOutputMode(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")
	mustCLI(t, "artifact", "draft", "auth", "spec", ".sdlc/features/auth/spec.md")

	_, textErr := execCLI(t, "run", "auth")
	require.ErrorIs(t, textErr, sdlcerrors.ErrNotActionable)

	jsonOut, jsonErr := execCLI(t, "-o", "json", "run", "auth")
	require.ErrorIs(t, jsonErr, sdlcerrors.ErrNotActionable)
	assert.Contains(t, jsonOut, "wait_for_approval")

	assert.Equal(t, sdlcerrors.ExitCode(textErr), sdlcerrors.ExitCode(jsonErr))
}

func TestStatusTableAlignsWithColorEnabled(t *testing.T) {
	chdirTemp(t)
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")

	out := mustCLI(t, "status")
	var row string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "auth") {
			row = line
			break
		}
	}
	require.NotEmpty(t, row, "status output:\n%s", out)
	assert.NotContains(t, row, "\x1b[")
	assert.Regexp(t, `^auth\s+draft\s+0/0\s+Authentication`, row)
}

func TestRunRetriesFlakyShellGate(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")

	// The gate fails on its first attempt and passes on the retry.
	config := `agent:
  command: "cat >/dev/null"
gates:
  per_action:
    create_spec:
      - name: flaky
        kind: shell
        command: "test -f attempted || { touch attempted; exit 1; }"
        max_retries: 1
`
	path := filepath.Join(constants.ProjectDir, constants.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	out := mustCLI(t, "run", "auth")
	assert.Contains(t, out, "gate flaky")
	assert.Contains(t, out, "passed (attempt 2)")
}

func TestRunHaltsAtStepBackGate(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")

	config := `agent:
  command: "cat >/dev/null"
gates:
  per_action:
    create_spec:
      - name: reflect
        kind: step_back
        questions:
          - "Is the scope still right?"
`
	path := filepath.Join(constants.ProjectDir, constants.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	out, err := execCLI(t, "run", "auth")
	require.Error(t, err)
	assert.Equal(t, sdlcerrors.ExitHumanGateRequired, sdlcerrors.ExitCode(err))
	assert.Contains(t, out, "awaiting human")
	assert.Contains(t, out, "Is the scope still right?")
}

func TestFeatureTransitionEnforcesExitCriteria(t *testing.T) {
	chdirTemp(t)
	mustCLI(t, "init", "demo")
	mustCLI(t, "feature", "create", "auth", "Authentication")

	_, err := execCLI(t, "feature", "transition", "auth", "specified")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec")

	mustCLI(t, "artifact", "waive", "auth", "spec", "spike, no spec needed")
	out := mustCLI(t, "feature", "show", "auth")
	assert.Contains(t, out, "specified")
}
