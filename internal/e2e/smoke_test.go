package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runRT(t, binaryPath, home, "config", "init", "--guild", "123456789012345678")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Wrote settings to")

	_, stderr, err = runRT(t, binaryPath, home, "config", "set-rules", "--max-votes", "2", "--winners", "5")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err = runRT(t, binaryPath, home, "config", "validate")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Settings OK")

	settings, err := os.ReadFile(filepath.Join(home, ".reaction-tally", "settings.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(settings), "max_votes_per_voter = 2")
	assert.Contains(t, string(settings), "number_of_winners = 5")
}

func TestSmokeTallyWithoutTokenExitsNonZero(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	_, stderr, err := runRT(t, binaryPath, home, "config", "init", "--guild", "123456789012345678")
	require.NoError(t, err, "stderr: %s", stderr)

	_, stderr, err = runRT(t, binaryPath, home, "tally", "--channel", "42")
	require.Error(t, err)
	assert.Contains(t, stderr, "bot token")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "rt-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/rt")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build rt binary: %s", string(output))
	return binaryPath
}

func runRT(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
