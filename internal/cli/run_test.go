package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/declutter/internal/cli"
	"github.com/macropower/declutter/pkg/config"
)

// execute runs the root command and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

// fixture creates a directory with the given files and a config file
// auditing it with rules.
func fixture(t *testing.T, rules string, files ...string) (string, string) {
	t.Helper()

	base := t.TempDir()
	dir := filepath.Join(base, "audited")

	require.NoError(t, os.MkdirAll(dir, 0o755))

	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	configPath := filepath.Join(base, "declutter.yaml")
	require.NoError(t, os.WriteFile(configPath, fmt.Appendf(nil, "%q:\n%s", dir, rules), 0o644))

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	return configPath, resolved
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("clean", func(t *testing.T) {
		t.Parallel()

		configPath, _ := fixture(t, "  allow-type: .go\n", "a.go", "sub/b.go")

		out, err := execute(t, configPath, "--log-level", "error")
		require.NoError(t, err)
		assert.Equal(t, "Checking for clutter\n> No clutter! Well done!\n", out)
		assert.Equal(t, 0, cli.ExitCode(err))
	})

	t.Run("clutter", func(t *testing.T) {
		t.Parallel()

		configPath, dir := fixture(t, "  allow-type: .go\n", "a.go", "notes.txt")

		out, err := execute(t, "run", configPath, "--quiet")
		require.ErrorIs(t, err, cli.ErrClutterFound)
		assert.Equal(t, "> "+filepath.Join(dir, "notes.txt")+"\n", out)
		assert.Equal(t, 1, cli.ExitCode(err))
	})

	t.Run("entry error", func(t *testing.T) {
		t.Parallel()

		configPath, _ := fixture(t, "  allow-type: txt\n", "a.go")

		out, err := execute(t, "--config", configPath)
		require.ErrorIs(t, err, cli.ErrAuditFailed)
		require.ErrorIs(t, err, config.ErrInvalidExtension)
		assert.Contains(t, out, "> Error when parsing yaml under path ")
		assert.Equal(t, 2, cli.ExitCode(err))
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		configPath, _ := fixture(t, "  allow-name: keep\n", "keep", "drop")

		out, err := execute(t, configPath, "--format", "json")
		require.ErrorIs(t, err, cli.ErrClutterFound)
		assert.Contains(t, out, `"status": "clutter found"`)
		assert.Contains(t, out, `"violations": 1`)
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, filepath.Join(t.TempDir(), "none.yaml"))
		require.ErrorIs(t, err, config.ErrReadConfig)
		assert.Contains(t, err.Error(), "error when reading config")
		assert.Equal(t, 2, cli.ExitCode(err))
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		configPath, _ := fixture(t, "  allow-name: keep\n")

		_, err := execute(t, configPath, "--format", "xml")
		require.Error(t, err)
		assert.Equal(t, 2, cli.ExitCode(err))
	})

	t.Run("too many args", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "run", "a.yaml", "b.yaml")
		require.Error(t, err)
		assert.Equal(t, 2, cli.ExitCode(err))
	})
}

func TestRun_Strict(t *testing.T) {
	t.Parallel()

	configPath, _ := fixture(t, "  allow-type: .go\n  bogus: 1\n", "a.go")

	// Unknown keys fail the entry without --strict.
	_, err := execute(t, configPath)
	require.ErrorIs(t, err, cli.ErrAuditFailed)

	// With --strict the whole document is rejected up front.
	_, err = execute(t, configPath, "--strict")
	require.Error(t, err)
	require.NotErrorIs(t, err, cli.ErrAuditFailed)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestRun_ShowConfig(t *testing.T) {
	t.Parallel()

	configPath, _ := fixture(t, "  allow-name: [README.md]\n  max-size: 1KiB\n")

	out, err := execute(t, configPath, "--show-config")
	require.NoError(t, err)
	assert.Contains(t, out, "recursive: true")
	assert.Contains(t, out, "- README.md")
	assert.Contains(t, out, "max-size: 1024")
	assert.Contains(t, out, "- dir")
}

func TestRun_WriteConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "conf", "declutter.yaml")

	_, err := execute(t, path, "--write-config", "--log-level", "error")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), got)
	assert.FileExists(t, filepath.Join(filepath.Dir(path), "declutter.v1.json"))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cli.ExitClean, cli.ExitCode(nil))
	assert.Equal(t, cli.ExitClutter, cli.ExitCode(fmt.Errorf("wrap: %w", cli.ErrClutterFound)))
	assert.Equal(t, cli.ExitError, cli.ExitCode(cli.ErrAuditFailed))
	assert.Equal(t, cli.ExitError, cli.ExitCode(os.ErrNotExist))
}
