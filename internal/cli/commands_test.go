package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// env isolates the config layers and builds a store/build fixture
type env struct {
	srcDir     string
	configRoot string
	storeDir   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	xdg.Reload()

	srcDir := t.TempDir()
	configRoot := t.TempDir()
	return &env{
		srcDir:     srcDir,
		configRoot: configRoot,
		storeDir:   filepath.Join(configRoot, "testbuild"),
	}
}

func (e *env) flags() []string {
	return []string{"-S", e.srcDir, "-C", e.configRoot, "-t", "testbuild"}
}

func (e *env) writeStored(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(e.storeDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(e.storeDir, name), []byte(content), 0644))
}

func TestListCommand(t *testing.T) {
	e := newEnv(t)
	e.writeStored(t, "config_b", "b\n")
	e.writeStored(t, "config_a", "a\n")
	e.writeStored(t, "README", "x\n")

	out, err := run(t, append(e.flags(), "list")...)
	require.NoError(t, err)
	assert.Equal(t, "config_a\nconfig_b\n", out)
}

func TestListLongFormat(t *testing.T) {
	e := newEnv(t)
	e.writeStored(t, "config_a", "a\n")

	out, err := run(t, append(e.flags(), "list", "--long")...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.storeDir, "config_a")+"\n", out)
}

func TestListAlias(t *testing.T) {
	e := newEnv(t)
	e.writeStored(t, "config_a", "a\n")

	out, err := run(t, append(e.flags(), "l")...)
	require.NoError(t, err)
	assert.Equal(t, "config_a\n", out)
}

func TestListMissingStoreFails(t *testing.T) {
	e := newEnv(t)

	_, err := run(t, append(e.flags(), "list")...)
	assert.Error(t, err)
}

func TestConfigCommandRestoresNamed(t *testing.T) {
	e := newEnv(t)
	e.writeStored(t, "config_2024-01-01", "CONFIG_A=y\n")

	_, err := run(t, append(e.flags(), "config", "config_2024-01-01")...)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(e.srcDir, ".config"))
	require.NoError(t, err)
	assert.Equal(t, "CONFIG_A=y\n", string(content))
}

func TestDefaultActionRestoresLatest(t *testing.T) {
	e := newEnv(t)
	e.writeStored(t, "config_2024-01-01", "CONFIG_A=y\n")
	require.NoError(t, os.Symlink("config_2024-01-01", filepath.Join(e.storeDir, "latest")))

	_, err := run(t, e.flags()...)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(e.srcDir, ".config"))
	require.NoError(t, err)
	assert.Equal(t, "CONFIG_A=y\n", string(content))
}

func TestConfigCommandMissingName(t *testing.T) {
	e := newEnv(t)
	e.writeStored(t, "config_a", "a\n")

	_, err := run(t, append(e.flags(), "co", "no-such-name")...)
	assert.Error(t, err)
}

func TestBackupCommand(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.srcDir, ".config"), []byte("CONFIG_B=m\n"), 0644))

	out, err := run(t, append(e.flags(), "backup", "myconfig")...)
	require.NoError(t, err)
	assert.Contains(t, out, "-> "+filepath.Join(e.storeDir, "myconfig"))

	content, err := os.ReadFile(filepath.Join(e.storeDir, "myconfig"))
	require.NoError(t, err)
	assert.Equal(t, "CONFIG_B=m\n", string(content))

	target, err := os.Readlink(filepath.Join(e.storeDir, "latest"))
	require.NoError(t, err)
	assert.Equal(t, "myconfig", target)
}

func TestBackupAlias(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.srcDir, ".config"), []byte("CONFIG_B=m\n"), 0644))

	_, err := run(t, append(e.flags(), "ci", "myconfig")...)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(e.storeDir, "myconfig"))
	assert.NoError(t, statErr)
}

func TestExplicitTypeMismatchFails(t *testing.T) {
	e := newEnv(t)

	// no buildroot Makefile in srcDir
	_, err := run(t, "-S", e.srcDir, "-C", e.configRoot, "-t", "buildroot", "list")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "kconfig-select version")
}
