package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rintaro/es6link/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := config.Load("", "", "")
	require.NoError(t, err)
	require.Equal(t, ".", cfg.Root)
	require.Equal(t, "", cfg.Output)
}

func TestLoad_FlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "es6link.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("root: from-file\noutput: out-from-file.js\n"), 0o644))

	cfg, err := config.Load(cfgPath, "", "")
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.Root)
	require.Equal(t, "out-from-file.js", cfg.Output)

	cfg, err = config.Load(cfgPath, "from-flag", "")
	require.NoError(t, err)
	require.Equal(t, "from-flag", cfg.Root)
	require.Equal(t, "out-from-file.js", cfg.Output)
}
