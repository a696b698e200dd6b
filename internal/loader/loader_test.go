package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rintaro/es6link/internal/loader"
	"github.com/rintaro/es6link/internal/logger"
)

func TestMapLoader_ExtensionFallback(t *testing.T) {
	ld := loader.NewMapLoader(map[string]string{
		"dir/a.js":       "",
		"dir/b/index.js": "",
	})

	addr, ok := ld.Locate("./a", &logger.Source{KeyPath: "dir/entry.js"})
	require.True(t, ok)
	require.Equal(t, loader.Address("dir/a.js"), addr)

	addr, ok = ld.Locate("./b", &logger.Source{KeyPath: "dir/entry.js"})
	require.True(t, ok)
	require.Equal(t, loader.Address("dir/b/index.js"), addr)

	_, ok = ld.Locate("./nope", &logger.Source{KeyPath: "dir/entry.js"})
	require.False(t, ok)
}

func TestMapLoader_CanonicalizeUsesModulePrefix(t *testing.T) {
	ld := loader.NewMapLoader(map[string]string{"dir/a.js": ""})
	name := ld.Canonicalize(loader.Address("dir/a.js"))
	require.Equal(t, loader.ModuleName("module$dir$a"), name)
}

func TestFSLoader_ExtensionFallback(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "index.js"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.mjs"), []byte(""), 0o644))

	fl := loader.NewFSLoader(root)

	addr, ok := fl.Locate("./sub", &logger.Source{KeyPath: filepath.Join(root, "entry.js")})
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "sub", "index.js"), string(addr))

	addr, ok = fl.Locate("./a", &logger.Source{KeyPath: filepath.Join(root, "entry.js")})
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "a.mjs"), string(addr))
}

func TestFSLoader_CanonicalizeIsRelativeToRoot(t *testing.T) {
	root := t.TempDir()
	fl := loader.NewFSLoader(root)
	name := fl.Canonicalize(loader.Address(filepath.Join(root, "sub", "a.js")))
	require.Equal(t, loader.ModuleName("module$sub$a"), name)
}
