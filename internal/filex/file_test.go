package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveFilePath_CreatesParentDirectory(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "state", "authdesk.db")

	got, err := ResolveFilePath(path)
	require.NoError(t, err)
	require.Equal(t, path, got)

	fi, err := os.Stat(filepath.Join(tmp, "state"))
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "the file itself is not created")
}

func TestResolveFilePath_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "authdesk.db")

	first, err := ResolveFilePath(path)
	require.NoError(t, err)
	second, err := ResolveFilePath(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolveFilePath_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	got, err := ResolveFilePath("~/.authdesk/authdesk.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".authdesk", "authdesk.db"), got)

	fi, err := os.Stat(filepath.Join(home, ".authdesk"))
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestResolveFilePath_SQLiteSpecialNames(t *testing.T) {
	for _, p := range []string{":memory:", "file:test.db?mode=memory"} {
		got, err := ResolveFilePath(p)
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
}

func TestResolveFilePath_FailsIfParentIsAFile(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "state")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := ResolveFilePath(filepath.Join(blocker, "authdesk.db"))
	require.Error(t, err)
}
