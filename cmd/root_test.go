package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cellebyte/mpsync/pkg/errors"
	"github.com/Cellebyte/mpsync/pkg/sync"
)

func TestFlagDefaults(t *testing.T) {
	cmd := New()

	port, err := cmd.Flags().GetString("port")
	require.NoError(t, err)
	assert.Equal(t, sync.DefaultPort, port)

	folder, err := cmd.Flags().GetString("folder")
	require.NoError(t, err)
	assert.Empty(t, folder)

	for _, flag := range []string{"verbose", "reset", "caching"} {
		value, err := cmd.Flags().GetBool(flag)
		require.NoError(t, err)
		assert.False(t, value, flag)
	}
}

func TestFriendlyPortError(t *testing.T) {
	assert.NoError(t, friendlyPortError(nil))

	// A missing port is rewritten, however deeply it's wrapped.
	missing := errors.WithContext(errors.WithContext(
		errors.FileNotFound{Path: "/dev/ttyUSB0"}, "check port"), "connect")
	friendly, ok := errors.RootCause(friendlyPortError(missing)).(errors.FriendlyError)
	require.True(t, ok)
	assert.Contains(t, friendly.Message, `Port "/dev/ttyUSB0" does not exist!`)

	// Everything else passes through untouched.
	other := errors.New("upload failed")
	assert.Equal(t, other, friendlyPortError(other))
}

func TestResolveFolder(t *testing.T) {
	t.Run("DefaultsToWorkingDirectory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		folder, err := resolveFolder("")
		require.NoError(t, err)
		assert.Equal(t, wd, folder)
	})

	t.Run("MakesRelativePathsAbsolute", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		folder, err := resolveFolder("src")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "src"), folder)
	})

	t.Run("ExpandsHome", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		folder, err := resolveFolder("~/project")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "project"), folder)
	})
}
