package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	require.NotNil(t, RootCmd)
	assert.Equal(t, "flowspec", RootCmd.Use)
	assert.Equal(t, "dev", RootCmd.Version)
}

func TestGlobalConfigDefaults(t *testing.T) {
	require.NotNil(t, GlobalConfig)
	assert.False(t, GlobalConfig.JSON)
	assert.False(t, GlobalConfig.NoColor)
	assert.False(t, GlobalConfig.Verbose)
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()

	markerPath := filepath.Join(tmpDir, "flowspec_workflow.yml")
	require.NoError(t, os.WriteFile(markerPath, []byte("version: \"1\"\n"), 0o644))

	subdir3 := filepath.Join(tmpDir, "subdir1", "subdir2", "subdir3")
	require.NoError(t, os.MkdirAll(subdir3, 0o755))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, os.Chdir(originalWd), "failed to restore working directory")
	}()

	tests := []struct {
		name         string
		startDir     string
		expectedRoot string
	}{
		{name: "from root directory", startDir: tmpDir, expectedRoot: tmpDir},
		{name: "from first level subdirectory", startDir: filepath.Join(tmpDir, "subdir1"), expectedRoot: tmpDir},
		{name: "from deeply nested subdirectory", startDir: subdir3, expectedRoot: tmpDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.Chdir(tt.startDir))

			root, err := FindProjectRoot()
			require.NoError(t, err)
			assert.Equal(t, tt.expectedRoot, root)
		})
	}
}

func TestFindProjectRootAcceptsLegacyMarker(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "speckit_workflow.yml"), []byte("version: \"1\"\n"), 0o644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	require.NoError(t, os.Chdir(tmpDir))

	root, err := FindProjectRoot()
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}
