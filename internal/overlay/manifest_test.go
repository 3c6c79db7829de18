package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadManifestRoundTrip(t *testing.T) {
	root := t.TempDir()
	m := Manifest{
		Base: ReleaseRecord{
			Owner:        "github",
			Repo:         "spec-kit",
			Tag:          "v1.2.0",
			DigestSha256: "abc123",
		},
		Extension: &ReleaseRecord{
			Owner:        "flowspec-dev",
			Repo:         "flowspec-extension",
			Tag:          "v0.3.0",
			DigestSha256: "def456",
		},
		InstalledAtUTC: "2026-01-01T00:00:00Z",
		EngineVersion:  "v0.0.0-test",
	}

	require.NoError(t, WriteManifest(root, m))

	got, err := ReadManifest(root)
	require.NoError(t, err)
	assert.Equal(t, m.Base, got.Base)
	require.NotNil(t, got.Extension)
	assert.Equal(t, *m.Extension, *got.Extension)
	assert.Equal(t, m.EngineVersion, got.EngineVersion)
}

func TestWriteManifestOmitsExtensionWhenAbsent(t *testing.T) {
	root := t.TempDir()
	m := Manifest{
		Base:           ReleaseRecord{Owner: "github", Repo: "spec-kit", Tag: "v1.0.0", DigestSha256: "abc"},
		InstalledAtUTC: "2026-01-01T00:00:00Z",
		EngineVersion:  "dev",
	}

	require.NoError(t, WriteManifest(root, m))

	got, err := ReadManifest(root)
	require.NoError(t, err)
	assert.Nil(t, got.Extension)
}

func TestReadManifestMissingFile(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.Error(t, err)
}
