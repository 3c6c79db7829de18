package overlay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestFileName is where the install manifest is written, relative to
// the project root.
const ManifestFileName = ".specify/install-manifest.json"

// EngineVersion is the flowspec build version stamped into every manifest.
// cli.SetVersion calls SetEngineVersion during startup, before any
// Install/Upgrade runs.
var EngineVersion = "dev"

// SetEngineVersion records the running binary's version for inclusion in
// future manifests.
func SetEngineVersion(version string) {
	EngineVersion = version
}

// ReleaseRecord names one fetched release: its repository coordinates, the
// tag it resolved to, and the sha256 digest of the archive that was merged.
type ReleaseRecord struct {
	Owner        string `json:"owner"`
	Repo         string `json:"repo"`
	Tag          string `json:"tag"`
	DigestSha256 string `json:"digest_sha256"`
}

// Manifest is the persisted record of one install/upgrade operation.
type Manifest struct {
	Base           ReleaseRecord  `json:"base"`
	Extension      *ReleaseRecord `json:"extension,omitempty"`
	InstalledAtUTC string         `json:"installed_at_utc"`
	EngineVersion  string         `json:"engine_version"`
	Entries        []EntryOutcome `json:"entries,omitempty"`
}

// WriteManifest serializes m to <projectRoot>/.specify/install-manifest.json.
func WriteManifest(projectRoot string, m Manifest) error {
	path := filepath.Join(projectRoot, ManifestFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalizing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest at <projectRoot>/.specify/install-manifest.json.
func ReadManifest(projectRoot string) (Manifest, error) {
	path := filepath.Join(projectRoot, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
