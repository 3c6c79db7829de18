package overlay

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CompatibilityFileName is the extension-declared range over the base
// version, read from the extension's own staging tree.
const CompatibilityFileName = ".spec-kit-compatibility.yml"

// Compatibility is the parsed form of .spec-kit-compatibility.yml.
type Compatibility struct {
	Min         string `yaml:"min"`
	Max         string `yaml:"max"`
	Tested      string `yaml:"tested"`
	Recommended string `yaml:"recommended"`
}

// ReadCompatibility loads the compatibility declaration from an extension's
// staging directory, if present. A missing file is not an error: the
// engine simply skips the range check.
func ReadCompatibility(extensionStagingDir string) (*Compatibility, error) {
	path := filepath.Join(extensionStagingDir, CompatibilityFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", CompatibilityFileName, err)
	}

	var c Compatibility
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", CompatibilityFileName, err)
	}
	return &c, nil
}

// CheckRange reports whether baseTag falls within [c.Min, c.Max] using
// semantic version component comparison. A warning message is returned
// (non-empty) rather than an error when the tag falls outside the range:
// the engine surfaces the warning but still proceeds with install.
func (c *Compatibility) CheckRange(baseTag string) (warning string) {
	if c == nil {
		return ""
	}
	if c.Min != "" && compareVersions(baseTag, c.Min) < 0 {
		return fmt.Sprintf("base version %s is below the extension's declared minimum %s", baseTag, c.Min)
	}
	if c.Max != "" && compareVersions(baseTag, c.Max) > 0 {
		return fmt.Sprintf("base version %s is above the extension's declared maximum %s", baseTag, c.Max)
	}
	return ""
}
