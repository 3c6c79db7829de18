package materializer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DevSetup creates symlinks (not copies) from <repo>/<agent.command_dir>/...
// to <repo>/templates/commands/..., mirroring the template tree's
// directory structure. Source-repository-only mode: enforces that the template tree is the single source of
// truth instead of per-agent copies drifting independently.
func DevSetup(repoRoot string, profiles []AgentProfile, force bool) error {
	templatesRoot := filepath.Join(repoRoot, "templates", "commands")

	for _, profile := range profiles {
		commandDir := filepath.Join(repoRoot, profile.CommandDir)

		if force {
			if err := os.RemoveAll(commandDir); err != nil {
				return fmt.Errorf("removing %s: %w", commandDir, err)
			}
		}

		err := filepath.Walk(templatesRoot, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if info.IsDir() || !strings.HasSuffix(path, ".md") {
				return nil
			}

			rel, err := filepath.Rel(templatesRoot, path)
			if err != nil {
				return err
			}
			namespace, name := splitTemplatePath(rel)
			linkPath := filepath.Join(commandDir, namespace, name+"."+profile.FileExtension)

			if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
				return err
			}
			if _, err := os.Lstat(linkPath); err == nil {
				if err := os.Remove(linkPath); err != nil {
					return fmt.Errorf("removing existing entry %s: %w", linkPath, err)
				}
			}

			absTemplate, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			return os.Symlink(absTemplate, linkPath)
		})
		if err != nil {
			return fmt.Errorf("dev_setup for %s: %w", profile.Key, err)
		}
	}

	return nil
}

// DevSetupViolation is one invariant failure reported by ValidateDevSetup.
type DevSetupViolation struct {
	Path   string
	Reason string
}

// ValidateDevSetup checks the dev_setup invariants: no regular .md files, every symlink resolves
// under templates/commands/, and no broken symlinks. Intended to run as a
// pre-commit hook.
func ValidateDevSetup(repoRoot string, profiles []AgentProfile) ([]DevSetupViolation, error) {
	templatesRoot, err := filepath.Abs(filepath.Join(repoRoot, "templates", "commands"))
	if err != nil {
		return nil, err
	}

	var violations []DevSetupViolation

	for _, profile := range profiles {
		commandDir := filepath.Join(repoRoot, profile.CommandDir)
		if _, err := os.Stat(commandDir); os.IsNotExist(err) {
			continue
		}

		err := filepath.Walk(commandDir, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if info.IsDir() {
				return nil
			}

			lstat, err := os.Lstat(path)
			if err != nil {
				return err
			}

			if lstat.Mode()&os.ModeSymlink == 0 {
				violations = append(violations, DevSetupViolation{
					Path:   path,
					Reason: "regular file present; only symlinks to templates/commands/ are permitted",
				})
				return nil
			}

			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				violations = append(violations, DevSetupViolation{Path: path, Reason: "broken symlink"})
				return nil
			}

			if !strings.HasPrefix(target, templatesRoot+string(os.PathSeparator)) {
				violations = append(violations, DevSetupViolation{
					Path:   path,
					Reason: fmt.Sprintf("symlink resolves outside templates/commands/: %s", target),
				})
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("validating dev_setup for %s: %w", profile.Key, err)
		}
	}

	return violations, nil
}
