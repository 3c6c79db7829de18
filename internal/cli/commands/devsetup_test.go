package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedTemplateCommand(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, "templates", "commands", "flow")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "---\ndescription: draft a spec\n---\nRead the task and draft a spec for $ARGUMENTS.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specify.md"), []byte(content), 0o644))
}

func TestRunDevSetupThenValidatePasses(t *testing.T) {
	root := chdirToProject(t)
	seedTemplateCommand(t, root)

	devSetupForce = false
	require.NoError(t, runDevSetup(devSetupCmd, nil))
	require.NoError(t, runValidateDevSetup(validateDevSetupCmd, nil), "expected a clean dev_setup to validate")
}

func TestRunDevSetupForceRemovesExistingCommandDir(t *testing.T) {
	root := chdirToProject(t)
	seedTemplateCommand(t, root)

	devSetupForce = false
	require.NoError(t, runDevSetup(devSetupCmd, nil))

	devSetupForce = true
	defer func() { devSetupForce = false }()
	require.NoError(t, runDevSetup(devSetupCmd, nil))
}
