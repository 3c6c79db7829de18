package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowspec-dev/flowspec/internal/materializer"
	"github.com/flowspec-dev/flowspec/internal/workflowconfig"
)

func TestSeedWorkflowDocumentWritesWhenAbsent(t *testing.T) {
	dir := t.TempDir()

	seeded, err := seedWorkflowDocument(dir)
	require.NoError(t, err)
	require.True(t, seeded, "expected seedWorkflowDocument to report true for a fresh project")

	path := filepath.Join(dir, "flowspec_workflow.yml")
	_, err = os.Stat(path)
	require.NoError(t, err)

	model, findings := workflowconfig.Load(path)
	require.False(t, findings.HasErrors(), "seeded document failed validation: %v", findings.Errors())
	assert.NotEmpty(t, model.States())
}

func TestSeedWorkflowDocumentSkipsWhenPresent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flowspec_workflow.yml"), []byte("version: \"1\"\n"), 0o644))

	seeded, err := seedWorkflowDocument(dir)
	require.NoError(t, err)
	assert.False(t, seeded, "expected seedWorkflowDocument to report false when a document already exists")
}

func TestResolveAgentProfilesDefaultsToAllKeys(t *testing.T) {
	profiles, err := resolveAgentProfiles(nil)
	require.NoError(t, err)
	assert.Len(t, profiles, len(materializer.AllKeys()))
}

func TestResolveAgentProfilesRejectsUnknownKey(t *testing.T) {
	_, err := resolveAgentProfiles([]string{"claude-code", "not-a-real-agent"})
	assert.Error(t, err)
}

func TestTemplatesCommandsDirJoinsUnderRoot(t *testing.T) {
	got := templatesCommandsDir("/tmp/project")
	want := filepath.Join("/tmp/project", "templates", "commands")
	assert.Equal(t, want, got)
}
