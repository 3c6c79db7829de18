package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowspec-dev/flowspec/internal/backlog"
)

// chdirToProject creates a tempdir with a marker file so cli.FindProjectRoot
// resolves to it, switches into it, and restores the original working
// directory when the test ends.
func chdirToProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flowspec_workflow.yml"), []byte("version: \"1\"\n"), 0o644))
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(original) })
	return dir
}

func resetTaskFlags() {
	taskDescription = ""
	taskAC = nil
	taskLabels = nil
	taskPriority = ""
	taskStatus = ""
	taskAssignee = nil
	taskNote = ""
	taskNoteAuthor = "@user"
	taskCheckAC = nil
	taskUncheckAC = nil
	taskLabelFilter = ""
	taskAssigneeFilter = ""
}

func TestRunTaskCreateAndList(t *testing.T) {
	chdirToProject(t)
	defer resetTaskFlags()

	resetTaskFlags()
	taskDescription = "ship it"
	taskAC = []string{"criterion one"}
	taskPriority = "high"

	require.NoError(t, runTaskCreate(taskCreateCmd, []string{"Fix the login bug"}))

	resetTaskFlags()
	require.NoError(t, runTaskList(taskListCmd, nil))
}

func TestRunTaskCreateThenEditChecksAcceptanceCriterion(t *testing.T) {
	root := chdirToProject(t)
	defer resetTaskFlags()

	resetTaskFlags()
	taskAC = []string{"write tests", "pass review"}
	require.NoError(t, runTaskCreate(taskCreateCmd, []string{"Add retry logic"}))

	store, err := backlog.New(root)
	require.NoError(t, err)
	tasks, err := store.List(backlog.ListFilters{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	resetTaskFlags()
	taskCheckAC = []int{1}
	cmd := taskEditCmd
	require.NoError(t, cmd.Flags().Set("check", "1"))
	require.NoError(t, runTaskEdit(cmd, []string{id}))

	updated, err := store.Get(id)
	require.NoError(t, err)
	checked, total := updated.Progress()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, checked)
}

func TestRunTaskArchiveRoundTrips(t *testing.T) {
	root := chdirToProject(t)
	defer resetTaskFlags()

	resetTaskFlags()
	require.NoError(t, runTaskCreate(taskCreateCmd, []string{"Retire the old dashboard"}))

	store, err := backlog.New(root)
	require.NoError(t, err)
	tasks, err := store.List(backlog.ListFilters{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	resetTaskFlags()
	require.NoError(t, runTaskArchive(taskArchiveCmd, []string{tasks[0].ID}))

	remaining, err := store.List(backlog.ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, remaining, "expected archived task to no longer appear in List")
}

func TestRunTaskSearchFindsCreatedTask(t *testing.T) {
	chdirToProject(t)
	defer resetTaskFlags()

	resetTaskFlags()
	taskDescription = "a task about exporting CSV reports"
	require.NoError(t, runTaskCreate(taskCreateCmd, []string{"Export CSV reports"}))

	resetTaskFlags()
	require.NoError(t, runTaskSearch(taskSearchCmd, []string{"CSV"}))
}
