package backlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAllocatesSequentialIDs(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	first, err := s.Create("First task", CreateParams{Status: "To Do"})
	require.NoError(t, err)
	second, err := s.Create("Second task", CreateParams{Status: "To Do"})
	require.NoError(t, err)

	assert.Equal(t, "task-1", first.ID)
	assert.Equal(t, "task-2", second.ID)
}

func TestCreateScansArchiveForMaxID(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	t1, err := s.Create("Old task", CreateParams{Status: "To Do"})
	require.NoError(t, err)
	_, err = s.Archive(t1.ID)
	require.NoError(t, err)

	next, err := s.Create("New task", CreateParams{Status: "To Do"})
	require.NoError(t, err)
	assert.Equal(t, "task-2", next.ID, "archive must count toward max")
}

func TestGetReturnsNilForMissingTask(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	task, err := s.Get("task-999")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestListFiltersByStatusAndLabel(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Create("Task A", CreateParams{Status: "To Do", Labels: []string{"US-1"}})
	require.NoError(t, err)
	_, err = s.Create("Task B", CreateParams{Status: "Done", Labels: []string{"US-2"}})
	require.NoError(t, err)

	todo, err := s.List(ListFilters{Status: "To Do"})
	require.NoError(t, err)
	require.Len(t, todo, 1)
	assert.Equal(t, "Task A", todo[0].Title)

	byLabel, err := s.List(ListFilters{Label: "US-2"})
	require.NoError(t, err)
	require.Len(t, byLabel, 1)
	assert.Equal(t, "Task B", byLabel[0].Title)
}

func TestSearchRanksExactTitleAboveSubstring(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Create("login", CreateParams{Status: "To Do"})
	require.NoError(t, err)
	_, err = s.Create("fix login redirect bug", CreateParams{Status: "To Do"})
	require.NoError(t, err)

	results, err := s.Search("login")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "login", results[0].Task.Title, "expected exact title match first")
}

func TestEditChecksAcceptanceCriterion(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	task, err := s.Create("Task", CreateParams{
		Status:             "To Do",
		AcceptanceCriteria: []string{"first", "second"},
	})
	require.NoError(t, err)

	updated, err := s.Edit(task.ID, Mutations{CheckAC: []int{1}})
	require.NoError(t, err)
	assert.True(t, updated.AcceptanceCriteria[0].Checked, "expected AC 1 to be checked")
	assert.False(t, updated.AcceptanceCriteria[1].Checked, "expected AC 2 to remain unchecked")
}

func TestEditOutOfRangeACIndexFails(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	task, err := s.Create("Task", CreateParams{Status: "To Do", AcceptanceCriteria: []string{"only one"}})
	require.NoError(t, err)

	_, err = s.Edit(task.ID, Mutations{CheckAC: []int{5}})
	require.Error(t, err)
	backlogErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, RuleACIndexOutOfRange, backlogErr.Rule)
}

func TestEditAppendsNotesAndUpdatesTimestamp(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	task, err := s.Create("Task", CreateParams{Status: "To Do"})
	require.NoError(t, err)
	originalUpdatedAt := task.UpdatedAt

	// Timestamps have one-second resolution; cross a second boundary so the
	// refreshed updated_at is observably different.
	time.Sleep(1100 * time.Millisecond)

	updated, err := s.Edit(task.ID, Mutations{
		NotesAppend: &NoteAppend{Author: "@carol", Text: "Looked into this."},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Notes)
	assert.NotEqual(t, originalUpdatedAt, updated.UpdatedAt)
}

func TestEditUnknownTaskFails(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Edit("task-999", Mutations{})
	require.Error(t, err)
	backlogErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, RuleTaskNotFound, backlogErr.Rule)
}

func TestArchiveMovesFileWithoutModifyingContent(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	task, err := s.Create("Task", CreateParams{Status: "Done"})
	require.NoError(t, err)

	archived, err := s.Archive(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Done", archived.Status, "expected status unchanged by archival")

	active, err := s.List(ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, active, "expected no active tasks after archive")
}

func TestArchiveManyArchivesDoneTasks(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Create("Done task", CreateParams{Status: "Done"})
	require.NoError(t, err)
	_, err = s.Create("Pending task", CreateParams{Status: "To Do"})
	require.NoError(t, err)

	archived, err := s.ArchiveMany(ArchiveFilter{})
	require.NoError(t, err)
	require.Len(t, archived, 1)

	remaining, err := s.List(ListFilters{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Pending task", remaining[0].Title)
}
