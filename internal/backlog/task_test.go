package backlog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTask = `---
id: task-1
title: Write the login form
status: To Do
priority: high
assignee:
    - "@alice"
labels:
    - US-42
dependencies: []
created_at: 2026-01-01T00:00:00Z
updated_at: 2026-01-01T00:00:00Z
---

## Description

Build the login form per the design doc.

## Acceptance Criteria

- [x] Form renders
- [ ] Validation errors shown inline
- [ ] Submits to /api/login

## Notes

Initial notes.
`

func TestParseTaskFileExtractsFrontmatterAndSections(t *testing.T) {
	task, err := ParseTaskFile(sampleTask)
	require.NoError(t, err)
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, "Write the login form", task.Title)
	assert.Equal(t, PriorityHigh, task.Priority)
	require.Len(t, task.Assignee, 1)
	assert.Equal(t, "@alice", task.Assignee[0])
	require.Len(t, task.AcceptanceCriteria, 3)
	assert.True(t, task.AcceptanceCriteria[0].Checked, "expected first AC checked")
	assert.False(t, task.AcceptanceCriteria[1].Checked, "expected second AC unchecked")
	assert.Contains(t, task.Description, "login form")
	assert.Contains(t, task.Notes, "Initial notes")
}

func TestParseTaskFileDefaultsPriorityToMedium(t *testing.T) {
	const noPriority = `---
id: task-2
title: Something
status: To Do
---

## Description

## Acceptance Criteria

## Notes
`
	task, err := ParseTaskFile(noPriority)
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, task.Priority)
}

func TestTaskProgressUndefinedWhenNoAcceptanceCriteria(t *testing.T) {
	task := Task{}
	checked, total := task.Progress()
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, checked)
}

func TestTaskRenderRoundTripsThroughParse(t *testing.T) {
	task, err := ParseTaskFile(sampleTask)
	require.NoError(t, err)

	rendered, err := task.Render()
	require.NoError(t, err)

	reparsed, err := ParseTaskFile(rendered)
	require.NoError(t, err)
	assert.Equal(t, task.ID, reparsed.ID)
	assert.Equal(t, task.Title, reparsed.Title)
	assert.Len(t, reparsed.AcceptanceCriteria, len(task.AcceptanceCriteria))
}

func TestTaskRenderPreservesCheckboxToggleOnly(t *testing.T) {
	task, err := ParseTaskFile(sampleTask)
	require.NoError(t, err)
	task.AcceptanceCriteria[1].Checked = true

	rendered, err := task.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, "- [x] Validation errors shown inline")
}

func TestAppendNoteAddsTimestampedEntry(t *testing.T) {
	task := Task{}
	at := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	task.AppendNote("@bob", "Looked into the flaky test.", at)

	assert.Contains(t, task.Notes, "— @bob — 2026-03-05T12:00:00Z")
}

func TestSlugTruncatesTo50Characters(t *testing.T) {
	longTitle := strings.Repeat("word ", 30)
	slug := Slug(longTitle)
	assert.LessOrEqual(t, len(slug), 50)
}

func TestSlugStripsDiacriticsAndPunctuation(t *testing.T) {
	slug := Slug("Café déjà vu: the Reboot!")
	assert.False(t, strings.ContainsAny(slug, "é!:"), "expected diacritics/punctuation stripped, got %q", slug)
}

func TestFilenameMatchesExpectedPattern(t *testing.T) {
	name := Filename(7, "Fix the login bug")
	assert.True(t, taskFilenameRegex.MatchString(name), "filename %q does not match expected pattern", name)
}
