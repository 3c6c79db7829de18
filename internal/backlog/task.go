package backlog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Priority is the task priority enum.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Frontmatter mirrors the YAML block at the top of a task file.
type Frontmatter struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Status       string   `yaml:"status"`
	Priority     Priority `yaml:"priority"`
	Assignee     []string `yaml:"assignee"`
	Labels       []string `yaml:"labels"`
	Dependencies []string `yaml:"dependencies"`
	CreatedAt    string   `yaml:"created_at"`
	UpdatedAt    string   `yaml:"updated_at"`
	Role         string   `yaml:"role,omitempty"`
}

// AcceptanceCriterion is one checkbox line in the Acceptance Criteria
// section, 1-indexed.
type AcceptanceCriterion struct {
	Checked bool
	Text    string
}

// Task is the in-memory representation of one backlog item: frontmatter
// plus the three fixed body sections.
type Task struct {
	Frontmatter
	Description         string
	AcceptanceCriteria  []AcceptanceCriterion
	Notes               string
	Path                string
}

// Progress reports (checked, total) acceptance criteria. When total is 0,
// progress is undefined and callers must not treat it as 100%.
func (t *Task) Progress() (checked, total int) {
	for _, ac := range t.AcceptanceCriteria {
		total++
		if ac.Checked {
			checked++
		}
	}
	return checked, total
}

var acCheckboxRegex = regexp.MustCompile(`^- \[( |x|X)\] (.*)$`)

const (
	sectionDescription = "## Description"
	sectionAC          = "## Acceptance Criteria"
	sectionNotes       = "## Notes"
)

// ParseTaskFile splits raw task-file content into frontmatter and the three
// fixed body sections.
func ParseTaskFile(content string) (Task, error) {
	var t Task

	fm, body, err := splitFrontmatter(content)
	if err != nil {
		return Task{}, err
	}
	if err := yaml.Unmarshal([]byte(fm), &t.Frontmatter); err != nil {
		return Task{}, fmt.Errorf("parsing task frontmatter: %w", err)
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}

	sections := splitSections(body)
	t.Description = strings.TrimSpace(sections[sectionDescription])
	t.Notes = strings.TrimRight(sections[sectionNotes], "\n")
	t.AcceptanceCriteria = parseAcceptanceCriteria(sections[sectionAC])

	return t, nil
}

func splitFrontmatter(content string) (frontmatter, body string, err error) {
	content = strings.TrimPrefix(content, "﻿")
	if !strings.HasPrefix(content, "---\n") && content != "---" {
		return "", "", fmt.Errorf("task file missing leading frontmatter delimiter")
	}
	rest := strings.TrimPrefix(content, "---\n")
	idx := strings.Index(rest, "\n---")
	if idx == -1 {
		return "", "", fmt.Errorf("task file missing closing frontmatter delimiter")
	}
	frontmatter = rest[:idx]
	remainder := rest[idx+len("\n---"):]
	remainder = strings.TrimPrefix(remainder, "\n")
	return frontmatter, remainder, nil
}

// splitSections partitions the body into the three fixed `## ` headings,
// tolerating headings appearing in any order or being absent entirely.
func splitSections(body string) map[string]string {
	out := map[string]string{
		sectionDescription: "",
		sectionAC:          "",
		sectionNotes:       "",
	}

	lines := strings.Split(body, "\n")
	current := ""
	var buf []string
	flush := func() {
		if current != "" {
			out[current] = strings.Join(buf, "\n")
		}
		buf = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		switch trimmed {
		case sectionDescription, sectionAC, sectionNotes:
			flush()
			current = trimmed
			continue
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()

	return out
}

func parseAcceptanceCriteria(section string) []AcceptanceCriterion {
	var acs []AcceptanceCriterion
	for _, line := range strings.Split(section, "\n") {
		m := acCheckboxRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		acs = append(acs, AcceptanceCriterion{
			Checked: m[1] == "x" || m[1] == "X",
			Text:    m[2],
		})
	}
	return acs
}

// Render serializes a Task back to the on-disk frontmatter+body format,
// preserving the fixed section order.
func (t *Task) Render() (string, error) {
	fmBytes, err := yaml.Marshal(t.Frontmatter)
	if err != nil {
		return "", fmt.Errorf("marshaling task frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fmBytes)
	b.WriteString("---\n\n")

	b.WriteString(sectionDescription)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(t.Description))
	b.WriteString("\n\n")

	b.WriteString(sectionAC)
	b.WriteString("\n\n")
	for _, ac := range t.AcceptanceCriteria {
		mark := " "
		if ac.Checked {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, ac.Text)
	}
	b.WriteString("\n")

	b.WriteString(sectionNotes)
	b.WriteString("\n\n")
	if t.Notes != "" {
		b.WriteString(t.Notes)
		b.WriteString("\n")
	}

	return b.String(), nil
}

// AppendRawNote appends a pre-formatted line to the Notes section verbatim,
// used for dispatcher audit entries that already carry their own
// "— transitioned A → B via C — <timestamp>" formatting.
func (t *Task) AppendRawNote(line string) {
	if t.Notes == "" {
		t.Notes = line
		return
	}
	t.Notes = t.Notes + "\n\n" + line
}

// AppendNote appends a timestamped paragraph to the Notes section.
func (t *Task) AppendNote(author string, note string, at time.Time) {
	entry := fmt.Sprintf("%s\n\n— %s — %s", note, author, at.UTC().Format(time.RFC3339))
	if t.Notes == "" {
		t.Notes = entry
		return
	}
	t.Notes = t.Notes + "\n\n" + entry
}
