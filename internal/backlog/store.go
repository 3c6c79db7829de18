// Package backlog implements the filesystem-backed task store: one
// markdown+YAML-frontmatter file per task under backlog/tasks/, with
// progressive acceptance-criteria tracking, search, and archival.
package backlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Store owns backlog/tasks/ (and backlog/archive/) under root as the sole
// authority for task creation, mutation, and lookup.
type Store struct {
	root      string
	tasksDir  string
	archiveDir string
	lockPath  string
}

// New returns a Store rooted at backlog/ inside projectRoot, creating the
// tasks and archive directories if they do not already exist.
func New(projectRoot string) (*Store, error) {
	root := filepath.Join(projectRoot, "backlog")
	s := &Store{
		root:       root,
		tasksDir:   filepath.Join(root, "tasks"),
		archiveDir: filepath.Join(root, "archive"),
		lockPath:   filepath.Join(root, ".lock"),
	}
	for _, dir := range []string{s.tasksDir, s.archiveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return s, nil
}

var taskFilenameRegex = regexp.MustCompile(`^task-(\d+) - .+\.md$`)

// CreateParams bundles optional fields accepted by Create.
type CreateParams struct {
	Description        string
	AcceptanceCriteria []string
	Labels             []string
	Priority           Priority
	Status             string
	Assignee           []string
	Dependencies       []string
	Role               string
}

// Create allocates the next task-N id (N = max existing + 1, scanning both
// tasks/ and archive/) and writes a new task file.
func (s *Store) Create(title string, params CreateParams) (Task, error) {
	var created Task

	err := s.withLock(func() error {
		id, err := s.nextID()
		if err != nil {
			return err
		}

		now := nowUTC()
		priority := params.Priority
		if priority == "" {
			priority = PriorityMedium
		}

		t := Task{
			Frontmatter: Frontmatter{
				ID:           fmt.Sprintf("task-%d", id),
				Title:        title,
				Status:       params.Status,
				Priority:     priority,
				Assignee:     params.Assignee,
				Labels:       params.Labels,
				Dependencies: params.Dependencies,
				CreatedAt:    now,
				UpdatedAt:    now,
				Role:         params.Role,
			},
			Description: params.Description,
			Path:        filepath.Join(s.tasksDir, Filename(id, title)),
		}
		for _, text := range params.AcceptanceCriteria {
			t.AcceptanceCriteria = append(t.AcceptanceCriteria, AcceptanceCriterion{Text: text})
		}

		if err := writeTaskFile(t.Path, &t); err != nil {
			return err
		}
		created = t
		return nil
	})

	return created, err
}

// nextID scans both tasks/ and archive/ for the highest existing task-N id.
func (s *Store) nextID() (int, error) {
	max := 0
	for _, dir := range []string{s.tasksDir, s.archiveDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, fmt.Errorf("scanning %s: %w", dir, err)
		}
		for _, e := range entries {
			m := taskFilenameRegex.FindStringSubmatch(e.Name())
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n > max {
				max = n
			}
		}
	}
	return max + 1, nil
}

// Get loads the task with the given id from tasks/, or nil if not found.
func (s *Store) Get(id string) (*Task, error) {
	path, err := s.findTaskPath(id)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}
	return loadTaskFile(path)
}

func (s *Store) findTaskPath(id string) (string, error) {
	entries, err := os.ReadDir(s.tasksDir)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", s.tasksDir, err)
	}
	prefix := id + " - "
	for _, e := range entries {
		if e.Name() == id+".md" || strings.HasPrefix(e.Name(), prefix) {
			return filepath.Join(s.tasksDir, e.Name()), nil
		}
	}
	return "", nil
}

// ListFilters narrows List results.
type ListFilters struct {
	Status   string
	Label    string
	Assignee string
	Role     string
}

// List returns every active task matching filters, sorted by id.
func (s *Store) List(filters ListFilters) ([]Task, error) {
	tasks, err := s.loadAllTasks(s.tasksDir)
	if err != nil {
		return nil, err
	}

	var out []Task
	for _, t := range tasks {
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		if filters.Label != "" && !containsString(t.Labels, filters.Label) {
			continue
		}
		if filters.Assignee != "" && !containsString(t.Assignee, filters.Assignee) {
			continue
		}
		if filters.Role != "" && t.Role != filters.Role {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return taskIDNumber(out[i].ID) < taskIDNumber(out[j].ID) })
	return out, nil
}

func (s *Store) loadAllTasks(dir string) ([]Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var tasks []Task
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		t, err := loadTaskFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func taskIDNumber(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, "task-"))
	return n
}

// SearchResult pairs a Task with its relevance score.
type SearchResult struct {
	Task  Task
	Score int
}

// Search performs a case-insensitive substring search over title,
// description, and notes, ranking exact title matches highest, then title
// substrings, then body matches.
func (s *Store) Search(query string) ([]SearchResult, error) {
	tasks, err := s.loadAllTasks(s.tasksDir)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var results []SearchResult
	for _, t := range tasks {
		title := strings.ToLower(t.Title)
		score := 0
		switch {
		case title == q:
			score = 100
		case strings.Contains(title, q):
			score = 60
		case strings.Contains(strings.ToLower(t.Description), q) || strings.Contains(strings.ToLower(t.Notes), q):
			score = 20
		default:
			for _, ac := range t.AcceptanceCriteria {
				if strings.Contains(strings.ToLower(ac.Text), q) {
					score = 20
					break
				}
			}
		}
		if score > 0 {
			results = append(results, SearchResult{Task: t, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return taskIDNumber(results[i].Task.ID) < taskIDNumber(results[j].Task.ID)
	})
	return results, nil
}

// Mutations bundles the fields edit() may change.
type Mutations struct {
	Status      *string
	Priority    *Priority
	Assignee    []string
	Labels      []string
	NotesAppend *NoteAppend
	AuditNote   string
	CheckAC     []int
	UncheckAC   []int
}

// NoteAppend carries the author and text for a notes_append mutation.
type NoteAppend struct {
	Author string
	Text   string
}

// Edit applies mutations to task id and rewrites its file atomically.
func (s *Store) Edit(id string, m Mutations) (Task, error) {
	var result Task

	err := s.withLock(func() error {
		path, err := s.findTaskPath(id)
		if err != nil {
			return err
		}
		if path == "" {
			return newError(RuleTaskNotFound, "no such task: %s", id)
		}

		t, err := loadTaskFile(path)
		if err != nil {
			return err
		}

		if err := applyMutations(t, m); err != nil {
			return err
		}
		t.UpdatedAt = nowUTC()

		if err := writeTaskFile(path, t); err != nil {
			return err
		}
		result = *t
		return nil
	})

	return result, err
}

func applyMutations(t *Task, m Mutations) error {
	if m.Status != nil {
		t.Status = *m.Status
	}
	if m.Priority != nil {
		t.Priority = *m.Priority
	}
	if m.Assignee != nil {
		t.Assignee = m.Assignee
	}
	if m.Labels != nil {
		t.Labels = m.Labels
	}

	for _, idx := range m.CheckAC {
		if err := toggleAC(t, idx, true); err != nil {
			return err
		}
	}
	for _, idx := range m.UncheckAC {
		if err := toggleAC(t, idx, false); err != nil {
			return err
		}
	}

	if m.NotesAppend != nil {
		t.AppendNote(m.NotesAppend.Author, m.NotesAppend.Text, time.Now())
	}
	if m.AuditNote != "" {
		t.AppendRawNote(m.AuditNote)
	}

	return nil
}

func toggleAC(t *Task, index int, checked bool) error {
	if index < 1 || index > len(t.AcceptanceCriteria) {
		return newError(RuleACIndexOutOfRange, "acceptance criterion index %d out of range (1..%d)", index, len(t.AcceptanceCriteria))
	}
	t.AcceptanceCriteria[index-1].Checked = checked
	return nil
}

// Archive moves a task's file from tasks/ to archive/ without modifying its
// content.
func (s *Store) Archive(id string) (Task, error) {
	var result Task

	err := s.withLock(func() error {
		path, err := s.findTaskPath(id)
		if err != nil {
			return err
		}
		if path == "" {
			return newError(RuleTaskNotFound, "no such task: %s", id)
		}

		t, err := loadTaskFile(path)
		if err != nil {
			return err
		}

		dest := filepath.Join(s.archiveDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			return fmt.Errorf("archiving %s: %w", id, err)
		}
		t.Path = dest
		result = *t
		return nil
	})

	return result, err
}

// ArchiveFilter selects tasks for ArchiveMany.
type ArchiveFilter struct {
	Status     string
	DoneBefore time.Time
}

// ArchiveMany archives every task matching filter, returning the archived
// ids.
func (s *Store) ArchiveMany(filter ArchiveFilter) ([]string, error) {
	status := filter.Status
	if status == "" {
		status = "Done"
	}

	tasks, err := s.List(ListFilters{Status: status})
	if err != nil {
		return nil, err
	}

	var archived []string
	for _, t := range tasks {
		if !filter.DoneBefore.IsZero() {
			updated, err := time.Parse(time.RFC3339, t.UpdatedAt)
			if err == nil && !updated.Before(filter.DoneBefore) {
				continue
			}
		}
		if _, err := s.Archive(t.ID); err != nil {
			return archived, err
		}
		archived = append(archived, t.ID)
	}
	return archived, nil
}

func loadTaskFile(path string) (*Task, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file %s: %w", path, err)
	}
	t, err := ParseTaskFile(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing task file %s: %w", path, err)
	}
	t.Path = path
	return &t, nil
}

// writeTaskFile writes a task atomically: temp file in the same directory,
// fsync, then rename over the target. Grounded on EntityFileWriter, which
// uses the same same-directory-temp-then-rename pattern for entity files.
func writeTaskFile(path string, t *Task) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	content, err := t.Render()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".task-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
