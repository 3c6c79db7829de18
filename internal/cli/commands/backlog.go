package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowspec-dev/flowspec/internal/backlog"
	"github.com/flowspec-dev/flowspec/internal/cli"
	"github.com/flowspec-dev/flowspec/internal/workflowconfig"
)

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Manage backlog tasks",
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, edit, list, search, and archive backlog tasks",
}

func init() {
	cli.RootCmd.AddCommand(backlogCmd)
	backlogCmd.AddCommand(taskCmd)

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskSearchCmd)
	taskCmd.AddCommand(taskArchiveCmd)

	taskCreateCmd.Flags().StringVar(&taskDescription, "description", "", "task description")
	taskCreateCmd.Flags().StringSliceVar(&taskAC, "ac", nil, "acceptance criterion (repeatable)")
	taskCreateCmd.Flags().StringSliceVar(&taskLabels, "label", nil, "label (repeatable)")
	taskCreateCmd.Flags().StringVar(&taskPriority, "priority", "", "priority: low|medium|high|critical")
	taskCreateCmd.Flags().StringVar(&taskStatus, "status", "", "initial status (defaults to the workflow's initial state)")
	taskCreateCmd.Flags().StringSliceVar(&taskAssignee, "assignee", nil, "assignee, e.g. @alice (repeatable)")

	taskEditCmd.Flags().StringVar(&taskStatus, "status", "", "new status")
	taskEditCmd.Flags().StringVar(&taskPriority, "priority", "", "new priority")
	taskEditCmd.Flags().StringSliceVar(&taskLabels, "label", nil, "replace labels (repeatable)")
	taskEditCmd.Flags().StringSliceVar(&taskAssignee, "assignee", nil, "replace assignees (repeatable)")
	taskEditCmd.Flags().StringVar(&taskNote, "note", "", "append a note")
	taskEditCmd.Flags().StringVar(&taskNoteAuthor, "note-author", "@user", "author attribution for --note")
	taskEditCmd.Flags().IntSliceVar(&taskCheckAC, "check", nil, "1-based acceptance criterion index to check (repeatable)")
	taskEditCmd.Flags().IntSliceVar(&taskUncheckAC, "uncheck", nil, "1-based acceptance criterion index to uncheck (repeatable)")

	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "filter by status")
	taskListCmd.Flags().StringVar(&taskLabelFilter, "label", "", "filter by label")
	taskListCmd.Flags().StringVar(&taskAssigneeFilter, "assignee", "", "filter by assignee")
}

var (
	taskDescription    string
	taskAC             []string
	taskLabels         []string
	taskPriority       string
	taskStatus         string
	taskAssignee       []string
	taskNote           string
	taskNoteAuthor     string
	taskCheckAC        []int
	taskUncheckAC      []int
	taskLabelFilter    string
	taskAssigneeFilter string
)

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new backlog task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskCreate,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a backlog task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backlog tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var taskSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search backlog tasks by title, description, and notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskSearch,
}

var taskArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a backlog task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskArchive,
}

func openStore() (*backlog.Store, error) {
	root, err := cli.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	return backlog.New(root)
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	status := taskStatus
	if status == "" {
		if root, err := cli.FindProjectRoot(); err == nil {
			if path, err := workflowconfig.LocateDocument(root); err == nil {
				if model, findings := workflowconfig.LoadCached(path); !findings.HasErrors() {
					status = model.Document().InitialState()
				}
			}
		}
	}

	task, err := store.Create(args[0], backlog.CreateParams{
		Description:        taskDescription,
		AcceptanceCriteria: taskAC,
		Labels:             taskLabels,
		Priority:           backlog.Priority(taskPriority),
		Status:             status,
		Assignee:           taskAssignee,
	})
	if err != nil {
		return handleBacklogError(err)
	}

	cli.PrintSuccess(fmt.Sprintf("created %s: %s", task.ID, task.Title), task)
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	mutations := backlog.Mutations{
		CheckAC:   taskCheckAC,
		UncheckAC: taskUncheckAC,
	}
	if cmd.Flags().Changed("status") {
		mutations.Status = &taskStatus
	}
	if cmd.Flags().Changed("priority") {
		p := backlog.Priority(taskPriority)
		mutations.Priority = &p
	}
	if cmd.Flags().Changed("label") {
		mutations.Labels = taskLabels
	}
	if cmd.Flags().Changed("assignee") {
		mutations.Assignee = taskAssignee
	}
	if taskNote != "" {
		mutations.NotesAppend = &backlog.NoteAppend{Author: taskNoteAuthor, Text: taskNote}
	}

	task, err := store.Edit(args[0], mutations)
	if err != nil {
		return handleBacklogError(err)
	}

	cli.PrintSuccess(fmt.Sprintf("updated %s", task.ID), task)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	tasks, err := store.List(backlog.ListFilters{
		Status:   taskStatus,
		Label:    taskLabelFilter,
		Assignee: taskAssigneeFilter,
	})
	if err != nil {
		return handleBacklogError(err)
	}

	if cli.GlobalConfig.JSON {
		cli.PrintSuccess("", tasks)
		return nil
	}
	for _, t := range tasks {
		checked, total := t.Progress()
		fmt.Printf("%s  [%s]  %s  (%d/%d)\n", t.ID, t.Status, t.Title, checked, total)
	}
	return nil
}

func runTaskSearch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	results, err := store.Search(args[0])
	if err != nil {
		return handleBacklogError(err)
	}

	if cli.GlobalConfig.JSON {
		cli.PrintSuccess("", results)
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-4d  %s  %s\n", r.Score, r.Task.ID, r.Task.Title)
	}
	return nil
}

func runTaskArchive(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	task, err := store.Archive(args[0])
	if err != nil {
		return handleBacklogError(err)
	}

	cli.PrintSuccess(fmt.Sprintf("archived %s", task.ID), task)
	return nil
}

func handleBacklogError(err error) error {
	backlogErr, ok := err.(*backlog.Error)
	if !ok {
		return err
	}

	exitCode := 1
	switch backlogErr.Rule {
	case backlog.RuleTaskNotFound:
		exitCode = 1
	case backlog.RuleACIndexOutOfRange, backlog.RuleInvalidFilename:
		exitCode = 2
	case backlog.RuleBacklogLocked:
		exitCode = 3
	}

	cli.PrintError(string(backlogErr.Rule), backlogErr.Message, "", "")
	os.Exit(exitCode)
	return nil
}
