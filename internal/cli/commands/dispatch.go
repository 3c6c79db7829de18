package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/flowspec-dev/flowspec/internal/backlog"
	"github.com/flowspec-dev/flowspec/internal/cli"
	"github.com/flowspec-dev/flowspec/internal/dispatcher"
	"github.com/flowspec-dev/flowspec/internal/workflowconfig"
)

var (
	dispatchTaskID  string
	dispatchRole    string
	dispatchApprove bool
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch <command>",
	Short: "Dispatch a role command against a backlog task",
	Long: `Resolves the workflow for <command>, verifies the task's current
state and the invoker's role permit it, and returns an execution plan.

Exit codes:
  0 - OK
  1 - invalid state transition
  2 - unknown command
  3 - role mismatch / approval required`,
	Args: cobra.ExactArgs(1),
	RunE: runDispatch,
}

func init() {
	cli.RootCmd.AddCommand(dispatchCmd)
	dispatchCmd.Flags().StringVar(&dispatchTaskID, "task", "", "task id to dispatch against (required)")
	dispatchCmd.Flags().StringVar(&dispatchRole, "role", "all", "invoking role")
	dispatchCmd.Flags().BoolVar(&dispatchApprove, "approve", false, "grant approval for workflows requiring it")
	_ = dispatchCmd.MarkFlagRequired("task")
}

func runDispatch(cmd *cobra.Command, args []string) error {
	commandToken := args[0]

	root, err := cli.FindProjectRoot()
	if err != nil {
		return err
	}
	path, err := workflowconfig.LocateDocument(root)
	if err != nil {
		cli.PrintError(workflowconfig.RuleFileNotFound, err.Error(), "", "")
		os.Exit(2)
	}

	model, findings := workflowconfig.LoadCached(path)
	if findings.HasErrors() {
		for _, f := range findings.Errors() {
			cli.PrintError(f.RuleID, f.Message, f.Path, "")
		}
		os.Exit(2)
	}

	store, err := backlog.New(root)
	if err != nil {
		return err
	}

	d := dispatcher.New(model, store)
	approved := dispatchApprove
	result, err := d.Dispatch(commandToken, dispatchTaskID, dispatchRole, dispatcher.Options{Approved: approved})
	if dispatchErr, ok := err.(*dispatcher.Error); ok && dispatchErr.Rule == dispatcher.RuleApprovalRequired && !approved && !cli.GlobalConfig.JSON {
		if confirmed, promptErr := confirmApproval(commandToken, dispatchTaskID); promptErr == nil && confirmed {
			result, err = d.Dispatch(commandToken, dispatchTaskID, dispatchRole, dispatcher.Options{Approved: true})
		}
	}
	if err != nil {
		return handleDispatchError(err)
	}

	cli.PrintSuccess(fmt.Sprintf("dispatch OK: %s -> %s via %s", result.Transition.From, result.Transition.To, result.Transition.Via), result)
	return nil
}

// confirmApproval prompts interactively when a workflow's
// requires_human_approval gate rejected a non-JSON, non-approved dispatch,
// so a human at the keyboard isn't forced to re-invoke with --approve.
func confirmApproval(commandToken, taskID string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%q requires human approval for %s. Approve?", commandToken, taskID)).
				Affirmative("Approve").
				Negative("Cancel").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func handleDispatchError(err error) error {
	dispatchErr, ok := err.(*dispatcher.Error)
	if !ok {
		return err
	}

	exitCode := 1
	switch dispatchErr.Rule {
	case dispatcher.RuleUnknownCommand:
		exitCode = 2
	case dispatcher.RuleRoleMismatch, dispatcher.RuleApprovalRequired:
		exitCode = 3
	}

	cli.PrintError(string(dispatchErr.Rule), dispatchErr.Message, "", dispatchErr.Suggestion)
	os.Exit(exitCode)
	return nil
}
