package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowspec-dev/flowspec/internal/cli"
	"github.com/flowspec-dev/flowspec/internal/workflowconfig"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Inspect and validate the workflow document",
}

var workflowValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate flowspec_workflow.yml against the schema and semantic rules",
	Long: `Validates a workflow document: structural validation against the JSON
Schema, then semantic passes (reachability, cycle detection, reference
resolution, role/agent consistency).

Exit codes:
  0 - valid
  1 - semantic error
  2 - file not found / unreadable
  3 - schema error`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWorkflowValidate,
}

func init() {
	cli.RootCmd.AddCommand(workflowCmd)
	workflowCmd.AddCommand(workflowValidateCmd)
}

func runWorkflowValidate(cmd *cobra.Command, args []string) error {
	path, err := resolveWorkflowPath(args)
	if err != nil {
		cli.PrintError("E001_FILE_NOT_FOUND", err.Error(), "", "")
		os.Exit(2)
	}

	model, findings := workflowconfig.Load(path)

	if findings.HasErrors() {
		exitCode := 1
		for _, f := range findings.Errors() {
			if f.RuleID == workflowconfig.RuleFileNotFound {
				exitCode = 2
			}
			if f.RuleID == workflowconfig.RuleYAMLParse || f.RuleID == workflowconfig.RuleSchemaError {
				exitCode = 3
			}
			cli.PrintError(f.RuleID, f.Message, f.Path, "")
		}
		os.Exit(exitCode)
	}

	for _, f := range findings.Warnings() {
		cli.PrintWarning(fmt.Sprintf("%s: %s (%s)", f.RuleID, f.Message, f.Path))
	}

	cli.PrintSuccess(fmt.Sprintf("workflow document valid: %d states, %d workflows", len(model.States()), len(model.Document().Workflows)), map[string]any{
		"status":  "ok",
		"states":  len(model.States()),
		"version": model.Document().Version,
	})
	return nil
}

// resolveWorkflowPath uses the given path argument if present, otherwise
// locates the canonical or legacy workflow document under the project root.
func resolveWorkflowPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	root, err := cli.FindProjectRoot()
	if err != nil {
		return "", err
	}
	return workflowconfig.LocateDocument(root)
}
