package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowspec-dev/flowspec/internal/cli"
	"github.com/flowspec-dev/flowspec/internal/materializer"
)

var devSetupForce bool

var devSetupCmd = &cobra.Command{
	Use:   "dev-setup",
	Short: "Symlink per-agent command directories to templates/commands/ (source repo only)",
	Long: `Creates symlinks from each registered agent's command directory to
templates/commands/, so the template tree stays the single source of truth
in a repo that develops flowspec's own templates. --force removes any
existing command directory first.`,
	Args: cobra.NoArgs,
	RunE: runDevSetup,
}

var validateDevSetupCmd = &cobra.Command{
	Use:   "validate-dev-setup",
	Short: "Check that agent command directories contain only symlinks into templates/commands/",
	Args:  cobra.NoArgs,
	RunE:  runValidateDevSetup,
}

func init() {
	cli.RootCmd.AddCommand(devSetupCmd)
	cli.RootCmd.AddCommand(validateDevSetupCmd)
	devSetupCmd.Flags().BoolVar(&devSetupForce, "force", false, "remove existing command directories before symlinking")
}

func runDevSetup(cmd *cobra.Command, args []string) error {
	root, err := cli.FindProjectRoot()
	if err != nil {
		return err
	}

	profiles, err := resolveAgentProfiles(nil)
	if err != nil {
		return err
	}

	if err := materializer.DevSetup(root, profiles, devSetupForce); err != nil {
		cli.PrintError("E500_DEV_SETUP_FAILED", err.Error(), "", "")
		os.Exit(1)
	}

	cli.PrintSuccess(fmt.Sprintf("dev_setup complete for %d agent(s)", len(profiles)), nil)
	return nil
}

func runValidateDevSetup(cmd *cobra.Command, args []string) error {
	root, err := cli.FindProjectRoot()
	if err != nil {
		return err
	}

	profiles, err := resolveAgentProfiles(nil)
	if err != nil {
		return err
	}

	violations, err := materializer.ValidateDevSetup(root, profiles)
	if err != nil {
		return err
	}

	if len(violations) > 0 {
		for _, v := range violations {
			cli.PrintError("E501_DEV_SETUP_VIOLATION", v.Reason, v.Path, "")
		}
		os.Exit(1)
	}

	cli.PrintSuccess("dev_setup invariants hold", nil)
	return nil
}
