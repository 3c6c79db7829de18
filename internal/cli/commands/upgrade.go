package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowspec-dev/flowspec/internal/cli"
	"github.com/flowspec-dev/flowspec/internal/overlay"
)

var (
	upgradeBaseVersion      string
	upgradeExtensionVersion string
	upgradeDryRun           bool
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Re-run the template overlay merge against new base/extension versions",
	Long: `Reads install-manifest.json, snapshots the project to
.specify-backup/<timestamp>/, and re-runs the two-stage merge with the
requested versions. --dry-run resolves and extracts but does not merge or
write anything.

Exit codes:
  0 - applied / would apply
  1 - missing manifest
  2 - download failed
  3 - conflict`,
	Args: cobra.NoArgs,
	RunE: runUpgrade,
}

func init() {
	cli.RootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringVar(&upgradeBaseVersion, "base-version", "latest", "base template release tag, or \"latest\"")
	upgradeCmd.Flags().StringVar(&upgradeExtensionVersion, "extension-version", "latest", "extension template release tag, or \"latest\"")
	upgradeCmd.Flags().BoolVar(&upgradeDryRun, "dry-run", false, "resolve and extract only; report what would change")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	base := defaultBaseSource
	base.Version = upgradeBaseVersion
	ext := defaultExtensionSource
	ext.Version = upgradeExtensionVersion

	ctx := context.Background()

	if upgradeDryRun {
		plan, err := overlay.DryRun(ctx, base, &ext)
		if err != nil {
			cli.PrintError("E400_DOWNLOAD_FAILED", err.Error(), "", "")
			os.Exit(2)
		}
		cli.PrintSuccess(fmt.Sprintf("would upgrade base to %s", plan.Base.Tag), plan)
		return nil
	}

	if _, err := overlay.ReadManifest(root); err != nil {
		cli.PrintError("E400_MISSING_MANIFEST", err.Error(), "", "run `flowspec init` first")
		os.Exit(1)
	}

	result, err := overlay.Upgrade(ctx, root, base, &ext, !cli.GlobalConfig.JSON)
	if err != nil {
		cli.PrintError("E400_DOWNLOAD_FAILED", err.Error(), "", "")
		os.Exit(2)
	}

	if result.CompatWarning != "" {
		cli.PrintWarning(result.CompatWarning)
	}

	cli.PrintSuccess(fmt.Sprintf("upgraded to base %s (%d entries changed)", result.Manifest.Base.Tag, len(result.Entries)), result)
	return nil
}
