package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flowspec-dev/flowspec/internal/cli"
	"github.com/flowspec-dev/flowspec/internal/materializer"
	"github.com/flowspec-dev/flowspec/internal/overlay"
	"github.com/flowspec-dev/flowspec/internal/workflowconfig"
)

// defaultBaseSource and defaultExtensionSource are the module-level default
// values threaded through Install/Upgrade; --base-version/--extension-version
// override just the version, never the owner/repo.
var (
	defaultBaseSource      = overlay.Source{Owner: "github", Repo: "spec-kit", Version: "latest"}
	defaultExtensionSource = overlay.Source{Owner: "flowspec-dev", Repo: "flowspec-extension", Version: "latest"}
)

var (
	initBaseVersion      string
	initExtensionVersion string
	initAgents           []string
	initNoExtension      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install the base and extension template overlay into the current project",
	Long: `Resolves the base (and, unless --no-extension, the extension) release,
downloads and extracts both archives, and merges them into the project tree
with extension-wins precedence. Writes install-manifest.json.

Exit codes:
  0 - installed
  1 - download/extract failed
  2 - prerequisites missing
  3 - conflicting flags`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	cli.RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initBaseVersion, "base-version", "latest", "base template release tag, or \"latest\"")
	initCmd.Flags().StringVar(&initExtensionVersion, "extension-version", "latest", "extension template release tag, or \"latest\"")
	initCmd.Flags().StringSliceVar(&initAgents, "agent", nil, "agent keys to materialize commands for (default: all registered agents)")
	initCmd.Flags().BoolVar(&initNoExtension, "no-extension", false, "install the base template only")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initNoExtension && initExtensionVersion != "latest" && cmd.Flags().Changed("extension-version") {
		cli.PrintError("E400_CONFLICTING_FLAGS", "--no-extension and --extension-version are mutually exclusive", "", "drop one of the two flags")
		os.Exit(3)
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}

	base := defaultBaseSource
	base.Version = initBaseVersion

	var extension *overlay.Source
	if !initNoExtension {
		ext := defaultExtensionSource
		ext.Version = initExtensionVersion
		extension = &ext
	}

	result, err := overlay.Install(context.Background(), root, base, extension, !cli.GlobalConfig.JSON)
	if err != nil {
		cli.PrintError("E400_INSTALL_FAILED", err.Error(), "", "")
		os.Exit(1)
	}

	seeded, err := seedWorkflowDocument(root)
	if err != nil {
		cli.PrintError("E400_SEED_FAILED", err.Error(), "", "")
		os.Exit(1)
	}

	profiles, err := resolveAgentProfiles(initAgents)
	if err != nil {
		cli.PrintError("E400_UNKNOWN_AGENT", err.Error(), "", fmt.Sprintf("known agents: %v", materializer.AllKeys()))
		os.Exit(3)
	}

	report, err := materializer.Materialize(templatesCommandsDir(root), root, profiles)
	if err != nil {
		cli.PrintError("E500_MATERIALIZE_FAILED", err.Error(), "", "")
		os.Exit(1)
	}

	if result.CompatWarning != "" {
		cli.PrintWarning(result.CompatWarning)
	}

	cli.PrintSuccess(fmt.Sprintf("installed base %s, materialized %d command files for %d agent(s)",
		result.Manifest.Base.Tag, len(report.Files), len(profiles)), map[string]any{
		"manifest":        result.Manifest,
		"entries":         result.Entries,
		"files":           report.Files,
		"seeded_workflow": seeded,
	})
	return nil
}

// seedWorkflowDocument writes the bundled default SDD workflow document to
// flowspec_workflow.yml if the project doesn't already declare one, so a
// fresh `flowspec init` leaves a project ready for `flowspec dispatch`
// without a hand-authored document.
func seedWorkflowDocument(root string) (bool, error) {
	if _, err := workflowconfig.LocateDocument(root); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(workflowconfig.DefaultDocument())
	if err != nil {
		return false, fmt.Errorf("encoding default workflow document: %w", err)
	}

	path := filepath.Join(root, "flowspec_workflow.yml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

func resolveAgentProfiles(keys []string) ([]materializer.AgentProfile, error) {
	if len(keys) == 0 {
		keys = materializer.AllKeys()
	}

	profiles := make([]materializer.AgentProfile, 0, len(keys))
	for _, k := range keys {
		p, ok := materializer.Profile(k)
		if !ok {
			return nil, fmt.Errorf("unknown agent key: %s", k)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func templatesCommandsDir(root string) string {
	return filepath.Join(root, "templates", "commands")
}
