// Package cli wires the flowspec command-line surface: global flags, output
// formatting, and project-root discovery shared by every subcommand.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowspec-dev/flowspec/internal/overlay"
)

// Config holds the global CLI configuration.
type Config struct {
	JSON       bool
	NoColor    bool
	Verbose    bool
	ConfigFile string
}

// GlobalConfig is the shared configuration instance.
var GlobalConfig = &Config{}

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "flowspec",
	Short: "Flowspec - Spec-Driven Development workflow toolkit",
	Long: `Flowspec drives a project's feature lifecycle from a declarative
workflow document (flowspec_workflow.yml): it validates the document,
dispatches role-scoped commands against backlog tasks, and materializes
per-agent command templates for the coding assistants your team uses.`,
	Version: "dev",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if GlobalConfig.NoColor {
			pterm.DisableColor()
		}
		if GlobalConfig.Verbose {
			pterm.EnableDebugMessages()
		}

		return nil
	},
}

// SetVersion sets the version string from build-time injection.
func SetVersion(version string) {
	RootCmd.Version = version
	overlay.SetEngineVersion(version)
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&GlobalConfig.JSON, "json", false, "Output in JSON format (machine-readable)")
	RootCmd.PersistentFlags().BoolVar(&GlobalConfig.NoColor, "no-color", false, "Disable colored output")
	RootCmd.PersistentFlags().BoolVarP(&GlobalConfig.Verbose, "verbose", "v", false, "Enable verbose/debug output")
	RootCmd.PersistentFlags().StringVar(&GlobalConfig.ConfigFile, "config", "", "Config file path")

	for _, name := range []string{"json", "no-color", "verbose"} {
		if err := viper.BindPFlag(name, RootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// projectMarkers are checked, in order, when walking up from the working
// directory to locate the project root: the canonical name first, then the
// legacy name for projects migrating from spec-kit.
var projectMarkers = []string{"flowspec_workflow.yml", "speckit_workflow.yml"}

// FindProjectRoot walks up the directory tree looking for a workflow
// document, falling back to a .git directory, then the working directory
// itself.
func FindProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	currentDir := wd
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(currentDir, marker)); err == nil {
				return currentDir, nil
			}
		}
		if _, err := os.Stat(filepath.Join(currentDir, ".git")); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return wd, nil
		}
		currentDir = parentDir
	}
}

func initConfig() error {
	if GlobalConfig.ConfigFile == "" {
		projectRoot, err := FindProjectRoot()
		if err != nil {
			return fmt.Errorf("failed to find project root: %w", err)
		}
		if GlobalConfig.Verbose {
			pterm.Debug.Printf("Project root: %s\n", projectRoot)
		}
		viper.AddConfigPath(projectRoot)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".flowspecconfig")
	} else {
		viper.SetConfigFile(GlobalConfig.ConfigFile)
	}

	viper.SetEnvPrefix("FLOWSPEC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else if GlobalConfig.Verbose {
		pterm.Debug.Printf("Using config file: %s\n", viper.ConfigFileUsed())
	}

	GlobalConfig.JSON = GlobalConfig.JSON || viper.GetBool("json")
	GlobalConfig.NoColor = GlobalConfig.NoColor || viper.GetBool("no-color")
	GlobalConfig.Verbose = GlobalConfig.Verbose || viper.GetBool("verbose")

	return nil
}
