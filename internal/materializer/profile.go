// Package materializer implements the Agent Materializer: transforming
// source command templates into per-agent command artifacts in the
// directories and formats each coding assistant expects.
package materializer

import "sort"

// AgentProfile is the static, shipped-not-user-editable capability
// description of one target agent. Modeled as a plain struct rather than an
// interface-per-agent: Render (transform.go) provides capability-specific
// behavior by switching on FileExtension rather than requiring a distinct Go
// type per agent.
type AgentProfile struct {
	Key             string
	DisplayName     string
	CommandDir      string
	FileExtension   string // "md" or "toml"
	ArgumentSyntax  string // e.g. "$ARGUMENTS", "{{args}}"; empty if SupportsArgs is false
	SupportsArgs    bool
	CLICommand      string // PATH binary name for detect_installed_agents; empty for IDE-embedded agents
}

// Registry is the shipped set of known agent profiles, keyed by Key.
//
// Grounded on internal/init/profiles.go's pattern of a static registry of
// named, ready-to-use configurations, generalized here from workflow
// profiles to per-agent materialization targets.
var Registry = map[string]AgentProfile{
	"claude-code": {
		Key: "claude-code", DisplayName: "Claude Code",
		CommandDir: ".claude/commands", FileExtension: "md",
		ArgumentSyntax: "$ARGUMENTS", SupportsArgs: true, CLICommand: "claude",
	},
	"gemini-cli": {
		Key: "gemini-cli", DisplayName: "Gemini CLI",
		CommandDir: ".gemini/commands", FileExtension: "toml",
		ArgumentSyntax: "{{args}}", SupportsArgs: true, CLICommand: "gemini",
	},
	"codex-cli": {
		Key: "codex-cli", DisplayName: "Codex CLI",
		CommandDir: ".codex/commands", FileExtension: "toml",
		ArgumentSyntax: "{{args}}", SupportsArgs: true, CLICommand: "codex",
	},
	"cursor": {
		Key: "cursor", DisplayName: "Cursor",
		CommandDir: ".cursor/commands", FileExtension: "md",
		ArgumentSyntax: "$ARGUMENTS", SupportsArgs: true, CLICommand: "cursor",
	},
	"windsurf": {
		Key: "windsurf", DisplayName: "Windsurf",
		CommandDir: ".windsurf/workflows", FileExtension: "md",
		ArgumentSyntax: "$ARGUMENTS", SupportsArgs: true, CLICommand: "windsurf",
	},
	"github-copilot": {
		Key: "github-copilot", DisplayName: "GitHub Copilot",
		CommandDir: ".github/copilot/commands", FileExtension: "md",
		ArgumentSyntax: "$ARGUMENTS", SupportsArgs: true, CLICommand: "",
	},
	"amazon-q": {
		Key: "amazon-q", DisplayName: "Amazon Q Developer",
		CommandDir: ".amazonq/commands", FileExtension: "md",
		ArgumentSyntax: "$ARGUMENTS", SupportsArgs: true, CLICommand: "q",
	},
	"cline": {
		Key: "cline", DisplayName: "Cline",
		CommandDir: ".cline/commands", FileExtension: "md",
		ArgumentSyntax: "", SupportsArgs: false, CLICommand: "",
	},
	"windsurf-toml": {
		Key: "windsurf-toml", DisplayName: "Windsurf (TOML workflows)",
		CommandDir: ".windsurf/toml-commands", FileExtension: "toml",
		ArgumentSyntax: "{{args}}", SupportsArgs: true, CLICommand: "",
	},
	"continue-dev": {
		Key: "continue-dev", DisplayName: "Continue",
		CommandDir: ".continue/commands", FileExtension: "md",
		ArgumentSyntax: "$ARGUMENTS", SupportsArgs: true, CLICommand: "",
	},
	"aider": {
		Key: "aider", DisplayName: "Aider",
		CommandDir: ".aider/commands", FileExtension: "md",
		ArgumentSyntax: "", SupportsArgs: false, CLICommand: "aider",
	},
}

// Profile looks up a registered agent profile by key.
func Profile(key string) (AgentProfile, bool) {
	p, ok := Registry[key]
	return p, ok
}

// AllKeys returns every registered agent key, sorted for deterministic
// iteration (used by `flowspec init --agent` listing and by materialize-all).
func AllKeys() []string {
	keys := make([]string, 0, len(Registry))
	for k := range Registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
