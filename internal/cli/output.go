package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

// Envelope is the machine-readable shape emitted under --json for any
// failing operation.
type Envelope struct {
	Status     string `json:"status"`
	RuleID     string `json:"rule_id,omitempty"`
	Message    string `json:"message"`
	Location   string `json:"location,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// PrintError renders a failure either as a pterm human-readable block or as
// a JSON Envelope, depending on GlobalConfig.JSON.
func PrintError(ruleID, message, location, suggestion string) {
	if GlobalConfig.JSON {
		emitJSON(Envelope{Status: "error", RuleID: ruleID, Message: message, Location: location, Suggestion: suggestion})
		return
	}

	pterm.Error.Println(message)
	if location != "" {
		pterm.Println(pterm.Gray(fmt.Sprintf("  at %s", location)))
	}
	if suggestion != "" {
		pterm.Println(pterm.Yellow(fmt.Sprintf("  suggestion: %s", suggestion)))
	}
}

// PrintSuccess renders a success message. When --json is set it emits the
// payload as JSON, or an "ok" Envelope carrying message when payload is nil.
func PrintSuccess(message string, payload any) {
	if GlobalConfig.JSON {
		if payload != nil {
			emitJSON(payload)
		} else {
			emitJSON(Envelope{Status: "ok", Message: message})
		}
		return
	}
	pterm.Success.Println(message)
}

// PrintWarning renders a warning-severity message.
func PrintWarning(message string) {
	if GlobalConfig.JSON {
		emitJSON(Envelope{Status: "warning", Message: message})
		return
	}
	pterm.Warning.Println(message)
}

func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
