package materializer

import (
	"bytes"
	"strings"

	"github.com/BurntSushi/toml"
)

const argumentsToken = "$ARGUMENTS"

// substituteArguments replaces $ARGUMENTS with profile.ArgumentSyntax, or
// strips any line containing $ARGUMENTS entirely (including its trailing
// newline) when the profile does not support arguments.
func substituteArguments(body string, profile AgentProfile) string {
	if !profile.SupportsArgs {
		lines := strings.Split(body, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if strings.Contains(line, argumentsToken) {
				continue
			}
			kept = append(kept, line)
		}
		return strings.Join(kept, "\n")
	}
	return strings.ReplaceAll(body, argumentsToken, profile.ArgumentSyntax)
}

// Render produces the final artifact bytes for one (template, profile) pair
//.
func Render(art TemplateArtifact, profile AgentProfile) ([]byte, error) {
	body := substituteArguments(art.Body, profile)

	switch profile.FileExtension {
	case "md":
		return []byte(body), nil
	case "toml":
		return renderTOML(art, body)
	default:
		return []byte(body), nil
	}
}

// tomlDescription borrows the encoder only for the description line, so its
// quoting/escaping stays spec-compliant TOML even though the surrounding
// [command]/[command.prompt] shape and the text value are hand-formatted
// below (the encoder has no multi-line-string mode).
type tomlDescription struct {
	Description string `toml:"description"`
}

// renderTOML emits the [command]/[command.prompt] document Codex CLI and
// Gemini CLI expect for a custom command, with the body carried as a TOML
// multi-line basic string (`text = """<body>"""`) rather than an
// escaped single-line basic string.
func renderTOML(art TemplateArtifact, body string) ([]byte, error) {
	var descBuf bytes.Buffer
	if err := toml.NewEncoder(&descBuf).Encode(tomlDescription{Description: art.Description}); err != nil {
		return nil, err
	}
	descLine := strings.TrimRight(descBuf.String(), "\n")

	var buf bytes.Buffer
	buf.WriteString("[command]\n")
	buf.WriteString(descLine)
	buf.WriteString("\n\n[command.prompt]\ntext = \"\"\"\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString("\"\"\"\n")
	return buf.Bytes(), nil
}
