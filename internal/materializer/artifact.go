package materializer

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplateArtifact is a parsed source command template: YAML frontmatter
// plus a Markdown body that may contain the literal token $ARGUMENTS
//.
//
// Grounded on internal/parser/frontmatter.go's delimiter scanning
// (ParseFrontmatter / GetContentAfterFrontmatter), adapted from task files
// to command templates.
type TemplateArtifact struct {
	Namespace   string
	Name        string
	Description string
	ArgumentHint string
	Body        string
}

// ParseTemplate splits a template file's content into frontmatter and body.
func ParseTemplate(namespace, name, content string) (TemplateArtifact, error) {
	art := TemplateArtifact{Namespace: namespace, Name: name}

	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		art.Body = content
		return art, nil
	}

	lines := strings.Split(content, "\n")
	closingIndex := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closingIndex = i
			break
		}
	}
	if closingIndex == -1 {
		return TemplateArtifact{}, fmt.Errorf("template %s/%s: frontmatter missing closing delimiter", namespace, name)
	}

	var fm struct {
		Description  string `yaml:"description"`
		ArgumentHint string `yaml:"argument-hint"`
	}
	frontmatterContent := strings.Join(lines[1:closingIndex], "\n")
	if err := yaml.Unmarshal([]byte(frontmatterContent), &fm); err != nil {
		return TemplateArtifact{}, fmt.Errorf("template %s/%s: invalid frontmatter: %w", namespace, name, err)
	}

	art.Description = fm.Description
	art.ArgumentHint = fm.ArgumentHint
	if closingIndex+1 < len(lines) {
		art.Body = strings.TrimPrefix(strings.Join(lines[closingIndex+1:], "\n"), "\n")
	}

	return art, nil
}
