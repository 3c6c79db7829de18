package workflowconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// CanonicalFileName and LegacyFileName are the two accepted workflow document
// file names; CanonicalFileName is preferred.
const (
	CanonicalFileName = "flowspec_workflow.yml"
	LegacyFileName     = "speckit_workflow.yml"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 BOM and converts CRLF line endings to LF so the
// YAML decoder and downstream line-oriented logic see a canonical form
//.
func normalize(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return data
}

// ContentHash returns a stable digest of the normalized document bytes, used
// by callers (the dispatcher's caching layer) to decide whether a cached
// Model is still fresh.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(normalize(data))
	return hex.EncodeToString(sum[:])
}

// Parse decodes a normalized workflow document from bytes. It does not run
// schema or semantic validation; callers combine Parse with ValidateSchema
// and ValidateSemantics, or use Load for the convenience path.
func Parse(data []byte) (*Document, error) {
	data = normalize(data)

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(false)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", RuleYAMLParse, err)
	}

	for name, wf := range doc.Workflows {
		wf.Name = name
		doc.Workflows[name] = wf
	}

	return &doc, nil
}

// ParseRaw decodes the document into an untyped map, for schema validation
// against the JSON Schema document (which operates over JSON-shaped trees).
func ParseRaw(data []byte) (map[string]any, error) {
	data = normalize(data)
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", RuleYAMLParse, err)
	}
	return toStringKeyMap(raw), nil
}

// toStringKeyMap recursively converts map[any]any-shaped YAML decode results
// (nested maps) into map[string]any so the result is valid JSON for the
// schema validator.
func toStringKeyMap(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = toStringKeyMap(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[fmt.Sprintf("%v", k)] = toStringKeyMap(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = toStringKeyMap(vv)
		}
		return out
	default:
		return val
	}
}

// Load reads, parses, schema-validates, and semantically validates the
// workflow document at path, returning a ready-to-use Model in a single call.
func Load(path string) (*Model, Findings) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Findings{errorf(RuleFileNotFound, "/", "workflow document not found at %s", path)}
		}
		return nil, Findings{errorf(RuleFileNotFound, "/", "failed to read %s: %v", path, err)}
	}

	raw, err := ParseRaw(data)
	if err != nil {
		return nil, Findings{errorf(RuleYAMLParse, "/", "%v", err)}
	}

	var findings Findings
	findings = append(findings, ValidateSchema(raw)...)
	if findings.HasErrors() {
		return nil, findings
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, append(findings, errorf(RuleYAMLParse, "/", "%v", err))
	}

	semantic := ValidateSemantics(doc)
	findings = append(findings, semantic...)
	if findings.HasErrors() {
		return nil, findings
	}

	model := BuildModel(doc, ContentHash(data))
	return model, findings
}

// LocateDocument finds flowspec_workflow.yml or its legacy alias under root,
// preferring the canonical name.
func LocateDocument(root string) (string, error) {
	for _, name := range []string{CanonicalFileName, LegacyFileName} {
		path := root + string(os.PathSeparator) + name
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no %s or %s found under %s", CanonicalFileName, LegacyFileName, root)
}

// cache is a simple content-hash-keyed Model cache, mirroring the
// workflowCache pattern in internal/config/workflow_parser.go, adapted from
// a single-path cache to a content-hash cache so edits to the document
// invalidate it even when the path doesn't change.
type cache struct {
	mu    sync.RWMutex
	hash  string
	model *Model
}

var globalCache = &cache{}

// LoadCached behaves like Load but returns a previously built Model when the
// file's content hash is unchanged, avoiding redundant parses across
// dispatches within one process.
func LoadCached(path string) (*Model, Findings) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Findings{errorf(RuleFileNotFound, "/", "workflow document not found at %s", path)}
		}
		return nil, Findings{errorf(RuleFileNotFound, "/", "failed to read %s: %v", path, err)}
	}
	hash := ContentHash(data)

	globalCache.mu.RLock()
	if globalCache.model != nil && globalCache.hash == hash {
		m := globalCache.model
		globalCache.mu.RUnlock()
		return m, nil
	}
	globalCache.mu.RUnlock()

	model, findings := Load(path)
	if findings.HasErrors() {
		return nil, findings
	}

	globalCache.mu.Lock()
	globalCache.hash = hash
	globalCache.model = model
	globalCache.mu.Unlock()

	return model, findings
}

// ClearCache drops the cached Model. Used by tests and by callers that
// detect an out-of-band edit to the workflow document.
func ClearCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.hash = ""
	globalCache.model = nil
}
