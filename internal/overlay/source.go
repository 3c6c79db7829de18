// Package overlay implements the Template Overlay Engine: resolving,
// downloading, extracting, and merging a base plus extension release
// archive into a project tree with extension-wins precedence.
package overlay

import (
	"encoding/json"
	"fmt"
	"strings"

	gh "github.com/cli/go-gh/v2"
)

// Source identifies a release to fetch: an owner/repo pair and a version,
// which is either the literal "latest" or a tag.
type Source struct {
	Owner   string
	Repo    string
	Version string
}

func (s Source) String() string {
	return fmt.Sprintf("%s/%s@%s", s.Owner, s.Repo, s.Version)
}

// ResolvedRelease is a Source pinned to a concrete tag and asset URL.
type ResolvedRelease struct {
	Source   Source
	Tag      string
	AssetURL string
	AssetExt string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// Resolve queries the GitHub releases API for src and returns the resolved
// tag plus the zip asset's download URL. It shells out
// via the gh CLI wrapper rather than talking to the REST API directly,
// the way github.com/githubnext/gh-aw/pkg/parser/remote_fetch.go talks to
// GitHub.
func Resolve(src Source) (ResolvedRelease, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/releases/latest", src.Owner, src.Repo)
	if src.Version != "" && src.Version != "latest" {
		endpoint = fmt.Sprintf("/repos/%s/%s/releases/tags/%s", src.Owner, src.Repo, src.Version)
	}

	stdout, stderr, err := gh.Exec("api", endpoint)
	if err != nil {
		return ResolvedRelease{}, fmt.Errorf("resolving release for %s: %s: %w", src, strings.TrimSpace(stderr.String()), err)
	}

	var rel ghRelease
	if err := json.Unmarshal(stdout.Bytes(), &rel); err != nil {
		return ResolvedRelease{}, fmt.Errorf("parsing release metadata for %s: %w", src, err)
	}

	assetURL, assetExt, err := pickZipAsset(rel)
	if err != nil {
		return ResolvedRelease{}, fmt.Errorf("%s: %w", src, err)
	}

	return ResolvedRelease{Source: src, Tag: rel.TagName, AssetURL: assetURL, AssetExt: assetExt}, nil
}

func pickZipAsset(rel ghRelease) (url, ext string, err error) {
	for _, a := range rel.Assets {
		if strings.HasSuffix(a.Name, ".zip") {
			return a.BrowserDownloadURL, ".zip", nil
		}
	}
	return "", "", fmt.Errorf("release %s has no .zip asset", rel.TagName)
}
