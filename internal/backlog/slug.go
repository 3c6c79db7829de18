package backlog

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLength bounds the slug portion of a task filename.
const maxSlugLength = 50

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphensRegex = regexp.MustCompile(`-+`)
)

// Slug derives a URL-safe slug from a task title: lowercase, diacritics
// stripped, runs of non-alphanumerics collapsed to a single hyphen,
// truncated to 50 characters.
//
// Adapted from internal/slug.Generate, which performs the identical
// unicode-normalize / lowercase / collapse-hyphens pipeline for its own
// T-<key>-<slug>.md filenames.
func Slug(title string) string {
	if title == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, _ := transform.String(t, title)

	slug := strings.ToLower(normalized)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	slug = strings.ReplaceAll(slug, ".", "-")
	slug = nonAlphanumericRegex.ReplaceAllString(slug, "-")
	slug = multipleHyphensRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}

	return slug
}

// Filename builds the `task-<N> - <slug>.md` filename for id N and title,
// using "untitled" as the slug when the title slugs to nothing.
func Filename(id int, title string) string {
	slug := Slug(title)
	if slug == "" {
		slug = "untitled"
	}
	return fmt.Sprintf("task-%d - %s.md", id, slug)
}
