package installer

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// DefaultRepoBaseURL is where owner/repo shorthands resolve
const DefaultRepoBaseURL = "https://github.com"

// Source is a normalized git repository location
type Source struct {
	raw string
	url string
}

// ParseSource accepts either an http(s) URL, which is used unchanged, or an
// owner/repo shorthand resolved against baseURL.
func ParseSource(raw, baseURL string) (Source, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Source{}, skillerr.InvalidRepository(raw, "cannot be empty")
	}
	if strings.IndexFunc(trimmed, func(c rune) bool {
		return unicode.IsSpace(c) || c == '"' || c == '\''
	}) >= 0 {
		return Source{}, skillerr.InvalidRepository(raw, "must not contain whitespace or quotes")
	}

	if strings.HasPrefix(trimmed, "https://") || strings.HasPrefix(trimmed, "http://") {
		return Source{raw: trimmed, url: trimmed}, nil
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || !validSegment(parts[0]) || !validSegment(strings.TrimSuffix(parts[1], ".git")) {
		return Source{}, skillerr.InvalidRepository(raw, "expected owner/repo or an http(s) URL")
	}

	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultRepoBaseURL
	}
	url := strings.TrimRight(baseURL, "/") + "/" + parts[0] + "/" + strings.TrimSuffix(parts[1], ".git") + ".git"
	return Source{raw: trimmed, url: url}, nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.Contains(s, `\`)
}

// URL is the address handed to git
func (s Source) URL() string {
	return s.url
}

// WebURL is the repository address without the .git suffix
func (s Source) WebURL() string {
	return strings.TrimSuffix(s.url, ".git")
}

func (s Source) String() string {
	return s.raw
}

// NormalizeSubPath returns raw as a clean slash-separated relative path.
// Blank input means the whole repository and yields "".
func NormalizeSubPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	slashed := strings.ReplaceAll(trimmed, `\`, "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(trimmed) || filepath.VolumeName(trimmed) != "" {
		return "", skillerr.InvalidSubPath(raw, "must be relative to the repository root")
	}

	var segments []string
	for _, seg := range strings.Split(slashed, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", skillerr.InvalidSubPath(raw, "must not contain '..'")
		}
		segments = append(segments, seg)
	}
	normalized := strings.Join(segments, "/")
	// git would read it as an option
	if strings.HasPrefix(normalized, "-") {
		return "", skillerr.InvalidSubPath(raw, "must not start with '-'")
	}
	return normalized, nil
}
