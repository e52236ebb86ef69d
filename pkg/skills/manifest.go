package skills

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

const frontMatterDelimiter = "---"

// ParseManifest extracts metadata from SKILL.md content. Front matter keys
// win; the body heuristic only fills fields the front matter left empty.
// Malformed input yields fewer fields, never an error.
func ParseManifest(content string) Metadata {
	lines := splitLines(content)

	meta := Metadata{Tags: []string{}}
	block, body, ok := splitFrontMatter(lines)
	if ok {
		parseFrontMatter(block, &meta)
	} else {
		body = lines
	}

	if meta.Name == "" || meta.Description == "" {
		name, description := parseBody(body)
		if meta.Name == "" {
			meta.Name = name
		}
		if meta.Description == "" {
			meta.Description = description
		}
	}

	return meta
}

// ReadManifest reads and parses the manifest at path
func ReadManifest(path string) (Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Metadata{Tags: []string{}}, errors.Wrap(err, "failed to read skill manifest")
	}
	return ParseManifest(string(content)), nil
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(content, "\n")
}

// splitFrontMatter returns the lines between the opening "---" and the first
// line starting with "---", plus the lines after it.
func splitFrontMatter(lines []string) (block, body []string, ok bool) {
	if len(lines) == 0 || lines[0] != frontMatterDelimiter {
		return nil, nil, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], frontMatterDelimiter) {
			return lines[1:i], lines[i+1:], true
		}
	}
	return nil, nil, false
}

func parseFrontMatter(block []string, meta *Metadata) {
	for _, line := range block {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		switch strings.TrimSpace(key) {
		case "name":
			if v := unquote(strings.TrimSpace(value)); v != "" {
				meta.Name = v
			}
		case "description":
			if v := unquote(strings.TrimSpace(value)); v != "" {
				meta.Description = v
			}
		case "tags":
			if tags := parseTags(value); len(tags) > 0 {
				meta.Tags = tags
			}
		}
	}
}

// parseTags accepts "[a, b]", "a, b" and "a".
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")

	seen := make(map[string]struct{})
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		tag := unquote(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// parseBody takes the first "# " heading as the name and the first
// non-heading, non-empty line after it as the description.
func parseBody(lines []string) (name, description string) {
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if name == "" {
			if strings.HasPrefix(t, "# ") {
				name = strings.TrimSpace(strings.TrimPrefix(t, "# "))
			}
			continue
		}
		if t != "" && !strings.HasPrefix(t, "#") {
			return name, t
		}
	}
	return name, ""
}
