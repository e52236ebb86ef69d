// Package skills discovers installed agent skills. A skill is a directory
// holding a SKILL.md manifest, whose optional front matter names and
// describes it. The package parses manifests, scans each platform's skills
// directory, and answers aggregate queries across platforms.
package skills

const (
	manifestFileName = "SKILL.md"

	// manifestSearchDepth bounds the recursive SKILL.md lookup inside a skill
	manifestSearchDepth = 3
)

// Metadata is the information extracted from a SKILL.md file. Every field is
// optional; empty strings mean absent.
type Metadata struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// InstalledSkill is a skill directory found on disk
type InstalledSkill struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags         []string `json:"tags" yaml:"tags"`
	InstallPath  string   `json:"install_path" yaml:"install_path"`
	ManifestPath string   `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty"`
}
