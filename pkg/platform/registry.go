// Package platform knows where each supported agent tool keeps its skills.
// It holds the fixed platform registry, resolves global and project skill
// directories, and validates paths before anything destructive touches them.
package platform

import (
	"strings"

	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// Platform is the canonical key of a supported agent tool.
type Platform string

// Supported platforms
const (
	Claude      Platform = "claude"
	Antigravity Platform = "antigravity"
	Gemini      Platform = "gemini"
)

// Spec describes the directory conventions of a platform. Segments are
// relative to the user home directory (Detect, Global) or to a project root
// (Project).
type Spec struct {
	Key       Platform
	Detect    []string
	Global    []string
	Project   []string
	AgentName string // agent name understood by the companion skills CLI
}

var registry = [...]Spec{
	{
		Key:       Claude,
		Detect:    []string{".claude"},
		Global:    []string{".claude", "skills"},
		Project:   []string{".claude", "skills"},
		AgentName: "claude-code",
	},
	{
		Key:       Antigravity,
		Detect:    []string{".gemini", "antigravity"},
		Global:    []string{".gemini", "antigravity", "skills"},
		Project:   []string{".agent", "skills"},
		AgentName: "antigravity",
	},
	{
		Key:       Gemini,
		Detect:    []string{".gemini"},
		Global:    []string{".gemini", "skills"},
		Project:   []string{".gemini", "skills"},
		AgentName: "gemini-cli",
	},
}

// All returns every supported platform in registry order.
func All() []Platform {
	out := make([]Platform, 0, len(registry))
	for _, s := range registry {
		out = append(out, s.Key)
	}
	return out
}

// Keys returns the platform keys as plain strings.
func Keys() []string {
	out := make([]string, 0, len(registry))
	for _, s := range registry {
		out = append(out, string(s.Key))
	}
	return out
}

// Lookup returns the Spec registered under key.
func Lookup(key string) (Spec, error) {
	key = strings.TrimSpace(key)
	for _, s := range registry {
		if string(s.Key) == key {
			return s.clone(), nil
		}
	}
	return Spec{}, skillerr.UnsupportedPlatform(key, Keys())
}

// Parse validates key and returns it as a Platform.
func Parse(key string) (Platform, error) {
	s, err := Lookup(key)
	if err != nil {
		return "", err
	}
	return s.Key, nil
}

func (p Platform) String() string { return string(p) }

// clone keeps callers from mutating the registry through the returned slices.
func (s Spec) clone() Spec {
	s.Detect = append([]string(nil), s.Detect...)
	s.Global = append([]string(nil), s.Global...)
	s.Project = append([]string(nil), s.Project...)
	return s
}
