package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// Resolver computes platform directories relative to the user home directory.
type Resolver struct {
	getenv  func(string) string
	goos    string
	homeDir string
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithEnv replaces the environment lookup used for home directory resolution
func WithEnv(getenv func(string) string) ResolverOption {
	return func(r *Resolver) {
		r.getenv = getenv
	}
}

// WithGOOS overrides the operating system used to pick the home variable order
func WithGOOS(goos string) ResolverOption {
	return func(r *Resolver) {
		r.goos = goos
	}
}

// WithHomeDir pins the home directory, bypassing environment lookup
func WithHomeDir(dir string) ResolverOption {
	return func(r *Resolver) {
		r.homeDir = dir
	}
}

// NewResolver creates a Resolver backed by the process environment
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		getenv: os.Getenv,
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) homeVars() []string {
	if r.goos == "windows" {
		return []string{"USERPROFILE", "HOME"}
	}
	return []string{"HOME", "USERPROFILE"}
}

// HomeDir returns the user home directory.
func (r *Resolver) HomeDir() (string, error) {
	if strings.TrimSpace(r.homeDir) != "" {
		return filepath.Clean(r.homeDir), nil
	}

	vars := r.homeVars()
	for _, name := range vars {
		if v := r.getenv(name); strings.TrimSpace(v) != "" {
			return filepath.Clean(v), nil
		}
	}
	return "", skillerr.NoHomeDirectory(vars...)
}

func (r *Resolver) underHome(segments []string) (string, error) {
	home, err := r.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, segments...)...), nil
}

// GlobalDir returns the per-user skills directory of p, e.g. ~/.claude/skills.
func (r *Resolver) GlobalDir(p Platform) (string, error) {
	spec, err := Lookup(string(p))
	if err != nil {
		return "", err
	}
	return r.underHome(spec.Global)
}

// DetectionDir returns the directory whose presence means p is installed.
func (r *Resolver) DetectionDir(p Platform) (string, error) {
	spec, err := Lookup(string(p))
	if err != nil {
		return "", err
	}
	return r.underHome(spec.Detect)
}

// ProjectDir returns the project-scoped skills directory of p under root.
func (r *Resolver) ProjectDir(p Platform, root string) (string, error) {
	spec, err := Lookup(string(p))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(root) == "" {
		return "", skillerr.BlankField("project root")
	}
	return filepath.Join(append([]string{filepath.Clean(root)}, spec.Project...)...), nil
}

// SkillsDir returns the project directory when projectRoot is set and the
// global directory otherwise.
func (r *Resolver) SkillsDir(p Platform, projectRoot string) (string, error) {
	if strings.TrimSpace(projectRoot) != "" {
		return r.ProjectDir(p, projectRoot)
	}
	return r.GlobalDir(p)
}

// TargetDir returns the install directory of skill id.
func (r *Resolver) TargetDir(p Platform, projectRoot, id string) (string, error) {
	if err := ValidateIdentifier(id); err != nil {
		return "", err
	}
	dir, err := r.SkillsDir(p, projectRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, id), nil
}

// IsDetected reports whether the platform's detection directory exists.
func (r *Resolver) IsDetected(p Platform) bool {
	dir, err := r.DetectionDir(p)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
