package platform

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// ValidateIdentifier checks that id can safely be used as a directory name
// and as a command-line argument.
func ValidateIdentifier(id string) error {
	if strings.TrimSpace(id) == "" {
		return skillerr.BlankField("skill id")
	}
	if id == "." || id == ".." {
		return skillerr.InvalidIdentifier(id, "reserved path name")
	}
	for _, c := range id {
		switch {
		case unicode.IsSpace(c):
			return skillerr.InvalidIdentifier(id, "contains whitespace")
		case c == '/' || c == '\\':
			return skillerr.InvalidIdentifier(id, "contains a path separator")
		case c == '"' || c == '\'':
			return skillerr.InvalidIdentifier(id, "contains a quote")
		case unicode.IsControl(c):
			return skillerr.InvalidIdentifier(id, "contains a control character")
		}
	}
	return nil
}

// IsValidSkillsPath reports whether path may be removed as an installed
// skill. A path qualifies when it lies strictly below the home directory, or
// when its canonical form lies below some platform's canonical global skills
// directory (or that directory's parent). Platform roots themselves never
// qualify. Any resolution failure yields false.
func (r *Resolver) IsValidSkillsPath(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if r.isPlatformRoot(abs) {
		return false
	}

	if home, err := r.HomeDir(); err == nil {
		if homeAbs, err := filepath.Abs(home); err == nil && isStrictDescendant(homeAbs, abs) {
			return true
		}
	}

	canonical, err := canonicalize(abs)
	if err != nil {
		return false
	}
	if r.isPlatformRoot(canonical) {
		return false
	}
	for _, p := range All() {
		dir, err := r.GlobalDir(p)
		if err != nil {
			continue
		}
		root, err := canonicalize(dir)
		if err != nil {
			continue
		}
		if isStrictDescendant(root, canonical) || isStrictDescendant(filepath.Dir(root), canonical) {
			return true
		}
	}
	return false
}

// ValidateSkillsPath is IsValidSkillsPath returning a classified error.
func (r *Resolver) ValidateSkillsPath(path string) error {
	if !r.IsValidSkillsPath(path) {
		return skillerr.UnsafePath(path)
	}
	return nil
}

// ValidateProjectSkillsPath accepts path when it lies strictly below the
// project skills directory of p under root, comparing canonical forms. The
// last element of path is not resolved, so a symlinked skill is removed as a
// link. Paths failing that test fall back to ValidateSkillsPath.
func (r *Resolver) ValidateProjectSkillsPath(p Platform, root, path string) error {
	dir, err := r.ProjectDir(p, root)
	if err != nil {
		return err
	}
	if canonicalDir, err := canonicalize(dir); err == nil && strings.TrimSpace(path) != "" {
		if parent, err := canonicalize(filepath.Dir(filepath.Clean(path))); err == nil {
			target := filepath.Join(parent, filepath.Base(filepath.Clean(path)))
			if isStrictDescendant(canonicalDir, target) && !r.isPlatformRoot(target) {
				return nil
			}
		}
	}
	return r.ValidateSkillsPath(path)
}

func (r *Resolver) isPlatformRoot(path string) bool {
	for _, p := range All() {
		for _, dirFn := range []func(Platform) (string, error){r.GlobalDir, r.DetectionDir} {
			dir, err := dirFn(p)
			if err != nil {
				continue
			}
			if samePath(dir, path) {
				return true
			}
			if canonical, err := canonicalize(dir); err == nil && samePath(canonical, path) {
				return true
			}
		}
	}
	return false
}

func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

func samePath(a, b string) bool {
	a, errA := filepath.Abs(a)
	b, errB := filepath.Abs(b)
	return errA == nil && errB == nil && a == b
}

// isStrictDescendant reports whether target lies below root (and is not root).
func isStrictDescendant(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	rel = filepath.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
