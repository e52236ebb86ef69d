package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/skillhub/pkg/skillerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestAllAndKeys(t *testing.T) {
	assert.Equal(t, []Platform{Claude, Antigravity, Gemini}, All())
	assert.Equal(t, []string{"claude", "antigravity", "gemini"}, Keys())
}

func TestLookup(t *testing.T) {
	spec, err := Lookup(" claude ")
	require.NoError(t, err)
	assert.Equal(t, Claude, spec.Key)
	assert.Equal(t, "claude-code", spec.AgentName)

	spec.Global[0] = "mutated"
	again, err := Lookup("claude")
	require.NoError(t, err)
	assert.Equal(t, ".claude", again.Global[0], "registry must not be mutable through Lookup")
}

func TestLookupUnknownPlatform(t *testing.T) {
	for _, key := range []string{"cursor", "", "Claude", "codex"} {
		t.Run(key, func(t *testing.T) {
			_, err := Lookup(key)
			require.Error(t, err)
			assert.True(t, skillerr.IsCode(err, skillerr.CodeUnsupportedPlatform))
			assert.True(t, skillerr.IsKind(err, skillerr.KindConfiguration))
			assert.Contains(t, err.Error(), "claude/antigravity/gemini")
		})
	}
}

func TestHomeDir(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		env      map[string]string
		expected string
		wantErr  bool
	}{
		{"unix prefers HOME", "linux", map[string]string{"HOME": "/home/u", "USERPROFILE": "/other"}, "/home/u", false},
		{"windows prefers USERPROFILE", "windows", map[string]string{"HOME": "/home/u", "USERPROFILE": "/profile"}, "/profile", false},
		{"blank HOME falls back", "linux", map[string]string{"HOME": "   ", "USERPROFILE": "/profile"}, "/profile", false},
		{"nothing set", "linux", map[string]string{}, "", true},
		{"only whitespace", "darwin", map[string]string{"HOME": " ", "USERPROFILE": "\t"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(WithEnv(envMap(tt.env)), WithGOOS(tt.goos))
			home, err := r.HomeDir()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, skillerr.IsCode(err, skillerr.CodeNoHomeDirectory))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.expected), home)
		})
	}
}

func TestDirectories(t *testing.T) {
	home := t.TempDir()
	r := NewResolver(WithHomeDir(home))

	dir, err := r.GlobalDir(Claude)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".claude", "skills"), dir)

	dir, err = r.GlobalDir(Antigravity)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".gemini", "antigravity", "skills"), dir)

	dir, err = r.DetectionDir(Antigravity)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".gemini", "antigravity"), dir)

	dir, err = r.ProjectDir(Antigravity, "/work/proj")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/work/proj", ".agent", "skills"), dir)

	_, err = r.ProjectDir(Claude, "  ")
	assert.True(t, skillerr.IsCode(err, skillerr.CodeBlankField))

	_, err = r.GlobalDir(Platform("cursor"))
	assert.True(t, skillerr.IsCode(err, skillerr.CodeUnsupportedPlatform))
}

func TestTargetDir(t *testing.T) {
	home := t.TempDir()
	r := NewResolver(WithHomeDir(home))

	dir, err := r.TargetDir(Gemini, "", "my-skill")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".gemini", "skills", "my-skill"), dir)

	dir, err = r.TargetDir(Gemini, "/proj", "my-skill")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/proj", ".gemini", "skills", "my-skill"), dir)

	_, err = r.TargetDir(Gemini, "", "../escape")
	assert.True(t, skillerr.IsCode(err, skillerr.CodeInvalidIdentifier))
}

func TestIsDetected(t *testing.T) {
	home := t.TempDir()
	r := NewResolver(WithHomeDir(home))

	assert.False(t, r.IsDetected(Claude))

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".claude"), 0o755))
	assert.True(t, r.IsDetected(Claude), "detection must not require the skills subdirectory")
	assert.False(t, r.IsDetected(Gemini))

	require.NoError(t, os.WriteFile(filepath.Join(home, ".gemini"), []byte("file"), 0o644))
	assert.False(t, r.IsDetected(Gemini), "a regular file is not a platform install")
}

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"foo", "react-best-practices", "a.b_c", "Skill1"}
	for _, id := range valid {
		assert.NoError(t, ValidateIdentifier(id), id)
	}

	invalid := []string{"has space", "a/b", `a\b`, `a"b`, "a'b", "tab\there", "new\nline", ".", ".."}
	for _, id := range invalid {
		err := ValidateIdentifier(id)
		require.Error(t, err, id)
		assert.True(t, skillerr.IsCode(err, skillerr.CodeInvalidIdentifier), id)
		assert.True(t, skillerr.IsKind(err, skillerr.KindValidation), id)
	}

	assert.True(t, skillerr.IsCode(ValidateIdentifier("   "), skillerr.CodeBlankField))
}

func TestIsValidSkillsPath(t *testing.T) {
	home := t.TempDir()
	outside := t.TempDir()
	r := NewResolver(WithHomeDir(home))

	skillPath := filepath.Join(home, ".claude", "skills", "foo")
	require.NoError(t, os.MkdirAll(skillPath, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "foo"), 0o755))

	assert.True(t, r.IsValidSkillsPath(skillPath))
	assert.False(t, r.IsValidSkillsPath(filepath.Join(outside, "foo")))
	assert.False(t, r.IsValidSkillsPath(filepath.Join(outside, "missing")))
	assert.False(t, r.IsValidSkillsPath(""))
	assert.False(t, r.IsValidSkillsPath(home), "home itself is not a skill")
	assert.False(t, r.IsValidSkillsPath(filepath.Join(home, "..", filepath.Base(outside), "foo")))
	assert.False(t, r.IsValidSkillsPath(filepath.Join(home, ".claude", "skills")), "platform root is not a skill")
	assert.False(t, r.IsValidSkillsPath(filepath.Join(home, ".claude")), "detection root is not a skill")

	err := r.ValidateSkillsPath(filepath.Join(outside, "foo"))
	assert.True(t, skillerr.IsCode(err, skillerr.CodeUnsafePath))
	assert.NoError(t, r.ValidateSkillsPath(skillPath))
}

func TestIsValidSkillsPathThroughSymlinkedSkillsDir(t *testing.T) {
	home := t.TempDir()
	real := t.TempDir()
	r := NewResolver(WithHomeDir(home))

	realSkills := filepath.Join(real, "skills")
	require.NoError(t, os.MkdirAll(filepath.Join(realSkills, "foo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".claude"), 0o755))
	require.NoError(t, os.Symlink(realSkills, filepath.Join(home, ".claude", "skills")))

	assert.True(t, r.IsValidSkillsPath(filepath.Join(realSkills, "foo")))
	assert.False(t, r.IsValidSkillsPath(realSkills))
}

func TestValidateProjectSkillsPath(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	outside := t.TempDir()
	r := NewResolver(WithHomeDir(home))

	skills := filepath.Join(project, ".claude", "skills")
	require.NoError(t, os.MkdirAll(filepath.Join(skills, "foo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "foo"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(outside, "foo"), filepath.Join(skills, "linked")))

	assert.NoError(t, r.ValidateProjectSkillsPath(Claude, project, filepath.Join(skills, "foo")))
	assert.NoError(t, r.ValidateProjectSkillsPath(Claude, project, filepath.Join(skills, "linked")), "the link itself lives in the project")

	for _, path := range []string{
		skills,
		filepath.Join(project, ".claude"),
		filepath.Join(skills, "..", "..", "foo"),
		filepath.Join(outside, "foo"),
		filepath.Join(project, ".gemini", "skills", "foo"),
	} {
		err := r.ValidateProjectSkillsPath(Claude, project, path)
		assert.True(t, skillerr.IsCode(err, skillerr.CodeUnsafePath), path)
	}

	// The global rule still applies for paths under home.
	global := filepath.Join(home, ".claude", "skills", "foo")
	require.NoError(t, os.MkdirAll(global, 0o755))
	assert.NoError(t, r.ValidateProjectSkillsPath(Claude, project, global))

	err := r.ValidateProjectSkillsPath(Claude, "  ", filepath.Join(skills, "foo"))
	assert.True(t, skillerr.IsCode(err, skillerr.CodeBlankField))
}

func TestValidateProjectSkillsPathThroughSymlinkedProject(t *testing.T) {
	home := t.TempDir()
	real := t.TempDir()
	links := t.TempDir()
	r := NewResolver(WithHomeDir(home))

	require.NoError(t, os.MkdirAll(filepath.Join(real, ".gemini", "skills", "foo"), 0o755))
	project := filepath.Join(links, "proj")
	require.NoError(t, os.Symlink(real, project))

	assert.NoError(t, r.ValidateProjectSkillsPath(Gemini, project, filepath.Join(project, ".gemini", "skills", "foo")))
	assert.NoError(t, r.ValidateProjectSkillsPath(Gemini, project, filepath.Join(real, ".gemini", "skills", "foo")))
}
