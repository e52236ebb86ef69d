package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillhub/pkg/osutil"
	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

func TestInstallToAllNoPlatforms(t *testing.T) {
	runner := newFakeRunner()
	inst, _, _ := newTestInstaller(t, runner)

	result, err := inst.InstallToAll(context.Background(), "foo", "owner/repo", "skills/foo")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, skillerr.IsCode(err, skillerr.CodeNoPlatformsDetected))
	assert.True(t, skillerr.IsKind(err, skillerr.KindConfiguration))
	assert.Empty(t, runner.calls)
}

func TestInstallToAllSkipsExisting(t *testing.T) {
	runner := newFakeRunner()
	runner.handlers["git"] = fakeGit(t, "skills/foo")
	inst, home, _ := newTestInstaller(t, runner)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".claude"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".gemini", "skills", "foo"), 0o755))

	result, err := inst.InstallToAll(context.Background(), "foo", "owner/repo", "skills/foo")
	require.NoError(t, err)
	assert.Equal(t, []platform.Platform{platform.Claude}, result.Installed)
	assert.Equal(t, []platform.Platform{platform.Gemini}, result.Skipped)
	assert.FileExists(t, filepath.Join(home, ".claude", "skills", "foo", "SKILL.md"))
	assert.NoDirExists(t, filepath.Join(home, ".gemini", "antigravity", "skills", "foo"), "antigravity is not detected")
}

func TestInstallToAllStopsAtFirstFailure(t *testing.T) {
	runner := newFakeRunner()
	inst, home, _ := newTestInstaller(t, runner)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".claude"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".gemini", "antigravity"), 0o755))

	clones := 0
	runner.handlers["git"] = func(_ context.Context, inv osutil.Invocation) (osutil.Output, error) {
		clones++
		if clones == 2 {
			return osutil.Output{Stderr: "fatal: repository not found", ExitCode: 128}, nil
		}
		require.NoError(t, os.MkdirAll(inv.Args[len(inv.Args)-1], 0o755))
		return osutil.Output{}, nil
	}

	result, err := inst.InstallToAll(context.Background(), "foo", "owner/repo", "")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, skillerr.IsCode(err, skillerr.CodeToolFailed))
	assert.True(t, strings.HasPrefix(err.Error(), "install to antigravity failed after installing to claude"), err.Error())
	assert.Equal(t, 2, clones, "gemini must not be attempted after a failure")
}

func TestInstallToAllInvalidID(t *testing.T) {
	inst, _, _ := newTestInstaller(t, newFakeRunner())
	_, err := inst.InstallToAll(context.Background(), "../foo", "owner/repo", "")
	assert.True(t, skillerr.IsCode(err, skillerr.CodeInvalidIdentifier))
}
