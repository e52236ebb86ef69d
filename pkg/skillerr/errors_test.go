package skillerr

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindAndCodeThroughWrapping(t *testing.T) {
	base := AlreadyInstalled("foo", "/home/u/.claude/skills/foo")
	wrapped := errors.Wrap(errors.Wrap(base, "inner"), "outer")

	assert.Equal(t, KindAlreadyExists, KindOf(wrapped))
	assert.Equal(t, CodeAlreadyInstalled, CodeOf(wrapped))
	assert.True(t, IsKind(wrapped, KindAlreadyExists))
	assert.True(t, IsCode(wrapped, CodeAlreadyInstalled))
	assert.False(t, IsCode(wrapped, CodeUnsafePath))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "foo", e.Identifier)
}

func TestUnclassifiedError(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, Kind(""), KindOf(err))
	assert.Equal(t, Code(""), CodeOf(err))

	_, ok := As(nil)
	assert.False(t, ok)
}

func TestUnsupportedPlatformNamesAllowedSet(t *testing.T) {
	err := UnsupportedPlatform("cursor", []string{"claude", "antigravity", "gemini"})
	assert.Contains(t, err.Error(), "claude/antigravity/gemini")
	assert.Equal(t, []string{"claude", "antigravity", "gemini"}, err.Allowed)
	assert.Equal(t, KindConfiguration, err.Kind)
}

func TestToolFailedIncludesOutput(t *testing.T) {
	err := ToolFailed("git", []string{"clone", "https://example.com/a/b.git"}, "some out", "fatal: nope", errors.New("exit status 128"))

	msg := err.Error()
	assert.Contains(t, msg, "git command failed: git clone https://example.com/a/b.git")
	assert.Contains(t, msg, "stdout:\nsome out")
	assert.Contains(t, msg, "stderr:\nfatal: nope")
	assert.Equal(t, []string{"clone", "https://example.com/a/b.git"}, err.Args)
}

func TestSourcePathNotFoundHint(t *testing.T) {
	err := SourcePathNotFound("/tmp/x/skills/nope", "nope", "available under skills/: a, b")
	assert.Contains(t, err.Error(), `"nope"`)
	assert.Contains(t, err.Error(), "available under skills/: a, b")
	assert.Equal(t, KindNotFound, err.Kind)
}

func TestFilesystemUnwraps(t *testing.T) {
	err := Filesystem("remove", "/x", os.ErrPermission)
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.Equal(t, os.ErrPermission, errors.Cause(err))
}

func TestConfigurationError(t *testing.T) {
	err := Configuration("failed to read config file", os.ErrPermission)
	assert.Equal(t, KindConfiguration, err.Kind)
	assert.Equal(t, CodeInvalidConfig, err.Code)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "failed to read config file")

	assert.Equal(t, "tool_timeout must not be negative", Configuration("tool_timeout must not be negative", nil).Error())
}
