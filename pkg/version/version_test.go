package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// stamp sets the variables the release build fills in with -ldflags -X
func stamp(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	prevVersion, prevCommit, prevBuildTime := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = version, commit, buildTime
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = prevVersion, prevCommit, prevBuildTime
	})
}

func TestGetDefaultsForDevBuilds(t *testing.T) {
	info := Get()

	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "unknown", info.GitCommit)
	assert.Equal(t, "unknown", info.BuildTime)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestGetReflectsStampedValues(t *testing.T) {
	stamp(t, "v0.4.0", "9f1c2ab", "2026-10-01T12:00:00Z")

	info := Get()
	assert.Equal(t, "v0.4.0", info.Version)
	assert.Equal(t, "9f1c2ab", info.GitCommit)
	assert.Equal(t, "2026-10-01T12:00:00Z", info.BuildTime)
	assert.Equal(t,
		"Version: v0.4.0, GitCommit: 9f1c2ab, BuildTime: 2026-10-01T12:00:00Z, GoVersion: "+runtime.Version(),
		info.String())
}

func TestInfoJSON(t *testing.T) {
	stamp(t, "v0.4.0", "9f1c2ab", "2026-10-01T12:00:00Z")

	out, err := Get().JSON()
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	assert.Equal(t, map[string]string{
		"version":   "v0.4.0",
		"gitCommit": "9f1c2ab",
		"buildTime": "2026-10-01T12:00:00Z",
		"goVersion": runtime.Version(),
	}, fields)
}

func TestInfoYAMLUsesSameKeysAsJSON(t *testing.T) {
	info := Info{Version: "v1.0.0", GitCommit: "abc123", BuildTime: "now", GoVersion: "go1.25.1"}

	out, err := yaml.Marshal(info)
	require.NoError(t, err)
	assert.Equal(t, "version: v1.0.0\ngitCommit: abc123\nbuildTime: now\ngoVersion: go1.25.1\n", string(out))

	var back Info
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, info, back)
}
