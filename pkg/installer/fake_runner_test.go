package installer

import (
	"context"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillhub/pkg/osutil"
	"github.com/jingkaihe/skillhub/pkg/platform"
)

type handler func(ctx context.Context, inv osutil.Invocation) (osutil.Output, error)

// fakeRunner records invocations and answers them with per-binary handlers.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []osutil.Invocation
	onPath   map[string]bool
	handlers map[string]handler
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		onPath:   map[string]bool{},
		handlers: map[string]handler{},
	}
}

func (f *fakeRunner) Run(ctx context.Context, inv osutil.Invocation) (osutil.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	h := f.handlers[inv.Name]
	f.mu.Unlock()

	if h == nil {
		return osutil.Output{}, nil
	}
	return h(ctx, inv)
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.onPath[name] {
		return "/usr/bin/" + name, nil
	}
	return "", exec.ErrNotFound
}

func (f *fakeRunner) commands(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c.Name == name {
			out = append(out, strings.Join(c.Args, " "))
		}
	}
	return out
}

func (f *fakeRunner) invocations(name string) []osutil.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []osutil.Invocation
	for _, c := range f.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// fakeGit emulates git against a repository holding the given directories,
// each with a SKILL.md.
func fakeGit(t *testing.T, dirs ...string) handler {
	t.Helper()
	var mu sync.Mutex
	sparse := ""

	materialize := func(root string, include func(string) bool) {
		for _, d := range dirs {
			if include(d) {
				full := filepath.Join(root, filepath.FromSlash(d))
				require.NoError(t, os.MkdirAll(full, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(full, "SKILL.md"), []byte("# "+path.Base(d)+"\n"), 0o644))
			}
		}
	}

	return func(_ context.Context, inv osutil.Invocation) (osutil.Output, error) {
		mu.Lock()
		defer mu.Unlock()

		switch inv.Args[0] {
		case "clone":
			dest := inv.Args[len(inv.Args)-1]
			require.NoError(t, os.MkdirAll(filepath.Join(dest, ".git"), 0o755))
			if inv.Args[1] != "--filter=blob:none" {
				materialize(dest, func(string) bool { return true })
			}
		case "sparse-checkout":
			if inv.Args[1] == "set" {
				sparse = inv.Args[2]
			}
		case "checkout":
			materialize(inv.Dir, func(d string) bool {
				return d == sparse || strings.HasPrefix(d, sparse+"/")
			})
		case "ls-tree":
			var names []string
			for _, d := range dirs {
				if rest, ok := strings.CutPrefix(d, "skills/"); ok {
					names = append(names, strings.SplitN(rest, "/", 2)[0])
				}
			}
			sort.Strings(names)
			return osutil.Output{Stdout: strings.Join(names, "\n") + "\n"}, nil
		}
		return osutil.Output{}, nil
	}
}

func newTestInstaller(t *testing.T, runner osutil.Runner, opts ...Option) (*Installer, string, string) {
	t.Helper()
	home := t.TempDir()
	tmpRoot := t.TempDir()
	base := []Option{
		WithResolver(platform.NewResolver(platform.WithHomeDir(home))),
		WithRunner(runner),
		WithTempDir(tmpRoot),
		WithCompanion(CompanionConfig{Enabled: false}),
	}
	return NewInstaller(append(base, opts...)...), home, tmpRoot
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "expected %s to be empty", dir)
}
