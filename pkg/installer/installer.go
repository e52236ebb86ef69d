// Package installer installs skills from git repositories into platform
// skills directories and removes them again.
//
// An install first tries the companion CLI (npx skills add). When that tool
// is disabled, missing, or exits cleanly without producing the skill, the
// installer fetches the repository with git itself: a sparse checkout of the
// requested sub-path moved into place, or a full clone when no sub-path is
// given.
package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/osutil"
	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
	"github.com/jingkaihe/skillhub/pkg/telemetry"
)

const (
	defaultToolTimeout = 10 * time.Minute
	defaultLockTimeout = 30 * time.Second
)

// Scope says whether a skill went to the per-user or a per-project directory
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
)

// Strategy names the mechanism that produced an install
type Strategy string

const (
	StrategyCompanion Strategy = "companion"
	StrategyGitSparse Strategy = "git-sparse"
	StrategyGitClone  Strategy = "git-clone"
)

type state string

const (
	stateValidating      state = "validating"
	stateResolvingTarget state = "resolving_target"
	statePrimaryAttempt  state = "primary_attempt"
	stateFallbackStaging state = "fallback_staging"
	stateFallbackFetch   state = "fallback_fetch"
	stateFallbackPlace   state = "fallback_place"
	stateDone            state = "done"
	stateFailed          state = "failed"
)

// CompanionConfig controls the companion CLI used as the primary strategy
type CompanionConfig struct {
	Enabled bool
	Command string
	Package string
}

// Request describes one install
type Request struct {
	ID      string
	Repo    string
	SubPath string
	// Platform defaults to claude
	Platform platform.Platform
	// ProjectRoot selects a project-scoped install when set
	ProjectRoot string
}

// Result describes a finished install
type Result struct {
	ID       string            `json:"id" yaml:"id"`
	Platform platform.Platform `json:"platform" yaml:"platform"`
	Scope    Scope             `json:"scope" yaml:"scope"`
	Path     string            `json:"path" yaml:"path"`
	Strategy Strategy          `json:"strategy" yaml:"strategy"`
}

// Message is the human readable summary of the install
func (r *Result) Message() string {
	return "installed: " + r.Path
}

// Installer installs skills
type Installer struct {
	resolver    *platform.Resolver
	runner      osutil.Runner
	gitBinary   string
	baseURL     string
	companion   CompanionConfig
	toolTimeout time.Duration
	lockTimeout time.Duration
	tempDir     string
}

// Option configures an Installer instance
type Option func(*Installer)

// WithResolver sets the platform resolver
func WithResolver(r *platform.Resolver) Option {
	return func(i *Installer) {
		i.resolver = r
	}
}

// WithRunner sets the runner used for git and the companion tool
func WithRunner(r osutil.Runner) Option {
	return func(i *Installer) {
		i.runner = r
	}
}

// WithGitBinary sets the git executable
func WithGitBinary(bin string) Option {
	return func(i *Installer) {
		if bin != "" {
			i.gitBinary = bin
		}
	}
}

// WithRepoBaseURL sets the base URL for owner/repo shorthands
func WithRepoBaseURL(url string) Option {
	return func(i *Installer) {
		if url != "" {
			i.baseURL = url
		}
	}
}

// WithCompanion configures the companion tool
func WithCompanion(c CompanionConfig) Option {
	return func(i *Installer) {
		if c.Command == "" {
			c.Command = "npx"
		}
		if c.Package == "" {
			c.Package = "skills"
		}
		i.companion = c
	}
}

// WithToolTimeout bounds each external tool call
func WithToolTimeout(d time.Duration) Option {
	return func(i *Installer) {
		if d > 0 {
			i.toolTimeout = d
		}
	}
}

// WithLockTimeout bounds the wait for another install of the same skill
func WithLockTimeout(d time.Duration) Option {
	return func(i *Installer) {
		if d > 0 {
			i.lockTimeout = d
		}
	}
}

// WithTempDir sets where staging clones are created
func WithTempDir(dir string) Option {
	return func(i *Installer) {
		i.tempDir = dir
	}
}

// NewInstaller creates a new skill installer
func NewInstaller(opts ...Option) *Installer {
	i := &Installer{
		resolver:  platform.NewResolver(),
		runner:    osutil.ExecRunner{},
		gitBinary: "git",
		baseURL:   DefaultRepoBaseURL,
		companion: CompanionConfig{
			Enabled: true,
			Command: "npx",
			Package: "skills",
		},
		toolTimeout: defaultToolTimeout,
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install installs one skill for one platform
func (i *Installer) Install(ctx context.Context, req Request) (*Result, error) {
	var result *Result
	err := telemetry.WithSpan(ctx, "installer.install", func(ctx context.Context) error {
		var err error
		result, err = i.install(ctx, req)
		if result != nil {
			telemetry.SetAttributes(ctx, attribute.String("skill.strategy", string(result.Strategy)))
		}
		return err
	},
		attribute.String("skill.id", req.ID),
		attribute.String("skill.platform", string(req.Platform)),
		attribute.Bool("skill.project", req.ProjectRoot != ""),
	)
	return result, err
}

func (i *Installer) install(ctx context.Context, req Request) (result *Result, err error) {
	log := logger.G(ctx).WithField("skill", req.ID)
	defer func() {
		if err != nil {
			enter(ctx, log.WithError(err), stateFailed)
		}
	}()

	enter(ctx, log, stateValidating)
	p := req.Platform
	if p == "" {
		p = platform.Claude
	}
	spec, err := platform.Lookup(string(p))
	if err != nil {
		return nil, err
	}
	if err := platform.ValidateIdentifier(req.ID); err != nil {
		return nil, err
	}
	src, err := ParseSource(req.Repo, i.baseURL)
	if err != nil {
		return nil, err
	}
	subPath, err := NormalizeSubPath(req.SubPath)
	if err != nil {
		return nil, err
	}

	enter(ctx, log, stateResolvingTarget)
	target, err := i.resolver.TargetDir(p, req.ProjectRoot, req.ID)
	if err != nil {
		return nil, err
	}
	skillsDir := filepath.Dir(target)
	if err := os.MkdirAll(skillsDir, 0o755); err != nil {
		return nil, skillerr.Filesystem("create skills directory", skillsDir, err)
	}

	lock, err := i.acquireLock(ctx, skillsDir, req.ID)
	if err != nil {
		return nil, err
	}
	defer lock.release(ctx)

	if pathExists(target) {
		return nil, skillerr.AlreadyInstalled(req.ID, target)
	}

	result = &Result{
		ID:       req.ID,
		Platform: p,
		Scope:    ScopeGlobal,
		Path:     target,
	}
	if strings.TrimSpace(req.ProjectRoot) != "" {
		result.Scope = ScopeProject
	}

	if i.companionAvailable(ctx) {
		enter(ctx, log, statePrimaryAttempt)
		installed, err := i.runCompanion(ctx, spec, src, subPath, req, target)
		if err != nil {
			return nil, err
		}
		if installed {
			result.Strategy = StrategyCompanion
			enter(ctx, log.WithField("strategy", result.Strategy), stateDone)
			return result, nil
		}
		log.WithField("path", target).Info("companion tool exited cleanly without installing the skill, falling back to git")
	}

	strategy, err := i.installWithGit(ctx, log, src, subPath, req.ID, target)
	if err != nil {
		return nil, err
	}
	result.Strategy = strategy
	enter(ctx, log.WithField("strategy", strategy), stateDone)
	return result, nil
}

func (i *Installer) installWithGit(ctx context.Context, log *logrus.Entry, src Source, subPath, id, target string) (Strategy, error) {
	if subPath == "" {
		enter(ctx, log, stateFallbackFetch)
		if err := i.cloneInto(ctx, src, id, target); err != nil {
			return "", err
		}
		return StrategyGitClone, nil
	}

	enter(ctx, log, stateFallbackStaging)
	tmp, err := i.newStagingDir()
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			log.WithError(err).WithField("path", tmp).Warn("failed to remove staging directory")
		}
	}()

	enter(ctx, log, stateFallbackFetch)
	dir, err := i.sparseFetch(ctx, src, tmp, subPath)
	if err != nil {
		return "", err
	}

	enter(ctx, log, stateFallbackPlace)
	if err := placeDir(dir, target, id); err != nil {
		return "", err
	}
	return StrategyGitSparse, nil
}

func enter(ctx context.Context, log *logrus.Entry, s state) {
	log.WithField("state", s).Debug("install state changed")
	telemetry.AddEvent(ctx, "install.state", attribute.String("state", string(s)))
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
