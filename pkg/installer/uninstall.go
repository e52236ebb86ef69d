package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
	"github.com/jingkaihe/skillhub/pkg/telemetry"
)

// Uninstaller removes installed skills
type Uninstaller struct {
	resolver *platform.Resolver
}

// NewUninstaller creates an uninstaller. A nil resolver uses the process
// environment.
func NewUninstaller(r *platform.Resolver) *Uninstaller {
	if r == nil {
		r = platform.NewResolver()
	}
	return &Uninstaller{resolver: r}
}

// Uninstall removes the skill directory at installPath after checking that
// it is a skill directory named id inside a recognized skills directory.
func (u *Uninstaller) Uninstall(ctx context.Context, id, installPath string) error {
	return telemetry.WithSpan(ctx, "installer.uninstall", func(ctx context.Context) error {
		return u.uninstall(ctx, id, installPath, u.resolver.ValidateSkillsPath)
	}, attribute.String("skill.id", id))
}

func (u *Uninstaller) uninstall(ctx context.Context, id, installPath string, validate func(string) error) error {
	if strings.TrimSpace(id) == "" {
		return skillerr.BlankField("skill id")
	}
	if strings.TrimSpace(installPath) == "" {
		return skillerr.BlankField("install path")
	}
	if err := platform.ValidateIdentifier(id); err != nil {
		return err
	}
	if _, err := os.Lstat(installPath); err != nil {
		if os.IsNotExist(err) {
			return skillerr.InstallPathNotFound(installPath)
		}
		return skillerr.Filesystem("inspect", installPath, err)
	}
	if err := validate(installPath); err != nil {
		return err
	}
	if filepath.Base(filepath.Clean(installPath)) != id {
		return skillerr.IdentifierMismatch(id, installPath)
	}

	if err := os.RemoveAll(installPath); err != nil {
		return skillerr.Filesystem("remove", installPath, err)
	}
	logger.G(ctx).WithField("skill", id).WithField("path", installPath).Info("skill uninstalled")
	return nil
}

// UninstallFrom removes skill id from the skills directory of p, or of the
// project under projectRoot when it is set. A project directory counts as a
// recognized skills directory wherever the project lives.
func (u *Uninstaller) UninstallFrom(ctx context.Context, id string, p platform.Platform, projectRoot string) (string, error) {
	target, err := u.resolver.TargetDir(p, projectRoot, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(projectRoot) == "" {
		return target, u.Uninstall(ctx, id, target)
	}

	validate := func(path string) error {
		return u.resolver.ValidateProjectSkillsPath(p, projectRoot, path)
	}
	return target, telemetry.WithSpan(ctx, "installer.uninstall", func(ctx context.Context) error {
		return u.uninstall(ctx, id, target, validate)
	}, attribute.String("skill.id", id), attribute.Bool("skill.project", true))
}
