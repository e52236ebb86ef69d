package installer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
	"github.com/jingkaihe/skillhub/pkg/telemetry"
)

// BatchResult lists what InstallToAll did per platform
type BatchResult struct {
	Installed []platform.Platform `json:"installed" yaml:"installed"`
	Skipped   []platform.Platform `json:"skipped" yaml:"skipped"`
}

// InstallToAll installs a skill globally on every detected platform that
// does not have it yet. The first failure aborts the remaining platforms.
func (i *Installer) InstallToAll(ctx context.Context, id, repo, subPath string) (*BatchResult, error) {
	var result *BatchResult
	err := telemetry.WithSpan(ctx, "installer.install_to_all", func(ctx context.Context) error {
		var err error
		result, err = i.installToAll(ctx, id, repo, subPath)
		return err
	}, attribute.String("skill.id", id))
	return result, err
}

func (i *Installer) installToAll(ctx context.Context, id, repo, subPath string) (*BatchResult, error) {
	if err := platform.ValidateIdentifier(id); err != nil {
		return nil, err
	}

	var detected []platform.Platform
	for _, p := range platform.All() {
		if i.resolver.IsDetected(p) {
			detected = append(detected, p)
		}
	}
	if len(detected) == 0 {
		return nil, skillerr.NoPlatformsDetected(platform.Keys())
	}

	result := &BatchResult{
		Installed: []platform.Platform{},
		Skipped:   []platform.Platform{},
	}
	for _, p := range detected {
		dir, err := i.resolver.GlobalDir(p)
		if err != nil {
			return nil, err
		}
		if pathExists(filepath.Join(dir, id)) {
			logger.G(ctx).WithField("skill", id).WithField("platform", p).Debug("already installed, skipping")
			result.Skipped = append(result.Skipped, p)
			continue
		}

		if _, err := i.Install(ctx, Request{ID: id, Repo: repo, SubPath: subPath, Platform: p}); err != nil {
			if len(result.Installed) > 0 {
				return nil, errors.Wrapf(err, "install to %s failed after installing to %s", p, joinPlatforms(result.Installed))
			}
			return nil, errors.Wrapf(err, "install to %s failed", p)
		}
		result.Installed = append(result.Installed, p)
	}
	return result, nil
}

func joinPlatforms(ps []platform.Platform) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
