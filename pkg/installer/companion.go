package installer

import (
	"context"
	"path"
	"strings"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/osutil"
	"github.com/jingkaihe/skillhub/pkg/platform"
)

var companionEnv = []string{"DISABLE_TELEMETRY=1", "DO_NOT_TRACK=1"}

// companionAvailable reports whether the companion tool is enabled, on PATH,
// and answers --version successfully.
func (i *Installer) companionAvailable(ctx context.Context) bool {
	if !i.companion.Enabled {
		return false
	}
	log := logger.G(ctx).WithField("tool", i.companion.Command)
	if _, err := i.runner.LookPath(i.companion.Command); err != nil {
		log.WithError(err).Debug("companion tool not found")
		return false
	}
	if _, err := i.runTool(ctx, osutil.Invocation{Name: i.companion.Command, Args: []string{"--version"}}); err != nil {
		log.WithError(err).Debug("companion tool unusable")
		return false
	}
	return true
}

// companionSkillName is the name the companion tool looks up in the repository
func companionSkillName(id, subPath string) string {
	if subPath == "" {
		return id
	}
	return path.Base(subPath)
}

func (i *Installer) companionInvocation(spec platform.Spec, src Source, subPath string, req Request) osutil.Invocation {
	args := []string{
		"--yes", i.companion.Package, "add", src.WebURL(),
		"--skill", companionSkillName(req.ID, subPath),
		"--agent", spec.AgentName,
	}
	inv := osutil.Invocation{Name: i.companion.Command, Env: companionEnv}
	if root := strings.TrimSpace(req.ProjectRoot); root != "" {
		inv.Dir = root
	} else {
		args = append(args, "-g")
	}
	inv.Args = append(args, "-y")
	return inv
}

// runCompanion runs the companion tool and reports whether it produced target.
// Any tool error is final; only a clean exit without the target falls back.
func (i *Installer) runCompanion(ctx context.Context, spec platform.Spec, src Source, subPath string, req Request, target string) (bool, error) {
	if _, err := i.runTool(ctx, i.companionInvocation(spec, src, subPath, req)); err != nil {
		return false, err
	}
	return pathExists(target), nil
}
