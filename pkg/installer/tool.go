package installer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/osutil"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// runTool runs inv under the per-call timeout and classifies the outcome.
func (i *Installer) runTool(ctx context.Context, inv osutil.Invocation) (osutil.Output, error) {
	toolCtx, cancel := context.WithTimeout(ctx, i.toolTimeout)
	defer cancel()

	log := logger.G(ctx).WithField("command", inv.String())
	if inv.Dir != "" {
		log = log.WithField("dir", inv.Dir)
	}
	log.Debug("running external tool")

	out, err := i.runner.Run(toolCtx, inv)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return out, skillerr.Canceled(inv.Name, ctx.Err())
		case errors.Is(err, context.DeadlineExceeded) || toolCtx.Err() != nil:
			return out, skillerr.ToolTimeout(inv.Name, inv.Args, err)
		default:
			return out, skillerr.ToolUnavailable(inv.Name, err)
		}
	}
	if !out.Success() {
		log.WithField("exit_code", out.ExitCode).Debug("external tool failed")
		return out, skillerr.ToolFailed(inv.Name, inv.Args, out.Stdout, out.Stderr, errors.Errorf("exit status %d", out.ExitCode))
	}
	return out, nil
}

func (i *Installer) git(ctx context.Context, dir string, args ...string) (osutil.Output, error) {
	return i.runTool(ctx, osutil.Invocation{
		Name: i.gitBinary,
		Args: args,
		Dir:  dir,
		Env:  []string{"GIT_TERMINAL_PROMPT=0"},
	})
}
