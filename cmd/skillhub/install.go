package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/installer"
	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/presenter"
)

// InstallConfig holds the flags of the install command
type InstallConfig struct {
	SubPath     string
	Platform    string
	ProjectRoot string
	All         bool
}

func NewInstallConfig() *InstallConfig {
	return &InstallConfig{
		Platform: string(platform.Claude),
	}
}

type installResult installer.Result

func (r installResult) headers() []string {
	return []string{"ID", "PLATFORM", "SCOPE", "STRATEGY", "PATH"}
}

func (r installResult) rows() [][]string {
	return [][]string{{r.ID, string(r.Platform), string(r.Scope), string(r.Strategy), r.Path}}
}

type batchResult installer.BatchResult

func (b batchResult) headers() []string { return []string{"PLATFORM", "STATUS"} }

func (b batchResult) rows() [][]string {
	rows := make([][]string, 0, len(b.Installed)+len(b.Skipped))
	for _, p := range b.Installed {
		rows = append(rows, []string{string(p), "installed"})
	}
	for _, p := range b.Skipped {
		rows = append(rows, []string{string(p), "already installed"})
	}
	return rows
}

var installCmd = withTracing(&cobra.Command{
	Use:   "install <id> <repo>",
	Short: "Install a skill from a git repository",
	Long: `Install a skill from a git repository into a platform's skills directory.

The repository is either owner/repo (resolved against repo_base_url, GitHub by default)
or a full http(s) URL. With --path only that sub-directory of the repository is installed;
a sub-path that is missing at the repository root is retried under skills/.

The companion CLI (npx skills) is tried first and git is used when it is unavailable.

Examples:
  skillhub install pdf anthropics/skills --path pdf
  skillhub install pdf anthropics/skills --path skills/pdf --platform gemini
  skillhub install pdf anthropics/skills --path pdf --project .
  skillhub install pdf anthropics/skills --path pdf --all`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getInstallConfigFromFlags(cmd)
		inst := installer.NewInstaller(cfg.InstallerOptions()...)
		out := cmd.OutOrStdout()
		format := currentFormat()

		if config.All {
			if config.ProjectRoot != "" {
				presenter.Warning("--project is ignored with --all, installing globally")
			}
			result, err := inst.InstallToAll(cmd.Context(), args[0], args[1], config.SubPath)
			if err != nil {
				return err
			}
			if format == formatTable && len(result.Installed) == 0 {
				presenter.Info(fmt.Sprintf("%s is already installed on every detected platform", args[0]))
				return nil
			}
			return render(out, format, batchResult(*result))
		}

		p, err := platform.Parse(config.Platform)
		if err != nil {
			return err
		}
		result, err := inst.Install(cmd.Context(), installer.Request{
			ID:          args[0],
			Repo:        args[1],
			SubPath:     config.SubPath,
			Platform:    p,
			ProjectRoot: config.ProjectRoot,
		})
		if err != nil {
			return err
		}
		if format == formatTable {
			presenter.Success(result.Message())
			return nil
		}
		return render(out, format, installResult(*result))
	},
})

func init() {
	defaults := NewInstallConfig()
	installCmd.Flags().String("path", defaults.SubPath, "Sub-directory of the repository holding the skill")
	installCmd.Flags().StringP("platform", "p", defaults.Platform, "Platform to install to ("+strings.Join(platform.Keys(), ", ")+")")
	installCmd.Flags().String("project", defaults.ProjectRoot, "Install into the project skills directory under this root")
	installCmd.Flags().Bool("all", defaults.All, "Install globally to every detected platform")
	installCmd.MarkFlagsMutuallyExclusive("all", "platform")

	rootCmd.AddCommand(installCmd)
}

func getInstallConfigFromFlags(cmd *cobra.Command) *InstallConfig {
	config := NewInstallConfig()
	if subPath, err := cmd.Flags().GetString("path"); err == nil {
		config.SubPath = subPath
	}
	if p, err := cmd.Flags().GetString("platform"); err == nil {
		config.Platform = p
	}
	if root, err := cmd.Flags().GetString("project"); err == nil {
		config.ProjectRoot = root
	}
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		config.All = all
	}
	return config
}
