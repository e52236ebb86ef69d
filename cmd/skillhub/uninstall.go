package main

import (
	"context"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/installer"
	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

// UninstallConfig holds the flags of the uninstall command
type UninstallConfig struct {
	Path        string
	Platform    string
	ProjectRoot string
}

func NewUninstallConfig() *UninstallConfig {
	return &UninstallConfig{
		Platform: string(platform.Claude),
	}
}

var uninstallCmd = withTracing(&cobra.Command{
	Use:   "uninstall <id>...",
	Short: "Remove installed skills",
	Long: `Remove one or more installed skills.

Without --path the skill is removed from the platform's skills directory (or the project's
when --project is set). With --path exactly one id may be given and the directory at that
path is removed after checking that it is a skill directory named after the id.

Examples:
  skillhub uninstall pdf
  skillhub uninstall pdf docx --platform gemini
  skillhub uninstall pdf --path ~/.claude/skills/pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getUninstallConfigFromFlags(cmd)
		u := installer.NewUninstaller(nil)

		removed, err := uninstallSkills(cmd.Context(), u, args, config)
		for _, path := range removed {
			presenter.Success("uninstalled: " + path)
		}
		return err
	},
})

func init() {
	defaults := NewUninstallConfig()
	uninstallCmd.Flags().String("path", defaults.Path, "Exact directory of the skill to remove")
	uninstallCmd.Flags().StringP("platform", "p", defaults.Platform, "Platform to remove from ("+strings.Join(platform.Keys(), ", ")+")")
	uninstallCmd.Flags().String("project", defaults.ProjectRoot, "Remove from the project skills directory under this root")
	uninstallCmd.MarkFlagsMutuallyExclusive("path", "platform")
	uninstallCmd.MarkFlagsMutuallyExclusive("path", "project")

	rootCmd.AddCommand(uninstallCmd)
}

func getUninstallConfigFromFlags(cmd *cobra.Command) *UninstallConfig {
	config := NewUninstallConfig()
	if path, err := cmd.Flags().GetString("path"); err == nil {
		config.Path = path
	}
	if p, err := cmd.Flags().GetString("platform"); err == nil {
		config.Platform = p
	}
	if root, err := cmd.Flags().GetString("project"); err == nil {
		config.ProjectRoot = root
	}
	return config
}

// uninstallSkills removes every id and returns the removed paths. Failures
// do not stop the remaining ids; they are collected into one error.
func uninstallSkills(ctx context.Context, u *installer.Uninstaller, ids []string, config *UninstallConfig) ([]string, error) {
	if config.Path != "" {
		if len(ids) != 1 {
			return nil, skillerr.InvalidIdentifier(strings.Join(ids, " "), "--path accepts exactly one skill id")
		}
		if err := u.Uninstall(ctx, ids[0], config.Path); err != nil {
			return nil, err
		}
		return []string{config.Path}, nil
	}

	p, err := platform.Parse(config.Platform)
	if err != nil {
		return nil, err
	}

	var (
		removed []string
		result  *multierror.Error
	)
	for _, id := range ids {
		path, err := u.UninstallFrom(ctx, id, p, config.ProjectRoot)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "uninstall %s", id))
			continue
		}
		removed = append(removed, path)
	}
	if result == nil {
		return removed, nil
	}
	if len(result.Errors) == 1 {
		return removed, result.Errors[0]
	}
	return removed, result
}
