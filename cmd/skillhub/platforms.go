package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/presenter"
)

type platformStatus struct {
	Platform   platform.Platform `json:"platform" yaml:"platform"`
	Detected   bool              `json:"detected" yaml:"detected"`
	GlobalDir  string            `json:"global_dir" yaml:"global_dir"`
	ProjectDir string            `json:"project_dir" yaml:"project_dir"`
	Agent      string            `json:"agent" yaml:"agent"`
}

type platformList []platformStatus

func (l platformList) headers() []string {
	return []string{"PLATFORM", "DETECTED", "GLOBAL DIRECTORY", "PROJECT DIRECTORY"}
}

func (l platformList) rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{string(s.Platform), strconv.FormatBool(s.Detected), s.GlobalDir, s.ProjectDir})
	}
	return rows
}

func (l platformList) detected() int {
	n := 0
	for _, s := range l {
		if s.Detected {
			n++
		}
	}
	return n
}

var platformsCmd = withTracing(&cobra.Command{
	Use:   "platforms",
	Short: "Show the supported platforms and whether they are installed",
	Long: `Show every supported platform, whether it was detected on this machine, its global
skills directory and the project-relative skills directory it uses.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		statuses, err := collectPlatforms(platform.NewResolver())
		if err != nil {
			return err
		}
		format := currentFormat()
		if format != formatTable {
			return render(cmd.OutOrStdout(), format, statuses)
		}

		presenter.Section("Supported platforms")
		if err := render(cmd.OutOrStdout(), format, statuses); err != nil {
			return err
		}
		presenter.Separator()
		presenter.Info(fmt.Sprintf("%d of %d platforms detected", statuses.detected(), len(statuses)))
		return nil
	},
})

func collectPlatforms(r *platform.Resolver) (platformList, error) {
	out := platformList{}
	for _, p := range platform.All() {
		spec, err := platform.Lookup(string(p))
		if err != nil {
			return nil, err
		}
		global, err := r.GlobalDir(p)
		if err != nil {
			return nil, err
		}
		out = append(out, platformStatus{
			Platform:   p,
			Detected:   r.IsDetected(p),
			GlobalDir:  global,
			ProjectDir: strings.Join(spec.Project, "/"),
			Agent:      spec.AgentName,
		})
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}
