package main

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
	"github.com/jingkaihe/skillhub/pkg/skills"
)

// ListConfig holds the flags of the list and ids commands
type ListConfig struct {
	Platform    string
	ProjectRoot string
	Match       string
}

func NewListConfig() *ListConfig {
	return &ListConfig{
		Platform: string(platform.Claude),
	}
}

type idList []string

func (l idList) headers() []string { return []string{"ID"} }

func (l idList) rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, id := range l {
		rows = append(rows, []string{id})
	}
	return rows
}

type skillList []skills.InstalledSkill

func (l skillList) headers() []string {
	return []string{"ID", "NAME", "DESCRIPTION", "TAGS", "PATH"}
}

func (l skillList) rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{s.ID, s.Name, truncate(s.Description, 60), strings.Join(s.Tags, ", "), s.InstallPath})
	}
	return rows
}

type whichResult map[string][]platform.Platform

func (w whichResult) headers() []string { return []string{"ID", "PLATFORMS"} }

func (w whichResult) rows() [][]string {
	ids := make([]string, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		names := make([]string, 0, len(w[id]))
		for _, p := range w[id] {
			names = append(names, string(p))
		}
		rows = append(rows, []string{id, strings.Join(names, ", ")})
	}
	return rows
}

var idsCmd = withTracing(&cobra.Command{
	Use:   "ids",
	Short: "List the ids of skills installed globally for a platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getListConfigFromFlags(cmd)
		p, err := platform.Parse(config.Platform)
		if err != nil {
			return err
		}
		d, err := skills.NewDiscovery()
		if err != nil {
			return err
		}
		ids, err := d.ListInstalledIDs(p)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), currentFormat(), idList(ids))
	},
})

var listCmd = withTracing(&cobra.Command{
	Use:   "list",
	Short: "List installed skills with their manifest metadata",
	Long: `List installed skills with the name, description and tags read from each SKILL.md.

Examples:
  skillhub list
  skillhub list --platform gemini
  skillhub list --project . --match 'pdf-*'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getListConfigFromFlags(cmd)
		found, err := listSkills(config)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), currentFormat(), found)
	},
})

var installedCmd = withTracing(&cobra.Command{
	Use:   "installed",
	Short: "List skill ids installed on any detected platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := skills.NewDiscovery()
		if err != nil {
			return err
		}
		ids, err := d.InstalledAnywhere(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), currentFormat(), idList(ids))
	},
})

var whichCmd = withTracing(&cobra.Command{
	Use:   "which <id>...",
	Short: "Show which platforms have the given skills installed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := skills.NewDiscovery()
		if err != nil {
			return err
		}
		found, err := d.InstalledPlatformsForIDs(args)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), currentFormat(), whichResult(found))
	},
})

func init() {
	defaults := NewListConfig()
	for _, cmd := range []*cobra.Command{idsCmd, listCmd} {
		cmd.Flags().StringP("platform", "p", defaults.Platform, "Platform to inspect ("+strings.Join(platform.Keys(), ", ")+")")
	}
	listCmd.Flags().String("project", defaults.ProjectRoot, "List the project skills directory under this root instead of the global one")
	listCmd.Flags().StringP("match", "m", defaults.Match, "Only show skills whose id matches this glob pattern")

	rootCmd.AddCommand(idsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(installedCmd)
	rootCmd.AddCommand(whichCmd)
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if p, err := cmd.Flags().GetString("platform"); err == nil {
		config.Platform = p
	}
	if root, err := cmd.Flags().GetString("project"); err == nil {
		config.ProjectRoot = root
	}
	if match, err := cmd.Flags().GetString("match"); err == nil {
		config.Match = match
	}
	return config
}

func listSkills(config *ListConfig) (skillList, error) {
	p, err := platform.Parse(config.Platform)
	if err != nil {
		return nil, err
	}

	var matcher glob.Glob
	if config.Match != "" {
		matcher, err = glob.Compile(config.Match)
		if err != nil {
			return nil, skillerr.Configuration("invalid --match pattern "+config.Match, err)
		}
	}

	d, err := skills.NewDiscovery()
	if err != nil {
		return nil, err
	}
	dir, err := d.Resolver().SkillsDir(p, config.ProjectRoot)
	if err != nil {
		return nil, err
	}
	all, err := d.ListInstalledSkillsIn(dir)
	if err != nil {
		return nil, err
	}
	return filterSkills(all, matcher), nil
}

func filterSkills(all []skills.InstalledSkill, matcher glob.Glob) skillList {
	out := skillList{}
	for _, s := range all {
		if matcher == nil || matcher.Match(s.ID) {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
