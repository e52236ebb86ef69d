package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jingkaihe/skillhub/pkg/platform"
	"github.com/jingkaihe/skillhub/pkg/skills"
)

const clearScreen = "\033[H\033[2J"

type snapshotView skills.Snapshot

func (s snapshotView) headers() []string { return []string{"PLATFORM", "COUNT", "SKILLS"} }

func (s snapshotView) rows() [][]string {
	rows := [][]string{}
	for _, p := range platform.All() {
		ids, ok := s[p]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(p), fmt.Sprint(len(ids)), strings.Join(ids, ", ")})
	}
	return rows
}

var watchCmd = withTracing(&cobra.Command{
	Use:   "watch",
	Short: "Show installed skills and refresh when skills directories change",
	Long: `Watch the global skills directory of every platform and print the installed skills
each time something is added or removed. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		d, err := skills.NewDiscovery()
		if err != nil {
			return err
		}
		w := skills.NewWatcher(d, debounce)

		ctx := cmd.Context()
		snapshots := make(chan skills.Snapshot)
		errCh := make(chan error, 1)
		go func() {
			errCh <- w.Run(ctx, snapshots)
		}()

		out := cmd.OutOrStdout()
		redraw := isTerminal(out) && currentFormat() == formatTable
		for {
			select {
			case snap := <-snapshots:
				if redraw {
					fmt.Fprint(out, clearScreen)
				}
				if err := render(out, currentFormat(), snapshotView(snap)); err != nil {
					return err
				}
			case err := <-errCh:
				return err
			}
		}
	},
})

func init() {
	watchCmd.Flags().Duration("debounce", 300*time.Millisecond, "Wait this long after the last change before refreshing")
	rootCmd.AddCommand(watchCmd)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
