package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/config"
	"github.com/taskmastersync/tmsync/internal/state"
	"github.com/taskmastersync/tmsync/internal/sync"
	"github.com/taskmastersync/tmsync/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status for every configured tag",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.NewManager(projectRoot)
		if err != nil {
			FatalError("%v", err)
		}

		sc := cfg.Config()
		if jsonOutput {
			outputJSON(sc)
			return
		}

		fmt.Println(ui.RenderCategory("sync status"))
		fmt.Println(ui.RenderSeparator())
		if sc.Organization == "" {
			fmt.Printf("%s no organization configured, run 'tmsync configure'\n", ui.RenderWarnIcon())
			return
		}
		fmt.Printf("organization: %s\n", ui.RenderAccent(sc.Organization))

		if len(sc.ProjectMappings) == 0 {
			fmt.Printf("%s no project mappings\n", ui.RenderMuted("-"))
			return
		}

		tags := make([]string, 0, len(sc.ProjectMappings))
		for tag := range sc.ProjectMappings {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		for _, tag := range tags {
			mapping := sc.ProjectMappings[tag]
			fmt.Printf("\n%s -> project #%d\n", ui.RenderBold(tag), mapping.ProjectNumber)
			if mapping.Repository != "" {
				fmt.Printf("  repository: %s\n", mapping.Repository)
			}

			tracker, err := state.NewTracker(filepath.Join(projectRoot, ".taskmaster", sync.StateFileName(tag)))
			if err != nil {
				fmt.Printf("  %s state unreadable: %v\n", ui.RenderWarnIcon(), err)
				continue
			}
			stats := tracker.GetStats()
			fmt.Printf("  synced tasks: %d\n", stats.TotalSynced)
			if stats.LastSync != nil {
				fmt.Printf("  last sync: %s\n", ui.RenderMuted(stats.LastSync.Format("2006-01-02 15:04:05 MST")))
			} else {
				fmt.Printf("  last sync: %s\n", ui.RenderMuted("never"))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
