package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/sync"
	"github.com/taskmastersync/tmsync/internal/ui"
)

var cleanDuplicatesCmd = &cobra.Command{
	Use:   "clean-duplicates <project>",
	Short: "Find and remove duplicate items in a project",
	Long: `Find items that share a TM_ID or a title. Without --delete this only
reports; with --delete the extra copies are removed, keeping the first of
each group.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		number, err := parseProjectArg(args[0])
		if err != nil {
			FatalError("%v", err)
		}
		if number == 0 {
			FatalError("clean-duplicates needs an existing project number")
		}
		remove, _ := cmd.Flags().GetBool("delete")

		verifyAuth(rootCtx)

		client, err := newClient()
		if err != nil {
			FatalError("%v", err)
		}
		project, err := client.GetProject(rootCtx, number)
		if err != nil {
			FatalError("%v", err)
		}

		report, err := sync.CleanDuplicates(rootCtx, client, project.ID, remove)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(report)
			return
		}

		fmt.Println(ui.RenderCategory(fmt.Sprintf("duplicates in project #%d", number)))
		fmt.Println(ui.RenderSeparator())
		fmt.Printf("items: %d, without TM_ID: %d\n", report.TotalItems, report.MissingTMID)

		if !report.HasDuplicates() {
			fmt.Printf("%s no duplicates found\n", ui.RenderPassIcon())
			return
		}

		tmIDs := make([]string, 0, len(report.ByTMID))
		for tmID := range report.ByTMID {
			tmIDs = append(tmIDs, tmID)
		}
		sort.Strings(tmIDs)
		for _, tmID := range tmIDs {
			fmt.Printf("%s TM_ID %s has %d copies\n", ui.RenderWarnIcon(), tmID, report.ByTMID[tmID])
		}

		titles := make([]string, 0, len(report.ByTitle))
		for title := range report.ByTitle {
			titles = append(titles, title)
		}
		sort.Strings(titles)
		for _, title := range titles {
			fmt.Printf("%s title %q held by %d items\n", ui.RenderWarnIcon(), title, report.ByTitle[title])
		}

		if remove {
			fmt.Printf("%s deleted %d items\n", ui.RenderPassIcon(), report.Deleted)
			for _, failure := range report.DeletionFailures {
				fmt.Printf("%s %s\n", ui.RenderFailIcon(), failure)
			}
		} else {
			fmt.Println(ui.RenderMuted("run again with --delete to remove them"))
		}
	},
}

func init() {
	cleanDuplicatesCmd.Flags().Bool("delete", false, "Actually delete duplicates instead of reporting")
	rootCmd.AddCommand(cleanDuplicatesCmd)
}
