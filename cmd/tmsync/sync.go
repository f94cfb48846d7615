package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/subtasks"
	"github.com/taskmastersync/tmsync/internal/sync"
	"github.com/taskmastersync/tmsync/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync <tag> <project>",
	Short: "Sync Taskmaster tasks to a GitHub Project",
	Long: `Sync one Taskmaster tag into a GitHub Projects v2 board.

The project argument is a project number, a project URL, or "auto" to create
a new project. Repeat runs are incremental: only tasks that changed since the
last sync are touched.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tag := args[0]
		number, err := parseProjectArg(args[1])
		if err != nil {
			FatalError("%v", err)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		fullSync, _ := cmd.Flags().GetBool("full-sync")
		asItems, _ := cmd.Flags().GetBool("subtasks-as-items")
		inBody, _ := cmd.Flags().GetBool("subtasks-in-body")
		mappingsFile, _ := cmd.Flags().GetString("mappings")
		if asItems && inBody {
			FatalError("--subtasks-as-items and --subtasks-in-body are mutually exclusive")
		}

		verifyAuth(rootCtx)

		engine, err := newEngine(tag)
		if err != nil {
			FatalError("%v", err)
		}
		if asItems {
			engine.Subtasks = subtasks.NewHandler(subtasks.DefaultConfig())
		}
		if inBody {
			engine.Subtasks = subtasks.NewBasicHandler()
		}
		if mappingsFile != "" {
			if err := engine.Fields.LoadMappingsFile(mappingsFile); err != nil {
				FatalError("%v", err)
			}
		}

		if err := engine.ResolveProject(rootCtx, number); err != nil {
			FatalError("%v", err)
		}

		result, err := engine.Sync(rootCtx, sync.Options{DryRun: dryRun, FullSync: fullSync})
		if err != nil {
			FatalError("sync failed: %v", err)
		}

		if jsonOutput {
			outputJSON(result)
			return
		}
		if !quietFlag {
			fmt.Print(ui.RenderSyncSummary(ui.SyncSummary{
				Tag:        tag,
				ProjectURL: result.ProjectURL,
				Total:      result.Stats.TotalTasks,
				Created:    result.Stats.Created,
				Updated:    result.Stats.Updated,
				Deleted:    result.Stats.Deleted,
				Skipped:    result.Stats.Skipped,
				Errors:     result.Stats.Errors,
				Duration:   time.Duration(result.Stats.DurationMS) * time.Millisecond,
			}))
		}
	},
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "Report what would change without touching the project")
	syncCmd.Flags().Bool("full-sync", false, "Process every task instead of the detected delta")
	syncCmd.Flags().Bool("subtasks-as-items", false, "Promote qualifying subtasks to their own project items")
	syncCmd.Flags().Bool("subtasks-in-body", false, "Keep all subtasks as a checklist in the parent body")
	syncCmd.Flags().String("mappings", "", "YAML file of field mapping overrides")
	rootCmd.AddCommand(syncCmd)
}
