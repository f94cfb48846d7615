package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/sync"
	"github.com/taskmastersync/tmsync/internal/ui"
	"github.com/taskmastersync/tmsync/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <tag> <project>",
	Short: "Watch the tasks file and auto-sync on changes",
	Long: `Watch the Taskmaster tasks file and sync automatically when it changes.
Changes are debounced so a burst of writes triggers a single sync.
Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tag := args[0]
		number, err := parseProjectArg(args[1])
		if err != nil {
			FatalError("%v", err)
		}
		debounceMS, _ := cmd.Flags().GetInt("debounce")
		if debounceMS <= 0 {
			debounceMS = settings.WatchDebounceMS
		}

		verifyAuth(rootCtx)

		engine, err := newEngine(tag)
		if err != nil {
			FatalError("%v", err)
		}
		if err := engine.ResolveProject(rootCtx, number); err != nil {
			FatalError("%v", err)
		}

		// Initial sync so the watch starts from a clean slate.
		if _, err := engine.Sync(rootCtx, sync.Options{}); err != nil {
			FatalError("initial sync failed: %v", err)
		}

		w, err := watcher.New(engine.Reader.Path(), time.Duration(debounceMS)*time.Millisecond)
		if err != nil {
			FatalError("%v", err)
		}
		w.OnChange = func() {
			info("%s change detected, syncing", ui.RenderMuted("•"))
			result, err := engine.Sync(rootCtx, sync.Options{})
			if err != nil {
				fmt.Printf("%s auto-sync failed: %v\n", ui.RenderFailIcon(), err)
				return
			}
			info("%s synced: %d created, %d updated, %d deleted",
				ui.RenderPassIcon(), result.Stats.Created, result.Stats.Updated, result.Stats.Deleted)
		}
		w.OnError = func(err error) {
			fmt.Printf("%s watch error: %v\n", ui.RenderWarnIcon(), err)
		}

		info("watching %s (debounce %dms, Ctrl+C to stop)", w.Path(), debounceMS)
		if err := w.Run(rootCtx); err != nil && err != context.Canceled {
			FatalError("watch failed: %v", err)
		}
		info("stopped watching")
	},
}

func init() {
	watchCmd.Flags().Int("debounce", 0, "Debounce window in milliseconds (default from settings, 1000)")
	rootCmd.AddCommand(watchCmd)
}
