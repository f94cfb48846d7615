package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/subtasks"
	"github.com/taskmastersync/tmsync/internal/sync"
	"github.com/taskmastersync/tmsync/internal/taskmaster"
	"github.com/taskmastersync/tmsync/internal/ui"
)

var previewCmd = &cobra.Command{
	Use:   "preview <tag> [task-id]",
	Short: "Preview the rendered item body for tasks",
	Long: `Render the project item body a task would get, without syncing.
With a task ID only that task is shown; otherwise every task in the tag.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		tag := args[0]
		asItems, _ := cmd.Flags().GetBool("subtasks-as-items")

		reader := taskmaster.NewReader(projectRoot)
		tasks, err := reader.LoadTag(tag)
		if err != nil {
			FatalError("%v", err)
		}

		handler := subtasks.NewBasicHandler()
		if asItems {
			handler = subtasks.NewHandler(subtasks.DefaultConfig())
		}

		if len(args) == 2 {
			task, ok := taskmaster.FindTask(tasks, args[1])
			if !ok {
				FatalError("task %q not found in tag %q", args[1], tag)
			}
			tasks = append(tasks[:0:0], task)
		}

		for i := range tasks {
			task := &tasks[i]
			body := sync.FormatTaskBody(task, handler)
			fmt.Println(ui.RenderCategory(fmt.Sprintf("%s: %s", task.ID, task.Title)))
			fmt.Print(ui.RenderMarkdown(body))
			fmt.Println()
		}
	},
}

func init() {
	previewCmd.Flags().Bool("subtasks-as-items", false, "Preview with complex subtasks promoted to separate items")
	rootCmd.AddCommand(previewCmd)
}
