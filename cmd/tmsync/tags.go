package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/taskmaster"
	"github.com/taskmastersync/tmsync/internal/ui"
)

var listTagsCmd = &cobra.Command{
	Use:   "list-tags",
	Short: "List tags in the Taskmaster tasks file",
	Run: func(cmd *cobra.Command, args []string) {
		reader := taskmaster.NewReader(projectRoot)
		if !reader.Exists() {
			FatalError("no tasks file at %s", reader.Path())
		}

		infos, err := reader.ListTags()
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(infos)
			return
		}

		for _, tag := range infos {
			line := fmt.Sprintf("%s %s", ui.RenderAccent(tag.Name),
				ui.RenderMuted(fmt.Sprintf("(%d tasks)", tag.TaskCount)))
			if tag.Description != "" {
				line += " " + tag.Description
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(listTagsCmd)
}
