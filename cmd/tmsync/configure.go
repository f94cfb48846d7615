package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/config"
	"github.com/taskmastersync/tmsync/internal/github"
	"github.com/taskmastersync/tmsync/internal/types"
	"github.com/taskmastersync/tmsync/internal/ui"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure the organization and project mappings",
	Long: `Configure which GitHub organization and project a tag syncs to.

Interactive when run in a terminal; otherwise the values come from flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.NewManager(projectRoot)
		if err != nil {
			FatalError("%v", err)
		}

		org, _ := cmd.Flags().GetString("org")
		tag, _ := cmd.Flags().GetString("tag")
		projectStr, _ := cmd.Flags().GetString("project")
		repository, _ := cmd.Flags().GetString("repository")
		subtaskMode, _ := cmd.Flags().GetString("subtask-mode")

		if tag == "" {
			tag = settings.DefaultTag
		}
		if org == "" {
			org = cfg.Config().Organization
		}

		if ui.IsTerminal() && !ui.IsAgentMode() {
			if err := runConfigureForm(&org, &tag, &projectStr, &repository, &subtaskMode); err != nil {
				if err == huh.ErrUserAborted {
					fmt.Fprintln(os.Stderr, "configuration cancelled")
					os.Exit(0)
				}
				FatalError("form error: %v", err)
			}
		}

		if org == "" {
			FatalError("organization is required (use --org outside a terminal)")
		}

		number := 0
		if projectStr != "" {
			number, err = parseProjectArg(projectStr)
			if err != nil {
				FatalError("%v", err)
			}
		}

		mode := types.SubtaskNested
		if strings.EqualFold(subtaskMode, string(types.SubtaskSeparate)) {
			mode = types.SubtaskSeparate
		}

		cfg.SetOrganization(org)
		mapping, _ := cfg.MappingForTag(tag)
		mapping.ProjectNumber = number
		mapping.SubtaskMode = mode
		if repository != "" {
			mapping.Repository = repository
		}
		cfg.SetMapping(tag, mapping)

		if err := cfg.Save(); err != nil {
			FatalError("saving config: %v", err)
		}
		info("%s configuration saved to %s", ui.RenderPassIcon(), cfg.Path())
	},
}

func runConfigureForm(org, tag, project, repository, subtaskMode *string) error {
	if *subtaskMode == "" {
		*subtaskMode = string(types.SubtaskNested)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Organization").
				Description("GitHub organization that owns the project").
				Placeholder("e.g., acme-corp").
				Value(org).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("organization is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Tag").
				Description("Taskmaster tag to map").
				Value(tag),

			huh.NewInput().
				Title("Project").
				Description("Project number or URL, empty to auto-create on first sync").
				Value(project).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := strconv.Atoi(s); err == nil {
						return nil
					}
					if _, _, err := github.ParseProjectURL(s); err != nil {
						return fmt.Errorf("expected a number or a project URL")
					}
					return nil
				}),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Repository").
				Description("owner/repo to create real issues in, empty for draft issues").
				Placeholder("e.g., acme-corp/widgets").
				Value(repository),

			huh.NewSelect[string]().
				Title("Subtask mode").
				Description("How subtasks appear on the board").
				Options(
					huh.NewOption("Checklist in parent body", string(types.SubtaskNested)),
					huh.NewOption("Separate items for complex subtasks", string(types.SubtaskSeparate)),
				).
				Value(subtaskMode),

			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel"),
		),
	)

	return form.Run()
}

func init() {
	configureCmd.Flags().String("org", "", "GitHub organization")
	configureCmd.Flags().String("tag", "", "Taskmaster tag (default from settings)")
	configureCmd.Flags().String("project", "", "Project number or URL")
	configureCmd.Flags().String("repository", "", "owner/repo for real issues instead of drafts")
	configureCmd.Flags().String("subtask-mode", "", "Subtask mode: nested or separate")
	rootCmd.AddCommand(configureCmd)
}
