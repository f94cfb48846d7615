package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/config"
	"github.com/taskmastersync/tmsync/internal/fields"
	"github.com/taskmastersync/tmsync/internal/github"
	"github.com/taskmastersync/tmsync/internal/types"
	"github.com/taskmastersync/tmsync/internal/ui"
)

// clientForOrg builds a client for --org, falling back to the configured
// organization.
func clientForOrg(org string) (*github.Client, error) {
	if org == "" {
		cfg, err := config.NewManager(projectRoot)
		if err != nil {
			return nil, err
		}
		org = cfg.Config().Organization
	}
	if org == "" {
		return nil, fmt.Errorf("no organization given or configured (use --org)")
	}
	return github.NewClient(org,
		github.WithRetry(uint64(settings.RetryAttempts), time.Second)), nil
}

var createProjectCmd = &cobra.Command{
	Use:   "create-project <title>",
	Short: "Create a new GitHub Project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title := args[0]
		org, _ := cmd.Flags().GetString("org")
		repository, _ := cmd.Flags().GetString("repository")

		verifyAuth(rootCtx)

		client, err := clientForOrg(org)
		if err != nil {
			FatalError("%v", err)
		}

		project, err := client.CreateProject(rootCtx, title, repository)
		if err != nil {
			if project.ID != "" {
				// The project exists; only the repository link failed.
				fmt.Printf("%s created project #%d but could not link %s: %v\n",
					ui.RenderWarnIcon(), project.Number, repository, err)
			} else {
				FatalError("%v", err)
			}
		}

		if jsonOutput {
			outputJSON(project)
			return
		}
		info("%s created project %q (#%d)", ui.RenderPassIcon(), project.Title, project.Number)
		info("%s", ui.RenderMuted(project.URL))
	},
}

var setupProjectCmd = &cobra.Command{
	Use:   "setup-project <project>",
	Short: "Create the required custom fields on a project",
	Long: `Create the custom fields a sync needs (TM_ID, Dependencies, Test
Strategy, Priority, Agent) and add the QA Review option to the Status field.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		number, err := parseProjectArg(args[0])
		if err != nil {
			FatalError("%v", err)
		}
		if number == 0 {
			FatalError("setup-project needs an existing project number")
		}
		org, _ := cmd.Flags().GetString("org")

		verifyAuth(rootCtx)

		client, err := clientForOrg(org)
		if err != nil {
			FatalError("%v", err)
		}
		project, err := client.GetProject(rootCtx, number)
		if err != nil {
			FatalError("%v", err)
		}

		fm := fields.NewManager()
		created, err := fm.SyncFields(rootCtx, client, project.ID)
		if err != nil {
			FatalError("%v", err)
		}
		for _, name := range created {
			info("%s created field %q", ui.RenderPassIcon(), name)
		}

		if status, ok := fm.Field("Status"); ok && status.DataType == types.FieldSingleSelect {
			if _, has := status.OptionByName("QA Review"); !has {
				if _, err := client.CreateFieldOption(rootCtx, project.ID, status.ID, "QA Review", "YELLOW"); err != nil {
					FatalError("adding QA Review option: %v", err)
				}
				info("%s added QA Review option to Status", ui.RenderPassIcon())
			}
		}

		info("%s project #%d is ready", ui.RenderPassIcon(), number)
	},
}

func init() {
	createProjectCmd.Flags().String("org", "", "GitHub organization (default from config)")
	createProjectCmd.Flags().String("repository", "", "owner/repo to link the project to")
	setupProjectCmd.Flags().String("org", "", "GitHub organization (default from config)")
	rootCmd.AddCommand(createProjectCmd)
	rootCmd.AddCommand(setupProjectCmd)
}
