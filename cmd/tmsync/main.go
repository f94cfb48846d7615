package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmastersync/tmsync/internal/auth"
	"github.com/taskmastersync/tmsync/internal/config"
	"github.com/taskmastersync/tmsync/internal/github"
	"github.com/taskmastersync/tmsync/internal/sync"
	"github.com/taskmastersync/tmsync/internal/ui"
)

var (
	projectRoot string
	jsonOutput  bool
	quietFlag   bool
	verboseFlag bool

	settings *config.Settings

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "tmsync",
	Short: "tmsync - Sync Taskmaster tasks to GitHub Projects",
	Long:  `One-way sync from a local Taskmaster task list into a GitHub Projects v2 board, with incremental change detection and duplicate-free re-runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("tmsync version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()

		var err error
		settings, err = config.LoadSettings(projectRoot)
		if err != nil {
			FatalError("loading settings: %v", err)
		}
		if settings.Quiet {
			quietFlag = true
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootCancel != nil {
			rootCancel()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project-root", ".", "Project root containing .taskmaster/")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

// setupSignalContext derives the root context, cancelled on SIGINT/SIGTERM.
func setupSignalContext() {
	rootCtx, rootCancel = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		rootCancel()
	}()
}

// FatalError prints a styled error and exits.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderFailIcon(), fmt.Sprintf(format, args...))
	os.Exit(1)
}

// info prints a message unless quiet mode is on.
func info(format string, args ...interface{}) {
	if quietFlag {
		return
	}
	fmt.Printf(format+"\n", args...)
}

// outputJSON marshals v to stdout, indented.
func outputJSON(v interface{}) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		FatalError("encoding json: %v", err)
	}
	fmt.Println(string(raw))
}

// verifyAuth fails fast when gh is missing or logged out.
func verifyAuth(ctx context.Context) {
	gh := auth.NewGHAuth()
	status, err := gh.VerifyAuth(ctx)
	if err != nil {
		FatalError("%v", err)
	}
	if verboseFlag {
		info("%s authenticated as %s", ui.RenderPassIcon(), status.Username)
	}
}

// newClient builds the GraphQL client for the configured organization.
func newClient() (*github.Client, error) {
	cfg, err := config.NewManager(projectRoot)
	if err != nil {
		return nil, err
	}
	org := cfg.Config().Organization
	if org == "" {
		return nil, fmt.Errorf("no organization configured, run 'tmsync configure' first")
	}
	return github.NewClient(org,
		github.WithRetry(uint64(settings.RetryAttempts), time.Second)), nil
}

// newEngine wires a sync engine for one tag, with message callbacks attached.
func newEngine(tag string) (*sync.Engine, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	engine, err := sync.NewEngine(projectRoot, tag, client)
	if err != nil {
		return nil, err
	}
	engine.FieldUpdatePause = time.Duration(settings.FieldUpdatePause) * time.Millisecond
	engine.AutoCreate = settings.AutoCreate
	engine.OnMessage = func(msg string) {
		if !quietFlag {
			fmt.Printf("%s %s\n", ui.RenderMuted("•"), msg)
		}
	}
	engine.OnWarning = func(msg string) {
		fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderWarnIcon(), msg)
	}
	return engine, nil
}

// parseProjectArg accepts a bare project number or a project URL.
// Returns 0 for "0" or "auto", which means auto-create.
func parseProjectArg(arg string) (int, error) {
	if arg == "auto" {
		return 0, nil
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("project number must not be negative: %d", n)
		}
		return n, nil
	}
	if _, n, err := github.ParseProjectURL(arg); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("invalid project %q: expected a number, a project URL, or \"auto\"", arg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
