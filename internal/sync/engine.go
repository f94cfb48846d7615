// Package sync is the reconcile engine: it mirrors one tag of the local
// task list into a GitHub Projects v2 board. Tasks are matched to project
// items through the TM_ID custom field; the persistent state tracker and the
// delta snapshot keep repeat runs incremental and idempotent.
package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskmastersync/tmsync/internal/config"
	"github.com/taskmastersync/tmsync/internal/delta"
	"github.com/taskmastersync/tmsync/internal/fields"
	"github.com/taskmastersync/tmsync/internal/github"
	"github.com/taskmastersync/tmsync/internal/state"
	"github.com/taskmastersync/tmsync/internal/subtasks"
	"github.com/taskmastersync/tmsync/internal/taskmaster"
	"github.com/taskmastersync/tmsync/internal/types"
)

// ProjectClient is the slice of the GitHub client the engine drives.
// Satisfied by *github.Client; tests substitute fakes.
type ProjectClient interface {
	GetProject(ctx context.Context, number int) (types.Project, error)
	CreateProject(ctx context.Context, title, repository string) (types.Project, error)
	ListProjectItems(ctx context.Context, projectID string) ([]types.ProjectItem, error)
	CreateDraftIssue(ctx context.Context, projectID, title, body string) (github.CreateItemResult, error)
	CreateProjectItemWithIssue(ctx context.Context, projectID, repository, title, body string, assignees []string) (github.CreateItemResult, error)
	UpdateDraftIssue(ctx context.Context, draftIssueID, title, body string) error
	UpdateIssueAssignees(ctx context.Context, issueID string, assignees []string) error
	UpdateItemField(ctx context.Context, projectID, itemID, fieldID string, value map[string]interface{}) error
	DeleteItem(ctx context.Context, projectID, itemID string) error
	GetProjectFields(ctx context.Context, projectID string) ([]types.Field, error)
	CreateField(ctx context.Context, projectID, name string, dataType types.FieldType) (types.Field, error)
	CreateFieldOption(ctx context.Context, projectID, fieldID, name, color string) (string, error)
}

// Options controls one sync run.
type Options struct {
	// DryRun reports what would happen without touching the remote project,
	// the state file, or the snapshot.
	DryRun bool
	// FullSync processes every task instead of the detected delta and
	// enables orphan cleanup.
	FullSync bool
}

// Stats counts the outcome of one run.
type Stats struct {
	TotalTasks int      `json:"total_tasks"`
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Deleted    int      `json:"deleted"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// Result is the outcome of a sync run.
type Result struct {
	Stats         Stats  `json:"stats"`
	ProjectNumber int    `json:"project_number"`
	ProjectURL    string `json:"project_url,omitempty"`
}

// Engine reconciles one tag against one project.
type Engine struct {
	Client   ProjectClient
	Config   *config.Manager
	Reader   *taskmaster.Reader
	Fields   *fields.Manager
	State    *state.Tracker
	Deltas   *delta.Engine
	Subtasks *subtasks.Handler

	// Callbacks for UI feedback (optional).
	OnMessage func(msg string)
	OnWarning func(msg string)

	// FieldUpdatePause throttles consecutive field mutations to stay under
	// the API's secondary rate limits.
	FieldUpdatePause time.Duration

	// AutoCreate lets ResolveProject create a project when the requested
	// number does not exist. Off by default; a typoed number must fail, not
	// spawn a board.
	AutoCreate bool

	tag     string
	project types.Project
	mapping types.ProjectMapping
}

// StateFileName returns the per-tag state file name.
func StateFileName(tag string) string {
	return fmt.Sprintf("sync-state-%s.json", tag)
}

// NewEngine wires an engine for one project root and tag. The project itself
// is resolved later by ResolveProject.
func NewEngine(projectRoot, tag string, client ProjectClient) (*Engine, error) {
	cfg, err := config.NewManager(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg.Config().Organization == "" {
		return nil, fmt.Errorf("%w: organization is empty, run configure first", types.ErrNotConfigured)
	}

	tracker, err := state.NewTracker(filepath.Join(projectRoot, ".taskmaster", StateFileName(tag)))
	if err != nil {
		return nil, err
	}

	fm := fields.NewManager()
	agents, err := fields.LoadAgentMapping(projectRoot)
	if err != nil {
		return nil, err
	}
	fm.SetAgentMapping(agents)

	mapping, _ := cfg.MappingForTag(tag)
	if len(mapping.FieldMappings) > 0 {
		if err := fm.InitMappings(mapping.FieldMappings); err != nil {
			return nil, err
		}
	}

	handler := subtasks.NewBasicHandler()
	if mapping.SubtaskMode == types.SubtaskSeparate {
		handler = subtasks.NewHandler(subtasks.DefaultConfig())
	}

	return &Engine{
		Client:           client,
		Config:           cfg,
		Reader:           taskmaster.NewReader(projectRoot),
		Fields:           fm,
		State:            tracker,
		Deltas:           delta.NewEngine(projectRoot, tag),
		Subtasks:         handler,
		FieldUpdatePause: 50 * time.Millisecond,
		tag:              tag,
		mapping:          mapping,
	}, nil
}

// Tag returns the tag this engine syncs.
func (e *Engine) Tag() string { return e.tag }

// Project returns the resolved project. Zero before ResolveProject.
func (e *Engine) Project() types.Project { return e.project }

func (e *Engine) msg(format string, args ...interface{}) {
	if e.OnMessage != nil {
		e.OnMessage(fmt.Sprintf(format, args...))
	}
}

func (e *Engine) warn(format string, args ...interface{}) {
	if e.OnWarning != nil {
		e.OnWarning(fmt.Sprintf(format, args...))
	}
}

// ResolveProject finds or creates the target project. Number 0 always
// auto-creates; a missing numbered project auto-creates only when
// AutoCreate is set.
func (e *Engine) ResolveProject(ctx context.Context, number int) error {
	if number == 0 {
		return e.autoCreateProject(ctx)
	}

	project, err := e.Client.GetProject(ctx, number)
	if err != nil {
		if e.AutoCreate {
			e.msg("project #%d not found, auto-creating", number)
			return e.autoCreateProject(ctx)
		}
		return fmt.Errorf("project #%d not found (use project number 0 to auto-create, or set auto-create-project / TMSYNC_AUTO_CREATE_PROJECT): %w", number, err)
	}

	e.project = project
	return nil
}

func (e *Engine) autoCreateProject(ctx context.Context) error {
	repository := e.mapping.Repository
	if repository == "" {
		if detected, err := github.DetectRepository(); err == nil {
			repository = detected
		}
	}

	title := fmt.Sprintf("TaskMaster Project - %s", e.tag)
	if repository != "" {
		name := repository
		if idx := strings.LastIndexByte(repository, '/'); idx >= 0 {
			name = repository[idx+1:]
		}
		title = fmt.Sprintf("TaskMaster - %s (%s)", name, e.tag)
	}

	project, err := e.Client.CreateProject(ctx, title, repository)
	if err != nil {
		return err
	}
	e.msg("created project %q (#%d) %s", project.Title, project.Number, project.URL)

	if err := e.SetupProjectFields(ctx, project.ID); err != nil {
		return err
	}

	e.mapping.ProjectNumber = project.Number
	e.mapping.ProjectID = project.ID
	if e.mapping.Repository == "" {
		e.mapping.Repository = repository
	}
	e.Config.SetMapping(e.tag, e.mapping)
	if err := e.Config.Save(); err != nil {
		return err
	}

	e.project = project
	return nil
}

// SetupProjectFields creates the required custom fields and makes sure the
// built-in Status field carries a QA Review option.
func (e *Engine) SetupProjectFields(ctx context.Context, projectID string) error {
	created, err := e.Fields.SyncFields(ctx, e.Client, projectID)
	if err != nil {
		return err
	}
	for _, name := range created {
		e.msg("created field %q", name)
	}

	status, ok := e.Fields.Field("Status")
	if !ok || status.DataType != types.FieldSingleSelect {
		return nil
	}
	if _, has := status.OptionByName("QA Review"); has {
		return nil
	}

	e.msg("adding QA Review option to Status field")
	if _, err := e.Client.CreateFieldOption(ctx, projectID, status.ID, "QA Review", "YELLOW"); err != nil {
		return err
	}
	updated, err := e.Client.GetProjectFields(ctx, projectID)
	if err != nil {
		return err
	}
	e.Fields.SetFields(updated)
	return nil
}

// Sync runs one reconcile pass for the engine's tag.
func (e *Engine) Sync(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if e.project.ID == "" {
		return nil, fmt.Errorf("%w: project not resolved", types.ErrNotConfigured)
	}
	projectID := e.project.ID

	tasks, err := e.Reader.LoadTag(e.tag)
	if err != nil {
		return nil, err
	}
	if err := e.Subtasks.ValidateHierarchy(tasks); err != nil {
		return nil, err
	}

	// Field setup and item listing hit different endpoints; fetch both at
	// once.
	var items []types.ProjectItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.SetupProjectFields(gctx, projectID)
	})
	g.Go(func() error {
		var err error
		items, err = e.Client.ListProjectItems(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byTMID := make(map[string]types.ProjectItem)
	byTitle := make(map[string][]types.ProjectItem)
	for _, item := range items {
		if tmID := item.FieldValues["TM_ID"]; tmID != "" {
			byTMID[tmID] = item
		}
		byTitle[item.Title] = append(byTitle[item.Title], item)
	}

	stats := Stats{TotalTasks: len(tasks)}

	// The snapshot is rewritten on every non-dry run, even in full mode, so
	// the next delta run starts from the current file.
	changeSet, err := e.Deltas.Detect(tasks, opts.DryRun)
	if err != nil {
		return nil, err
	}

	var work []types.Task
	if opts.FullSync {
		e.msg("full sync of %d tasks", len(tasks))
		work = tasks
	} else {
		e.msg("delta sync: %d changes out of %d tasks", len(changeSet.Changes), len(tasks))
		work = changeSet.Tasks(delta.Added, delta.Modified)
		e.deleteRemoved(ctx, changeSet, byTMID, projectID, opts, &stats)
	}

	for i := range work {
		task := &work[i]

		if opts.DryRun {
			e.msg("dry run: would process task %s: %s", task.ID, task.Title)
			stats.Skipped++
			continue
		}

		if item, ok := byTMID[task.ID]; ok {
			if err := e.updateItem(ctx, task, item); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("updating %s: %v", task.ID, err))
				continue
			}
			stats.Updated++
			e.State.UpdateMetadata(task.ID, task)
			continue
		}

		// No TM_ID match. A single untracked item with the same title is
		// adopted instead of duplicated.
		if existing := byTitle[task.Title]; len(existing) > 0 {
			if len(existing) == 1 {
				item := existing[0]
				e.msg("adopting existing item titled %q for task %s", task.Title, task.ID)
				if err := e.updateItem(ctx, task, item); err != nil {
					stats.Errors = append(stats.Errors, fmt.Sprintf("adopting %s: %v", task.ID, err))
					continue
				}
				stats.Updated++
				draftID := ""
				if item.IsDraft {
					draftID = item.ContentID
				}
				e.State.RecordSynced(task.ID, item.ID, draftID, task)
				byTMID[task.ID] = item
				continue
			}
			e.warn("%d items share the title %q and none carries a TM_ID; creating a new item anyway", len(existing), task.Title)
		}

		result, err := e.createItem(ctx, task, projectID)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("creating %s: %v", task.ID, err))
			continue
		}
		stats.Created++
		draftID := ""
		if e.mapping.Repository == "" {
			draftID = result.ContentID
		}
		e.State.RecordSynced(task.ID, result.ProjectItemID, draftID, task)
	}

	// Orphans are handled here only in full mode; delta mode deletes
	// removals explicitly above.
	if opts.FullSync {
		e.deleteOrphans(ctx, tasks, byTMID, projectID, opts, &stats)
	}

	if !opts.DryRun {
		if err := e.State.Save(); err != nil {
			return nil, err
		}
		e.Config.RecordSync(e.tag, time.Now().UTC().Format(time.RFC3339))
		if err := e.Config.Save(); err != nil {
			return nil, err
		}
	}

	stats.DurationMS = time.Since(start).Milliseconds()
	return &Result{
		Stats:         stats,
		ProjectNumber: e.project.Number,
		ProjectURL:    e.project.URL,
	}, nil
}

func (e *Engine) deleteRemoved(ctx context.Context, changeSet *delta.ChangeSet, byTMID map[string]types.ProjectItem, projectID string, opts Options, stats *Stats) {
	for _, removed := range changeSet.Tasks(delta.Removed) {
		item, ok := byTMID[removed.ID]
		if !ok {
			continue
		}
		if opts.DryRun {
			e.msg("dry run: would delete removed task %s", removed.ID)
			stats.Deleted++
			continue
		}
		if err := e.Client.DeleteItem(ctx, projectID, item.ID); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("deleting removed task %s: %v", removed.ID, err))
			continue
		}
		stats.Deleted++
		e.State.Remove(removed.ID)
	}
}

func (e *Engine) deleteOrphans(ctx context.Context, tasks []types.Task, byTMID map[string]types.ProjectItem, projectID string, opts Options, stats *Stats) {
	for _, orphanID := range e.State.FindOrphanedItems(tasks) {
		item, ok := byTMID[orphanID]
		if !ok {
			continue
		}
		if opts.DryRun {
			e.msg("dry run: would delete orphaned item %s", orphanID)
			continue
		}
		if err := e.Client.DeleteItem(ctx, projectID, item.ID); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("deleting orphan %s: %v", orphanID, err))
			continue
		}
		stats.Deleted++
		e.State.Remove(orphanID)
	}
}

// createItem creates the remote item for a task, sets its fields, and
// verifies the TM_ID write. An item without TM_ID would be re-created as a
// duplicate on the next run, so a failed write gets one emergency retry.
func (e *Engine) createItem(ctx context.Context, task *types.Task, projectID string) (github.CreateItemResult, error) {
	body := FormatTaskBody(task, e.Subtasks)

	var result github.CreateItemResult
	var err error
	if e.mapping.Repository != "" {
		var assignees []string
		if assignee := e.Fields.GitHubAssignee(task); assignee != "" {
			assignees = []string{assignee}
		}
		result, err = e.Client.CreateProjectItemWithIssue(ctx, projectID, e.mapping.Repository, task.Title, body, assignees)
	} else {
		result, err = e.Client.CreateDraftIssue(ctx, projectID, task.Title, body)
	}
	if err != nil {
		return github.CreateItemResult{}, err
	}

	if e.Subtasks.Enhanced() {
		if _, err := e.Subtasks.ProcessSubtasks(ctx, e.Client, projectID, e.mapping.Repository, task); err != nil {
			e.warn("promoting subtasks of %s: %v", task.ID, err)
		}
	}

	tmIDSet := e.applyFields(ctx, task, projectID, result.ProjectItemID)
	if !tmIDSet {
		e.warn("failed to set TM_ID for task %s, retrying once", task.ID)
		if fieldID, ok := e.Fields.FieldID("TM_ID"); ok {
			value := github.FormatFieldValue(task.ID, types.FieldText)
			if err := e.Client.UpdateItemField(ctx, projectID, result.ProjectItemID, fieldID, value); err != nil {
				e.warn("item %q was created without TM_ID and will duplicate on the next run; delete it manually", task.Title)
			} else {
				e.msg("emergency TM_ID update succeeded for task %s", task.ID)
			}
		} else {
			e.warn("item %q was created without TM_ID and will duplicate on the next run; delete it manually", task.Title)
		}
	}

	return result, nil
}

// updateItem refreshes an existing item's content and fields. Body rewrites
// only apply to draft issues; repository issues get assignee updates instead.
func (e *Engine) updateItem(ctx context.Context, task *types.Task, item types.ProjectItem) error {
	body := FormatTaskBody(task, e.Subtasks)

	if item.IsDraft && item.ContentID != "" {
		if err := e.Client.UpdateDraftIssue(ctx, item.ContentID, task.Title, body); err != nil {
			return err
		}
	} else if !item.IsDraft && item.ContentID != "" {
		if assignee := e.Fields.GitHubAssignee(task); assignee != "" {
			if err := e.Client.UpdateIssueAssignees(ctx, item.ContentID, []string{assignee}); err != nil {
				e.warn("updating assignees for %s: %v", task.ID, err)
			}
		}
	}

	e.applyFields(ctx, task, e.project.ID, item.ID)
	return nil
}

// applyFields writes every mapped field value to the item and reports
// whether the TM_ID write succeeded. A missing field ID triggers one cache
// refresh and retry; individual write failures are warnings, not fatal.
func (e *Engine) applyFields(ctx context.Context, task *types.Task, projectID, itemID string) bool {
	values := e.Fields.MapTask(task)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	tmIDSet := false
	for _, name := range names {
		fieldID, ok := e.Fields.FieldID(name)
		if !ok {
			// The field may have been created after the cache was built.
			updated, err := e.Client.GetProjectFields(ctx, projectID)
			if err != nil {
				e.warn("refreshing fields for %q: %v", name, err)
				continue
			}
			e.Fields.SetFields(updated)
			if fieldID, ok = e.Fields.FieldID(name); !ok {
				e.warn("field %q not found even after refresh", name)
				continue
			}
		}

		formatted, err := e.formatFieldValue(ctx, projectID, name, values[name])
		if err != nil {
			e.warn("formatting %s value for task %s: %v", name, task.ID, err)
			continue
		}

		if err := e.Client.UpdateItemField(ctx, projectID, itemID, fieldID, formatted); err != nil {
			e.warn("updating field %s for task %s: %v", name, task.ID, err)
			continue
		}
		if name == "TM_ID" {
			tmIDSet = true
		}
		e.pause(ctx)
	}
	return tmIDSet
}

// formatFieldValue builds the mutation payload for one field. Single-select
// values resolve to option IDs, creating the option when necessary.
func (e *Engine) formatFieldValue(ctx context.Context, projectID, fieldName, value string) (map[string]interface{}, error) {
	if value == "" {
		return github.FormatFieldValue("", types.FieldText), nil
	}

	field, ok := e.Fields.Field(fieldName)
	if !ok {
		return github.FormatFieldValue(value, types.FieldText), nil
	}

	if field.DataType == types.FieldSingleSelect {
		optionID, err := e.Fields.EnsureOptionExists(ctx, e.Client, projectID, fieldName, value)
		if err != nil {
			return nil, err
		}
		return github.FormatFieldValue(optionID, types.FieldSingleSelect), nil
	}
	return github.FormatFieldValue(value, field.DataType), nil
}

func (e *Engine) pause(ctx context.Context) {
	if e.FieldUpdatePause <= 0 {
		return
	}
	select {
	case <-time.After(e.FieldUpdatePause):
	case <-ctx.Done():
	}
}
