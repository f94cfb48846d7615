// Package github is a client for GitHub Projects v2 built on GraphQL
// executed through the gh CLI. All calls retry transient transport errors
// with exponential backoff; GraphQL-level errors are terminal.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/taskmastersync/tmsync/internal/auth"
	"github.com/taskmastersync/tmsync/internal/types"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryInterval   = time.Second
	defaultRetryMultiplier = 2.0
)

// GraphQLError is an error reported by the API inside a 200-level response.
// These are application errors (bad IDs, missing permissions) and are never
// retried.
type GraphQLError struct {
	Errors json.RawMessage
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql error: %s", string(e.Errors))
}

// Client talks to the GitHub Projects v2 GraphQL API.
type Client struct {
	exec          auth.Executor
	organization  string
	retryAttempts uint64
	retryInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor substitutes the GraphQL executor. Used by tests.
func WithExecutor(exec auth.Executor) Option {
	return func(c *Client) { c.exec = exec }
}

// WithRetry overrides the retry attempt count and initial interval.
func WithRetry(attempts uint64, interval time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryInterval = interval
	}
}

// NewClient returns a client scoped to one GitHub organization.
func NewClient(organization string, opts ...Option) *Client {
	c := &Client{
		exec:          auth.NewGHAuth(),
		organization:  organization,
		retryAttempts: defaultRetryAttempts,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Organization returns the organization this client is scoped to.
func (c *Client) Organization() string { return c.organization }

func (c *Client) newBackoff(ctx context.Context) backoff.BackOff {
	// BackOff implementations are stateful; always build a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.Multiplier = defaultRetryMultiplier
	bo.RandomizationFactor = 0
	// retryAttempts total tries means retryAttempts-1 retries.
	return backoff.WithContext(backoff.WithMaxRetries(bo, c.retryAttempts-1), ctx)
}

// execute runs a query with retry and decodes the data section into out.
// A non-empty errors array in the response stops retrying immediately.
func (c *Client) execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	op := func() error {
		raw, err := c.exec.ExecuteGraphQL(ctx, query, variables)
		if err != nil {
			return err
		}

		var envelope struct {
			Data   json.RawMessage `json:"data"`
			Errors json.RawMessage `json:"errors"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding graphql response: %w", err))
		}
		if s := string(envelope.Errors); len(envelope.Errors) > 0 && s != "null" && s != "[]" {
			return backoff.Permanent(&GraphQLError{Errors: envelope.Errors})
		}
		if out != nil {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decoding graphql data: %w", err))
			}
		}
		return nil
	}

	return backoff.Retry(op, c.newBackoff(ctx))
}

// GetProject looks up an organization project by number.
func (c *Client) GetProject(ctx context.Context, number int) (types.Project, error) {
	query := `
		query($org: String!, $number: Int!) {
			organization(login: $org) {
				projectV2(number: $number) {
					id
					number
					title
					url
				}
			}
		}`

	var resp struct {
		Organization struct {
			ProjectV2 *types.Project `json:"projectV2"`
		} `json:"organization"`
	}
	err := c.execute(ctx, query, map[string]interface{}{
		"org":    c.organization,
		"number": number,
	}, &resp)
	if err != nil {
		return types.Project{}, fmt.Errorf("getting project %d: %w", number, err)
	}
	if resp.Organization.ProjectV2 == nil {
		return types.Project{}, fmt.Errorf("project %d not found in organization %s", number, c.organization)
	}
	return *resp.Organization.ProjectV2, nil
}

// ListProjectItems pages through every item in a project.
func (c *Client) ListProjectItems(ctx context.Context, projectID string) ([]types.ProjectItem, error) {
	query := `
		query($projectId: ID!, $cursor: String) {
			node(id: $projectId) {
				... on ProjectV2 {
					items(first: 100, after: $cursor) {
						pageInfo {
							hasNextPage
							endCursor
						}
						nodes {
							id
							content {
								__typename
								... on DraftIssue {
									id
									title
									body
								}
								... on Issue {
									id
									title
									body
									number
								}
								... on PullRequest {
									id
									title
									body
									number
								}
							}
							fieldValues(first: 20) {
								nodes {
									... on ProjectV2ItemFieldTextValue {
										text
										field { ... on ProjectV2Field { name } }
									}
									... on ProjectV2ItemFieldSingleSelectValue {
										name
										field { ... on ProjectV2SingleSelectField { name } }
									}
									... on ProjectV2ItemFieldNumberValue {
										number
										field { ... on ProjectV2Field { name } }
									}
								}
							}
						}
					}
				}
			}
		}`

	var all []types.ProjectItem
	var cursor *string

	for {
		var resp struct {
			Node struct {
				Items struct {
					PageInfo struct {
						HasNextPage bool    `json:"hasNextPage"`
						EndCursor   *string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []itemNode `json:"nodes"`
				} `json:"items"`
			} `json:"node"`
		}

		err := c.execute(ctx, query, map[string]interface{}{
			"projectId": projectID,
			"cursor":    cursor,
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("listing project items: %w", err)
		}

		for _, node := range resp.Node.Items.Nodes {
			all = append(all, node.toProjectItem())
		}

		if !resp.Node.Items.PageInfo.HasNextPage {
			break
		}
		cursor = resp.Node.Items.PageInfo.EndCursor
	}

	return all, nil
}

type itemNode struct {
	ID      string `json:"id"`
	Content *struct {
		Typename string `json:"__typename"`
		ID       string `json:"id"`
		Title    string `json:"title"`
		Body     string `json:"body"`
	} `json:"content"`
	FieldValues struct {
		Nodes []struct {
			Text   *string  `json:"text"`
			Name   *string  `json:"name"`
			Number *float64 `json:"number"`
			Field  struct {
				Name string `json:"name"`
			} `json:"field"`
		} `json:"nodes"`
	} `json:"fieldValues"`
}

func (n itemNode) toProjectItem() types.ProjectItem {
	item := types.ProjectItem{
		ID:          n.ID,
		FieldValues: make(map[string]string),
	}
	if n.Content != nil {
		item.ContentID = n.Content.ID
		item.Title = n.Content.Title
		item.Body = n.Content.Body
		item.IsDraft = n.Content.Typename == "DraftIssue"
	}
	for _, fv := range n.FieldValues.Nodes {
		if fv.Field.Name == "" {
			continue
		}
		switch {
		case fv.Text != nil:
			item.FieldValues[fv.Field.Name] = *fv.Text
		case fv.Name != nil:
			item.FieldValues[fv.Field.Name] = *fv.Name
		case fv.Number != nil:
			item.FieldValues[fv.Field.Name] = strconv.FormatFloat(*fv.Number, 'f', -1, 64)
		}
	}
	return item
}

// CreateItemResult carries both IDs produced when an item is created. The
// project item ID drives field updates and deletion; the content ID (draft
// issue node or issue node) drives title and body updates.
type CreateItemResult struct {
	ProjectItemID string
	ContentID     string
}

// CreateDraftIssue adds a draft issue to a project.
func (c *Client) CreateDraftIssue(ctx context.Context, projectID, title, body string) (CreateItemResult, error) {
	mutation := `
		mutation($projectId: ID!, $title: String!, $body: String!) {
			addProjectV2DraftIssue(input: {
				projectId: $projectId,
				title: $title,
				body: $body
			}) {
				projectItem {
					id
					content {
						... on DraftIssue {
							id
						}
					}
				}
			}
		}`

	var resp struct {
		AddProjectV2DraftIssue struct {
			ProjectItem struct {
				ID      string `json:"id"`
				Content struct {
					ID string `json:"id"`
				} `json:"content"`
			} `json:"projectItem"`
		} `json:"addProjectV2DraftIssue"`
	}
	err := c.execute(ctx, mutation, map[string]interface{}{
		"projectId": projectID,
		"title":     title,
		"body":      body,
	}, &resp)
	if err != nil {
		return CreateItemResult{}, fmt.Errorf("creating draft issue %q: %w", title, err)
	}
	return CreateItemResult{
		ProjectItemID: resp.AddProjectV2DraftIssue.ProjectItem.ID,
		ContentID:     resp.AddProjectV2DraftIssue.ProjectItem.Content.ID,
	}, nil
}

// CreateProjectItemWithIssue creates a real repository issue, assigns it, and
// adds it to the project. repository is "owner/name".
func (c *Client) CreateProjectItemWithIssue(ctx context.Context, projectID, repository, title, body string, assignees []string) (CreateItemResult, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" {
		return CreateItemResult{}, fmt.Errorf("invalid repository %q, expected owner/name", repository)
	}

	repoID, err := c.GetRepositoryID(ctx, owner, name)
	if err != nil {
		return CreateItemResult{}, err
	}

	// Unresolvable usernames are skipped rather than failing the create.
	var assigneeIDs []string
	for _, username := range assignees {
		id, err := c.GetUserID(ctx, username)
		if err != nil || id == "" {
			continue
		}
		assigneeIDs = append(assigneeIDs, id)
	}

	mutation := `
		mutation($repositoryId: ID!, $title: String!, $body: String!, $assigneeIds: [ID!]) {
			createIssue(input: {
				repositoryId: $repositoryId,
				title: $title,
				body: $body,
				assigneeIds: $assigneeIds
			}) {
				issue {
					id
					number
				}
			}
		}`

	var resp struct {
		CreateIssue struct {
			Issue struct {
				ID     string `json:"id"`
				Number int    `json:"number"`
			} `json:"issue"`
		} `json:"createIssue"`
	}
	err = c.execute(ctx, mutation, map[string]interface{}{
		"repositoryId": repoID,
		"title":        title,
		"body":         body,
		"assigneeIds":  assigneeIDs,
	}, &resp)
	if err != nil {
		return CreateItemResult{}, fmt.Errorf("creating issue %q in %s: %w", title, repository, err)
	}

	itemID, err := c.addIssueToProject(ctx, projectID, resp.CreateIssue.Issue.ID)
	if err != nil {
		return CreateItemResult{}, err
	}
	return CreateItemResult{
		ProjectItemID: itemID,
		ContentID:     resp.CreateIssue.Issue.ID,
	}, nil
}

func (c *Client) addIssueToProject(ctx context.Context, projectID, issueID string) (string, error) {
	mutation := `
		mutation($projectId: ID!, $contentId: ID!) {
			addProjectV2ItemById(input: {
				projectId: $projectId,
				contentId: $contentId
			}) {
				item {
					id
				}
			}
		}`

	var resp struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	err := c.execute(ctx, mutation, map[string]interface{}{
		"projectId": projectID,
		"contentId": issueID,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("adding issue to project: %w", err)
	}
	return resp.AddProjectV2ItemByID.Item.ID, nil
}

// GetRepositoryID resolves owner/name to a repository node ID.
func (c *Client) GetRepositoryID(ctx context.Context, owner, name string) (string, error) {
	query := `
		query($owner: String!, $name: String!) {
			repository(owner: $owner, name: $name) {
				id
			}
		}`

	var resp struct {
		Repository *struct {
			ID string `json:"id"`
		} `json:"repository"`
	}
	err := c.execute(ctx, query, map[string]interface{}{
		"owner": owner,
		"name":  name,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("resolving repository %s/%s: %w", owner, name, err)
	}
	if resp.Repository == nil || resp.Repository.ID == "" {
		return "", fmt.Errorf("repository %s/%s not found", owner, name)
	}
	return resp.Repository.ID, nil
}

// GetUserID resolves a username to a user node ID.
func (c *Client) GetUserID(ctx context.Context, username string) (string, error) {
	query := `
		query($login: String!) {
			user(login: $login) {
				id
			}
		}`

	var resp struct {
		User *struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	err := c.execute(ctx, query, map[string]interface{}{"login": username}, &resp)
	if err != nil {
		return "", fmt.Errorf("resolving user %s: %w", username, err)
	}
	if resp.User == nil {
		return "", fmt.Errorf("user %s not found", username)
	}
	return resp.User.ID, nil
}

// UpdateDraftIssue rewrites the title and body of a draft issue. The ID must
// be the draft issue content ID, not the project item ID.
func (c *Client) UpdateDraftIssue(ctx context.Context, draftIssueID, title, body string) error {
	mutation := `
		mutation($draftIssueId: ID!, $title: String!, $body: String!) {
			updateProjectV2DraftIssue(input: {
				draftIssueId: $draftIssueId,
				title: $title,
				body: $body
			}) {
				draftIssue {
					id
				}
			}
		}`

	err := c.execute(ctx, mutation, map[string]interface{}{
		"draftIssueId": draftIssueID,
		"title":        title,
		"body":         body,
	}, nil)
	if err != nil {
		return fmt.Errorf("updating draft issue: %w", err)
	}
	return nil
}

// UpdateIssueAssignees replaces the assignees of a repository issue. Fails
// for draft issues, which are not assignable.
func (c *Client) UpdateIssueAssignees(ctx context.Context, issueID string, assignees []string) error {
	assigneeIDs := make([]string, 0, len(assignees))
	for _, username := range assignees {
		id, err := c.GetUserID(ctx, username)
		if err != nil {
			return err
		}
		assigneeIDs = append(assigneeIDs, id)
	}

	mutation := `
		mutation($issueId: ID!, $assigneeIds: [ID!]) {
			updateIssue(input: {
				id: $issueId,
				assigneeIds: $assigneeIds
			}) {
				issue {
					id
				}
			}
		}`

	err := c.execute(ctx, mutation, map[string]interface{}{
		"issueId":     issueID,
		"assigneeIds": assigneeIDs,
	}, nil)
	if err != nil {
		return fmt.Errorf("updating issue assignees: %w", err)
	}
	return nil
}

// UpdateItemField sets one field value on a project item. value must be a
// ProjectV2FieldValue shape, see FormatFieldValue.
func (c *Client) UpdateItemField(ctx context.Context, projectID, itemID, fieldID string, value map[string]interface{}) error {
	mutation := `
		mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $value: ProjectV2FieldValue!) {
			updateProjectV2ItemFieldValue(input: {
				projectId: $projectId,
				itemId: $itemId,
				fieldId: $fieldId,
				value: $value
			}) {
				projectV2Item {
					id
				}
			}
		}`

	err := c.execute(ctx, mutation, map[string]interface{}{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"value":     value,
	}, nil)
	if err != nil {
		return fmt.Errorf("updating field value: %w", err)
	}
	return nil
}

// DeleteItem removes an item from the project. For draft issues this deletes
// the content too; repository issues stay in the repo.
func (c *Client) DeleteItem(ctx context.Context, projectID, itemID string) error {
	mutation := `
		mutation($projectId: ID!, $itemId: ID!) {
			deleteProjectV2Item(input: {
				projectId: $projectId,
				itemId: $itemId
			}) {
				deletedItemId
			}
		}`

	err := c.execute(ctx, mutation, map[string]interface{}{
		"projectId": projectID,
		"itemId":    itemID,
	}, nil)
	if err != nil {
		return fmt.Errorf("deleting project item: %w", err)
	}
	return nil
}

// GetProjectFields lists the custom fields of a project with their
// single-select options.
func (c *Client) GetProjectFields(ctx context.Context, projectID string) ([]types.Field, error) {
	query := `
		query($projectId: ID!) {
			node(id: $projectId) {
				... on ProjectV2 {
					fields(first: 100) {
						nodes {
							... on ProjectV2Field {
								id
								name
								dataType
							}
							... on ProjectV2SingleSelectField {
								id
								name
								dataType
								options {
									id
									name
									color
								}
							}
						}
					}
				}
			}
		}`

	var resp struct {
		Node struct {
			Fields struct {
				Nodes []types.Field `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	err := c.execute(ctx, query, map[string]interface{}{"projectId": projectID}, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing project fields: %w", err)
	}

	// Unmatched fragments (iteration fields) come back empty; drop them.
	fields := resp.Node.Fields.Nodes[:0]
	for _, f := range resp.Node.Fields.Nodes {
		if f.ID != "" {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

// defaultFieldOptions seeds single-select fields created by CreateField.
func defaultFieldOptions(name string) []map[string]string {
	switch name {
	case "Priority":
		return []map[string]string{
			{"name": "high", "color": "RED", "description": "High priority task"},
			{"name": "medium", "color": "YELLOW", "description": "Medium priority task"},
			{"name": "low", "color": "GREEN", "description": "Low priority task"},
		}
	case "Status":
		return []map[string]string{
			{"name": "To Do", "color": "GRAY", "description": "Task is pending"},
			{"name": "In Progress", "color": "YELLOW", "description": "Task is in progress"},
			{"name": "QA Review", "color": "BLUE", "description": "Task completed, awaiting QA approval"},
			{"name": "Done", "color": "GREEN", "description": "Task completed and QA approved"},
			{"name": "Blocked", "color": "RED", "description": "Task is blocked"},
		}
	case "Agent":
		return []map[string]string{
			{"name": "Unassigned", "color": "GRAY", "description": "No agent assigned"},
		}
	default:
		return []map[string]string{
			{"name": "Default", "color": "GRAY", "description": "Default option"},
		}
	}
}

// CreateField adds a custom field to a project. Single-select fields are
// seeded with default options keyed by the field name.
func (c *Client) CreateField(ctx context.Context, projectID, name string, dataType types.FieldType) (types.Field, error) {
	var mutation string
	variables := map[string]interface{}{
		"projectId": projectID,
		"name":      name,
	}

	switch dataType {
	case types.FieldText:
		mutation = `
			mutation($projectId: ID!, $name: String!) {
				createProjectV2Field(input: {
					projectId: $projectId,
					dataType: TEXT,
					name: $name
				}) {
					projectV2Field {
						... on ProjectV2Field {
							id
						}
					}
				}
			}`
	case types.FieldSingleSelect:
		mutation = `
			mutation($projectId: ID!, $name: String!, $options: [ProjectV2SingleSelectFieldOptionInput!]!) {
				createProjectV2Field(input: {
					projectId: $projectId,
					dataType: SINGLE_SELECT,
					name: $name,
					singleSelectOptions: $options
				}) {
					projectV2Field {
						... on ProjectV2SingleSelectField {
							id
							options {
								id
								name
								color
							}
						}
					}
				}
			}`
		variables["options"] = defaultFieldOptions(name)
	default:
		return types.Field{}, fmt.Errorf("unsupported field type %s", dataType)
	}

	var resp struct {
		CreateProjectV2Field struct {
			ProjectV2Field struct {
				ID      string              `json:"id"`
				Options []types.FieldOption `json:"options"`
			} `json:"projectV2Field"`
		} `json:"createProjectV2Field"`
	}
	err := c.execute(ctx, mutation, variables, &resp)
	if err != nil {
		return types.Field{}, fmt.Errorf("creating field %s: %w", name, err)
	}
	return types.Field{
		ID:       resp.CreateProjectV2Field.ProjectV2Field.ID,
		Name:     name,
		DataType: dataType,
		Options:  resp.CreateProjectV2Field.ProjectV2Field.Options,
	}, nil
}

// CreateFieldOption appends one option to a single-select field and returns
// the new option ID.
func (c *Client) CreateFieldOption(ctx context.Context, projectID, fieldID, name, color string) (string, error) {
	mutation := `
		mutation($projectId: ID!, $fieldId: ID!, $option: ProjectV2SingleSelectFieldOptionInput!) {
			updateProjectV2Field(input: {
				projectId: $projectId,
				fieldId: $fieldId,
				singleSelectOptions: [$option]
			}) {
				projectV2Field {
					... on ProjectV2SingleSelectField {
						options {
							id
							name
						}
					}
				}
			}
		}`

	var resp struct {
		UpdateProjectV2Field struct {
			ProjectV2Field struct {
				Options []types.FieldOption `json:"options"`
			} `json:"projectV2Field"`
		} `json:"updateProjectV2Field"`
	}
	err := c.execute(ctx, mutation, map[string]interface{}{
		"projectId": projectID,
		"fieldId":   fieldID,
		"option": map[string]string{
			"name":        name,
			"color":       color,
			"description": name + " option",
		},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("creating option %q: %w", name, err)
	}

	for _, opt := range resp.UpdateProjectV2Field.ProjectV2Field.Options {
		if opt.Name == name {
			return opt.ID, nil
		}
	}
	return "", fmt.Errorf("option %q not present after update", name)
}

// CreateProject creates an organization project and optionally links it to a
// repository ("owner/name").
func (c *Client) CreateProject(ctx context.Context, title, repository string) (types.Project, error) {
	ownerID, err := c.getOrganizationID(ctx)
	if err != nil {
		return types.Project{}, err
	}

	mutation := `
		mutation($ownerId: ID!, $title: String!) {
			createProjectV2(input: {
				ownerId: $ownerId,
				title: $title
			}) {
				projectV2 {
					id
					number
					title
					url
				}
			}
		}`

	var resp struct {
		CreateProjectV2 struct {
			ProjectV2 types.Project `json:"projectV2"`
		} `json:"createProjectV2"`
	}
	err = c.execute(ctx, mutation, map[string]interface{}{
		"ownerId": ownerID,
		"title":   title,
	}, &resp)
	if err != nil {
		return types.Project{}, fmt.Errorf("creating project %q: %w", title, err)
	}
	project := resp.CreateProjectV2.ProjectV2

	if repository != "" {
		if err := c.linkRepository(ctx, project.ID, repository); err != nil {
			// The project exists at this point; surface the link failure
			// but hand the project back so the caller can keep it.
			return project, err
		}
	}
	return project, nil
}

func (c *Client) getOrganizationID(ctx context.Context) (string, error) {
	query := `
		query($org: String!) {
			organization(login: $org) {
				id
			}
		}`

	var resp struct {
		Organization *struct {
			ID string `json:"id"`
		} `json:"organization"`
	}
	err := c.execute(ctx, query, map[string]interface{}{"org": c.organization}, &resp)
	if err != nil {
		return "", fmt.Errorf("resolving organization %s: %w", c.organization, err)
	}
	if resp.Organization == nil {
		return "", fmt.Errorf("organization %s not found", c.organization)
	}
	return resp.Organization.ID, nil
}

func (c *Client) linkRepository(ctx context.Context, projectID, repository string) error {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok {
		return fmt.Errorf("invalid repository %q, expected owner/name", repository)
	}
	repoID, err := c.GetRepositoryID(ctx, owner, name)
	if err != nil {
		return err
	}

	mutation := `
		mutation($projectId: ID!, $repositoryId: ID!) {
			linkProjectV2ToRepository(input: {
				projectId: $projectId,
				repositoryId: $repositoryId
			}) {
				repository {
					id
				}
			}
		}`

	err = c.execute(ctx, mutation, map[string]interface{}{
		"projectId":    projectID,
		"repositoryId": repoID,
	}, nil)
	if err != nil {
		return fmt.Errorf("linking project to %s: %w", repository, err)
	}
	return nil
}

// FormatFieldValue builds the ProjectV2FieldValue shape for a field update.
// For single-select fields the value must already be an option ID.
func FormatFieldValue(value string, fieldType types.FieldType) map[string]interface{} {
	switch fieldType {
	case types.FieldNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			n = 0
		}
		return map[string]interface{}{"number": n}
	case types.FieldSingleSelect:
		return map[string]interface{}{"singleSelectOptionId": value}
	default:
		return map[string]interface{}{"text": value}
	}
}
