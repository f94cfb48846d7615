package sync

import (
	"context"
	"fmt"
	"sort"

	"github.com/taskmastersync/tmsync/internal/types"
)

// DuplicateReport summarizes duplicate analysis of one project.
type DuplicateReport struct {
	TotalItems       int
	MissingTMID      int
	ByTMID           map[string]int // TM_ID to copy count, duplicates only
	ByTitle          map[string]int // title to copy count, duplicates only
	Deleted          int
	DeletionFailures []string
}

// HasDuplicates reports whether the analysis found anything to clean.
func (r *DuplicateReport) HasDuplicates() bool {
	return len(r.ByTMID) > 0 || len(r.ByTitle) > 0 || r.MissingTMID > 0
}

// CleanDuplicates finds items that share a TM_ID or a title. With remove set
// it deletes the extra copies: for a duplicated TM_ID every item after the
// first goes, and an item without TM_ID goes when a TM_ID-carrying item
// already holds its title.
func CleanDuplicates(ctx context.Context, client ProjectClient, projectID string, remove bool) (*DuplicateReport, error) {
	items, err := client.ListProjectItems(ctx, projectID)
	if err != nil {
		return nil, err
	}

	byTMID := make(map[string][]types.ProjectItem)
	byTitle := make(map[string][]types.ProjectItem)
	var missing []types.ProjectItem

	for _, item := range items {
		if tmID := item.FieldValues["TM_ID"]; tmID != "" {
			byTMID[tmID] = append(byTMID[tmID], item)
		} else {
			missing = append(missing, item)
		}
		byTitle[item.Title] = append(byTitle[item.Title], item)
	}

	report := &DuplicateReport{
		TotalItems:  len(items),
		MissingTMID: len(missing),
		ByTMID:      make(map[string]int),
		ByTitle:     make(map[string]int),
	}
	for tmID, group := range byTMID {
		if len(group) > 1 {
			report.ByTMID[tmID] = len(group)
		}
	}
	for title, group := range byTitle {
		if len(group) > 1 {
			report.ByTitle[title] = len(group)
		}
	}

	if !remove {
		return report, nil
	}

	// Keep the first item of each duplicated TM_ID, delete the rest.
	tmIDs := make([]string, 0, len(report.ByTMID))
	for tmID := range report.ByTMID {
		tmIDs = append(tmIDs, tmID)
	}
	sort.Strings(tmIDs)
	for _, tmID := range tmIDs {
		for _, item := range byTMID[tmID][1:] {
			if err := client.DeleteItem(ctx, projectID, item.ID); err != nil {
				report.DeletionFailures = append(report.DeletionFailures,
					fmt.Sprintf("duplicate of %s: %v", tmID, err))
				continue
			}
			report.Deleted++
		}
	}

	// An item without TM_ID is redundant once a tracked item holds the same
	// title.
	for _, item := range missing {
		tracked := false
		for _, other := range byTitle[item.Title] {
			if other.ID != item.ID && other.FieldValues["TM_ID"] != "" {
				tracked = true
				break
			}
		}
		if !tracked {
			continue
		}
		if err := client.DeleteItem(ctx, projectID, item.ID); err != nil {
			report.DeletionFailures = append(report.DeletionFailures,
				fmt.Sprintf("untracked item %q: %v", item.Title, err))
			continue
		}
		report.Deleted++
	}

	return report, nil
}
