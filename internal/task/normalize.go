package task

import (
	"fmt"

	"github.com/jomei/notionapi"
)

// Property names in the tasks database.
const (
	propName     = "Name"
	propProject  = "Project"
	propStatus   = "Status"
	propPriority = "Priority"
	propDue      = "Due"
)

const (
	defaultName   = "Unknown Task"
	defaultStatus = "Unknown"
)

// Normalize converts a raw page into a Task. Missing fields fall back to
// defaults; only a page without a property map at all is rejected.
func Normalize(page notionapi.Page) (*Task, error) {
	if page.Properties == nil {
		return nil, fmt.Errorf("page %s has no properties", page.ID)
	}

	t := &Task{
		Name:   defaultName,
		URL:    page.URL,
		Status: defaultStatus,
	}

	if tp, ok := page.Properties[propName].(*notionapi.TitleProperty); ok && len(tp.Title) > 0 {
		if tp.Title[0].Text != nil && tp.Title[0].Text.Content != "" {
			t.Name = tp.Title[0].Text.Content
		}
	}

	if rp, ok := page.Properties[propProject].(*notionapi.RelationProperty); ok && len(rp.Relation) > 0 {
		t.ProjectID = string(rp.Relation[0].ID)
	}

	if sp, ok := page.Properties[propStatus].(*notionapi.StatusProperty); ok && sp.Status.Name != "" {
		t.Status = sp.Status.Name
	}

	return t, nil
}
