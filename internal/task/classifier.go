package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/jomei/notionapi"

	"github.com/taskbrief/taskbrief/internal/notion"
	"github.com/taskbrief/taskbrief/pkg/panicerr"
)

const (
	statusDone   = "Done"
	priorityHigh = "High"
)

// Classifier issues the five categorized queries against the tasks database.
// Each bucket fails independently: a query error empties that bucket only,
// and a malformed record drops that record only.
type Classifier struct {
	api        notion.API
	databaseID string
	now        func() time.Time
}

func NewClassifier(api notion.API, databaseID string, now func() time.Time) *Classifier {
	return &Classifier{
		api:        api,
		databaseID: databaseID,
		now:        now,
	}
}

// Collect runs the five bucket queries sequentially and returns whatever
// could be gathered. It never fails as a whole.
func (c *Classifier) Collect(ctx context.Context) *Buckets {
	today := dateOf(c.now())
	weekAgo := dateOf(c.now().AddDate(0, 0, -7))

	buckets := &Buckets{}
	buckets.HighPriority = c.fetchBucket(ctx, "high_priority", highPriorityFilter(today))
	buckets.DueToday = c.fetchBucket(ctx, "due_today", dueTodayFilter(today))
	buckets.Overdue = c.fetchBucket(ctx, "overdue", overdueFilter(weekAgo, today))
	buckets.NoDueDateCount = c.countBucket(ctx, "no_due_date", noDueDateFilter())
	buckets.OlderOverdueCount = c.countBucket(ctx, "older_overdue", olderOverdueFilter(weekAgo))
	return buckets
}

func (c *Classifier) fetchBucket(ctx context.Context, bucket string, filter notionapi.Filter) []Task {
	pages, err := c.api.QueryDatabase(ctx, c.databaseID, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch tasks", "bucket", bucket, "error", err)
		return nil
	}

	tasks := make([]Task, 0, len(pages))
	for _, page := range pages {
		var t *Task
		err := panicerr.Safe(func() error {
			var nerr error
			t, nerr = Normalize(page)
			return nerr
		})()
		if err != nil {
			slog.WarnContext(ctx, "dropping malformed task record", "bucket", bucket, "error", err)
			continue
		}
		tasks = append(tasks, *t)
	}
	slog.InfoContext(ctx, "fetched tasks", "bucket", bucket, "count", len(tasks))
	return tasks
}

func (c *Classifier) countBucket(ctx context.Context, bucket string, filter notionapi.Filter) int {
	pages, err := c.api.QueryDatabase(ctx, c.databaseID, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count tasks", "bucket", bucket, "error", err)
		return 0
	}
	slog.InfoContext(ctx, "counted tasks", "bucket", bucket, "count", len(pages))
	return len(pages)
}

func notDone() notionapi.PropertyFilter {
	return notionapi.PropertyFilter{
		Property: propStatus,
		Status: &notionapi.StatusFilterCondition{
			DoesNotEqual: statusDone,
		},
	}
}

func highPriorityFilter(today notionapi.Date) notionapi.Filter {
	return notionapi.AndCompoundFilter{
		notDone(),
		notionapi.PropertyFilter{
			Property: propPriority,
			Status: &notionapi.StatusFilterCondition{
				Equals: priorityHigh,
			},
		},
		notionapi.PropertyFilter{
			Property: propDue,
			Date: &notionapi.DateFilterCondition{
				OnOrBefore: &today,
			},
		},
	}
}

func dueTodayFilter(today notionapi.Date) notionapi.Filter {
	return notionapi.AndCompoundFilter{
		notDone(),
		notionapi.PropertyFilter{
			Property: propDue,
			Date: &notionapi.DateFilterCondition{
				Equals: &today,
			},
		},
	}
}

func overdueFilter(weekAgo, today notionapi.Date) notionapi.Filter {
	return notionapi.AndCompoundFilter{
		notDone(),
		notionapi.PropertyFilter{
			Property: propDue,
			Date: &notionapi.DateFilterCondition{
				OnOrAfter:  &weekAgo,
				OnOrBefore: &today,
			},
		},
	}
}

func noDueDateFilter() notionapi.Filter {
	return notionapi.AndCompoundFilter{
		notDone(),
		notionapi.PropertyFilter{
			Property: propDue,
			Date: &notionapi.DateFilterCondition{
				IsEmpty: true,
			},
		},
	}
}

func olderOverdueFilter(weekAgo notionapi.Date) notionapi.Filter {
	return notionapi.AndCompoundFilter{
		notDone(),
		notionapi.PropertyFilter{
			Property: propDue,
			Date: &notionapi.DateFilterCondition{
				Before: &weekAgo,
			},
		},
	}
}

// dateOf truncates to midnight so the filter serializes as a date, not a
// timestamp.
func dateOf(t time.Time) notionapi.Date {
	year, month, day := t.Date()
	return notionapi.Date(time.Date(year, month, day, 0, 0, 0, 0, t.Location()))
}
