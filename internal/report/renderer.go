package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/taskbrief/taskbrief/internal/project"
	"github.com/taskbrief/taskbrief/internal/task"
	"github.com/taskbrief/taskbrief/pkg/cerr"
	"github.com/taskbrief/taskbrief/pkg/panicerr"
	"github.com/taskbrief/taskbrief/pkg/storage"
)

// Current report pair inside the storage root.
const (
	FileMD  = "tasks_report.md"
	FileTXT = "tasks_report.txt"
)

// Renderer turns classified buckets plus the project cache into the
// markdown/plain-text report pair. Both artifacts carry word-for-word
// identical content apart from markup.
type Renderer struct {
	storage storage.Storage
	now     func() time.Time
}

func NewRenderer(s storage.Storage, now func() time.Time) *Renderer {
	return &Renderer{
		storage: s,
		now:     now,
	}
}

// Render writes the report pair. Both buffers are rendered completely
// before either file is written, so a rendering problem never clobbers the
// previous pair. A returned error means the pair may be incomplete.
func (r *Renderer) Render(ctx context.Context, buckets *task.Buckets, cache *project.Cache) error {
	md := &bytes.Buffer{}
	txt := &bytes.Buffer{}

	title := fmt.Sprintf("# Task Report (%s)\n\n", r.now().Format("2006-01-02 15:04:05"))
	md.WriteString(title)
	txt.WriteString(title)

	r.writeSection(ctx, md, txt, "High Priority", buckets.HighPriority, cache)
	r.writeSection(ctx, md, txt, "Due Today", buckets.DueToday, cache)
	r.writeSection(ctx, md, txt, "Overdue (Last 7 Days)", buckets.Overdue, cache)

	if buckets.OlderOverdueCount > 0 {
		fmt.Fprintf(md, "\n*Note: %d tasks are overdue for more than 7 days.*\n", buckets.OlderOverdueCount)
		fmt.Fprintf(txt, "\nNote: %d tasks are overdue for more than 7 days.\n", buckets.OlderOverdueCount)
	}
	if buckets.NoDueDateCount > 0 {
		fmt.Fprintf(md, "\n*Note: %d tasks have no Due.*\n", buckets.NoDueDateCount)
		fmt.Fprintf(txt, "\nNote: %d tasks have no Due.\n", buckets.NoDueDateCount)
	}

	if err := r.storage.Write(ctx, FileMD, md.Bytes()); err != nil {
		return cerr.WrapStorageWriteError("markdown report", err)
	}
	if err := r.storage.Write(ctx, FileTXT, txt.Bytes()); err != nil {
		return cerr.WrapStorageWriteError("plain-text report", err)
	}
	slog.InfoContext(ctx, "task report generated",
		"high_priority", len(buckets.HighPriority),
		"due_today", len(buckets.DueToday),
		"overdue", len(buckets.Overdue),
		"no_due_date", buckets.NoDueDateCount,
		"older_overdue", buckets.OlderOverdueCount,
	)
	return nil
}

func (r *Renderer) writeSection(ctx context.Context, md, txt io.Writer, title string, tasks []task.Task, cache *project.Cache) {
	// Empty buckets get no heading at all.
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintf(md, "## %s\n", title)
	fmt.Fprintf(txt, "%s:\n", title)
	for _, tk := range tasks {
		var body string
		err := panicerr.Safe(func() error {
			body = taskLine(tk, cache)
			return nil
		})()
		if err != nil {
			slog.WarnContext(ctx, "skipping task line", "task", tk.Name, "error", err)
			continue
		}
		fmt.Fprintf(md, "- [ ] %s\n", body)
		fmt.Fprintf(txt, "- %s\n", stripBrackets(body))
	}
	fmt.Fprint(md, "\n")
	fmt.Fprint(txt, "\n")
}

// taskLine builds the line body shared by both formats: the link, an
// optional project suffix and an optional status suffix. Unresolvable
// projects get no suffix at all, and the placeholder status stays out of
// the report.
func taskLine(tk task.Task, cache *project.Cache) string {
	line := fmt.Sprintf("[%s](%s)", tk.Name, tk.URL)
	if name, ok := cache.Name(tk.ProjectID); ok {
		line += fmt.Sprintf(" (Project: %s)", name)
	}
	if tk.Status != "" && tk.Status != "Unknown" {
		line += fmt.Sprintf(", Status: %s", tk.Status)
	}
	return line
}

// stripBrackets is deliberately blunt: every bracket goes, including any
// inside the task name itself.
func stripBrackets(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "[", ""), "]", "")
}
