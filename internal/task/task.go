package task

// Task is one open task normalized out of a raw Notion page. Immutable once
// built; a malformed page yields no Task at all rather than a partial one.
type Task struct {
	Name      string
	URL       string
	ProjectID string
	Status    string
}

// Buckets is the classified result of one collection pass. The first three
// buckets carry task detail in the order the remote store returned it; the
// last two are counts only, no per-task detail is kept for them.
type Buckets struct {
	HighPriority      []Task
	DueToday          []Task
	Overdue           []Task
	NoDueDateCount    int
	OlderOverdueCount int
}
