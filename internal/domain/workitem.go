package domain

import (
	"sort"
	"time"
)

// WorkItem is a task, RFI or submittal attached to a project.
type WorkItem struct {
	ID         string       `json:"id"`
	Kind       WorkItemKind `json:"kind"`
	ProjectID  string       `json:"project_id"`
	Title      string       `json:"title"`
	Status     string       `json:"status"`
	DueDate    *time.Time   `json:"due_date"`
	AssigneeID *string      `json:"assignee_id"`

	// Project is populated when the store embeds the parent project.
	Project *ProjectRef `json:"project"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var terminalStatuses = map[WorkItemKind]map[string]bool{
	KindTask: {
		TaskCompleted: true,
		TaskCancelled: true,
	},
	KindRFI: {
		RFIAnswered: true,
		RFIClosed:   true,
	},
	KindSubmittal: {
		SubmittalApproved:        true,
		SubmittalApprovedAsNoted: true,
		SubmittalRejected:        true,
	},
}

// IsTerminal reports whether the item's status closes it for its kind.
func (w *WorkItem) IsTerminal() bool {
	return terminalStatuses[w.Kind][w.Status]
}

// TerminalStatuses returns the closing statuses for a kind.
func TerminalStatuses(kind WorkItemKind) []string {
	out := make([]string, 0, len(terminalStatuses[kind]))
	for s := range terminalStatuses[kind] {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsOverdue reports whether the item has a due date strictly before the
// calendar day of now and is still open. Items without a due date are
// never overdue.
func (w *WorkItem) IsOverdue(now time.Time) bool {
	if w.DueDate == nil || w.IsTerminal() {
		return false
	}
	return DateOf(*w.DueDate, now.Location()).Before(DateOf(now, now.Location()))
}
