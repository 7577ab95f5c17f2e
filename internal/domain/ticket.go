package domain

import "time"

// LabelKind distinguishes the two kinds of reference data attached to tickets.
type LabelKind string

const (
	LabelPriority LabelKind = "priority"
	LabelCategory LabelKind = "category"
)

// Label is a named priority or category.
type Label struct {
	ID   int64
	Name string
}

// LabelStat pairs a label with the number of tickets using it.
type LabelStat struct {
	ID    int64
	Name  string
	Count int64
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Resolved    bool
	CreatedAt   time.Time
	ResolvedAt  *time.Time
	SubmitterID *int64
	ResolverID  *int64
	Priority    Label
	Categories  []Label
}

// IsSubmittedBy reports whether userID opened the ticket.
func (t *Ticket) IsSubmittedBy(userID int64) bool {
	return t.SubmitterID != nil && *t.SubmitterID == userID
}

// CategoryIDs lists the ids of the attached categories.
func (t *Ticket) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(t.Categories))
	for _, c := range t.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// TicketStats is the aggregate view served by the stats endpoint.
type TicketStats struct {
	Total      int64       `json:"total"`
	Unresolved int64       `json:"unresolved"`
	Resolved   int64       `json:"resolved"`
	ByPriority []LabelStat `json:"by_priority"`
}
