package dto

import "time"

// TicketRequest payload for creating or updating a ticket.
type TicketRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"required,min=10,max=1000"`
	PriorityID  int64   `json:"priority_id" validate:"required,gt=0"`
	CategoryIDs []int64 `json:"category_ids" validate:"omitempty,dive,gt=0"`
}

// TicketResponse is the JSON view of a ticket.
type TicketResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Resolved    bool            `json:"resolved"`
	CreatedAt   time.Time       `json:"created_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	SubmitterID *int64          `json:"submitter_id,omitempty"`
	ResolverID  *int64          `json:"resolver_id,omitempty"`
	Priority    LabelResponse   `json:"priority"`
	Categories  []LabelResponse `json:"categories"`
}

// TicketStatsResponse aggregates ticket counts.
type TicketStatsResponse struct {
	Total      int64               `json:"total"`
	Unresolved int64               `json:"unresolved"`
	Resolved   int64               `json:"resolved"`
	ByPriority []LabelStatResponse `json:"by_priority"`
}
