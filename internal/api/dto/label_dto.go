package dto

// LabelRequest payload for priorities and categories.
type LabelRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

// LabelResponse is the JSON view of a priority or category.
type LabelResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LabelStatResponse pairs a label with its ticket count.
type LabelStatResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
