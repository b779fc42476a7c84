package models

// Feedback aggregates audience reactions counted against one generated
// output. Records are appended by the sampling collaborator and never
// updated in place.
type Feedback struct {
	Content string `json:"content"`
	Up      int    `json:"up"`
	Down    int    `json:"down"`
}
