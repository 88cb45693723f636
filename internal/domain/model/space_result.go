package model

import "time"

// SpaceResult is one append-only memoization row for a (space, user) pair.
// The newest row is the current state of the space: the recommended products,
// the user's (or the AI's) selections, and the generated image if any.
// JobID is unique across rows, which is what makes the completion pipeline
// idempotent per job.
type SpaceResult struct {
	ID                string            `json:"id"`
	JobID             string            `json:"job_id"`
	SpaceID           string            `json:"space_id"`
	UserID            string            `json:"user_id"`
	Products          []ProductCategory `json:"products,omitempty"`
	SelectedProducts  []SelectedProduct `json:"selected_products,omitempty"`
	GeneratedImageURL string            `json:"generated_image_url,omitempty"`
	Coordinates       []Coordinate      `json:"coordinates,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
