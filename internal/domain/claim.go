package domain

import "github.com/google/uuid"

// Claim is one proposition submitted for adjudication. SeedContext is an
// opaque mapping handed through to the reasoning modules; the core never
// interprets it.
type Claim struct {
	ID          uuid.UUID         `json:"id"`
	Text        string            `json:"text"`
	SeedContext map[string]string `json:"seed_context,omitempty"`
}
