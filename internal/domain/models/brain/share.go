package brain

import "time"

// BrainShare controls the public, read-only view of a user's saved content.
type BrainShare struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	IsPublic  bool      `json:"is_public" db:"is_public"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PublicBrain is what an anonymous visitor sees for a shared token.
type PublicBrain struct {
	Contents    []Content             `json:"contents"`
	Collections []*CollectionTreeNode `json:"collections"`
	Count       int                   `json:"count"`
}
