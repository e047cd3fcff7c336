package brain

import (
	"time"
)

// ContentType distinguishes saved links from uploaded files.
type ContentType string

const (
	ContentTypeLink ContentType = "link"
	ContentTypeFile ContentType = "file"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentTypeLink || t == ContentTypeFile
}

type Content struct {
	ID           string      `json:"id" db:"id"`
	UserID       string      `json:"user_id" db:"user_id"`
	Type         ContentType `json:"type" db:"type"`
	Title        string      `json:"title" db:"title"`
	Link         string      `json:"link,omitempty" db:"link"`
	Description  string      `json:"description,omitempty" db:"description"`
	CollectionID *string     `json:"collection" db:"collection_id"` // NULL = uncategorized
	Tags         []string    `json:"tags" db:"tags"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// IsUncategorized reports whether the content belongs to no collection.
func (c *Content) IsUncategorized() bool {
	return c.CollectionID == nil
}

// ContentStats are per-user totals for the profile view.
type ContentStats struct {
	TotalContent    int `json:"total_content"`
	LinkCount       int `json:"link_count"`
	FileCount       int `json:"file_count"`
	CollectionCount int `json:"collection_count"`
}
