package brain

import (
	"time"
)

// Default presentation values applied when a collection is created without them.
const (
	DefaultCollectionIcon  = "📁"
	DefaultCollectionColor = "#6B7280"
)

type Collection struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Icon         string    `json:"icon" db:"icon"`
	Color        string    `json:"color" db:"color"`
	IsDefault    bool      `json:"is_default" db:"is_default"`
	ParentID     *string   `json:"parent_collection" db:"parent_id"` // NULL = root level
	ContentCount int       `json:"content_count"`                    // Computed on read, not stored
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the collection has no parent.
func (c *Collection) IsRoot() bool {
	return c.ParentID == nil
}

// DeleteMode selects what happens to the descendants of a deleted collection.
type DeleteMode string

const (
	// DeleteModePromote re-parents direct children to the deleted collection's
	// parent and leaves its content uncategorized.
	DeleteModePromote DeleteMode = "promote"

	// DeleteModeCascade removes the whole subtree and all content inside it.
	DeleteModeCascade DeleteMode = "cascade"
)

// ParseDeleteMode maps the query parameter to a DeleteMode. Empty means promote.
func ParseDeleteMode(s string) (DeleteMode, bool) {
	switch DeleteMode(s) {
	case "", DeleteModePromote:
		return DeleteModePromote, true
	case DeleteModeCascade:
		return DeleteModeCascade, true
	default:
		return "", false
	}
}

// DeleteResult summarizes what a collection delete removed or moved.
type DeleteResult struct {
	Mode               DeleteMode `json:"mode"`
	DeletedCollections int64      `json:"deleted_collections"`
	DeletedContent     int64      `json:"deleted_content"`
	ReparentedChildren int64      `json:"reparented_children"`
	UncategorizedItems int64      `json:"uncategorized_content"`
}

// OptionalRef tracks tri-state semantics for a reference field in a PATCH.
// Transport-agnostic; handlers map from httputil.OptionalString.
//   - Present=false: field absent (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"id": point at id
type OptionalRef struct {
	Present bool
	Value   *string
}
