package brain

// CollectionTreeNode is a collection positioned in the user's hierarchy.
// Trees are rebuilt from the flat collection list on every request.
type CollectionTreeNode struct {
	Collection
	Children []*CollectionTreeNode `json:"children"`
	Depth    int                   `json:"depth"`
}

// CollectionWithContents is a collection together with the content filed directly in it.
type CollectionWithContents struct {
	Collection *Collection `json:"collection"`
	Contents   []Content   `json:"contents"`
}
