package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "subbrain/internal/domain/models/brain"
	"subbrain/internal/repository/postgres"
)

func TestBuildSearchQuery(t *testing.T) {
	link := models.ContentTypeLink
	collectionID := "c-1"

	tests := []struct {
		name         string
		filter       *models.SearchFilter
		wantArgs     []interface{}
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "query only",
			filter:       &models.SearchFilter{UserID: "u1", Query: "go"},
			wantArgs:     []interface{}{"u1", "%go%"},
			wantContains: []string{"user_id = $1", "title ILIKE $2", "ORDER BY created_at DESC"},
			wantAbsent:   []string{"type =", "collection_id ="},
		},
		{
			name:         "type filter",
			filter:       &models.SearchFilter{UserID: "u1", Query: "go", Type: &link},
			wantArgs:     []interface{}{"u1", "%go%", "link"},
			wantContains: []string{"type = $3"},
			wantAbsent:   []string{"collection_id ="},
		},
		{
			name:         "type and collection",
			filter:       &models.SearchFilter{UserID: "u1", Query: "go", Type: &link, CollectionID: &collectionID},
			wantArgs:     []interface{}{"u1", "%go%", "link", "c-1"},
			wantContains: []string{"type = $3", "collection_id = $4"},
		},
		{
			name:         "collection without type",
			filter:       &models.SearchFilter{UserID: "u1", Query: "go", CollectionID: &collectionID},
			wantArgs:     []interface{}{"u1", "%go%", "c-1"},
			wantContains: []string{"collection_id = $3"},
			wantAbsent:   []string{"type ="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildSearchQuery("test_contents", tt.filter)
			assert.Equal(t, tt.wantArgs, args)
			assert.Contains(t, query, "FROM test_contents")
			for _, s := range tt.wantContains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.wantAbsent {
				assert.NotContains(t, query, s)
			}
		})
	}
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "%plain%"},
		{"100%", `%100\%%`},
		{"snake_case", `%snake\_case%`},
		{`back\slash`, `%back\\slash%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, postgres.ContainsPattern(tt.in))
		})
	}
}
