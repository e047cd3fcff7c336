package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subbrain/internal/auth"
	"subbrain/internal/domain"
	"subbrain/internal/domain/models/brain"
	"subbrain/internal/middleware"
	"subbrain/internal/repository/memory"
	brainService "subbrain/internal/service/brain"
	"subbrain/internal/storage"
)

const testSecret = "handler-test-secret"

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	clk := clock.NewMock()
	clk.Set(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	store := memory.NewStore(clk)
	collectionRepo := memory.NewCollectionRepository(store)
	contentRepo := memory.NewContentRepository(store)
	shareRepo := memory.NewShareRepository(store)
	txManager := memory.NewTransactionManager(store)
	blobs := storage.NewNoopBlobStore(logger)

	cache := brainService.NewCollectionCache(collectionRepo.ListByUser, clk, time.Minute, nil)
	collections := brainService.NewCollectionService(collectionRepo, contentRepo, txManager, cache, blobs, nil, clk, logger)
	contents := brainService.NewContentService(contentRepo, collectionRepo, cache, blobs, nil, clk, logger)
	search := brainService.NewSearchService(contentRepo, logger)
	shares := brainService.NewShareService(shareRepo, contentRepo, collections, clk, logger)

	h := &Handlers{
		Health:      NewHealthHandler(nil, "memory", clk),
		Collections: NewCollectionHandler(collections, logger),
		Content:     NewContentHandler(contents, logger),
		Search:      NewSearchHandler(search, logger),
		Share:       NewShareHandler(shares, logger),
	}
	mux := http.NewServeMux()
	h.Register(mux)

	verifier, err := auth.NewHMACVerifier(testSecret, logger)
	require.NoError(t, err)

	return &testAPI{t: t, handler: middleware.AuthMiddleware(verifier)(mux), store: store}
}

func (a *testAPI) token(userID string) string {
	tok, err := auth.SignHS256(testSecret, userID, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(a.t, err)
	return tok
}

// do sends a request as userID ("" for anonymous) and decodes the JSON
// response into out when out is non-nil.
func (a *testAPI) do(method, path, userID string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = bytes.NewBufferString(s)
		} else {
			payload, err := json.Marshal(body)
			require.NoError(a.t, err)
			reader = bytes.NewReader(payload)
		}
	}

	r := httptest.NewRequest(method, path, reader)
	if userID != "" {
		r.Header.Set("Authorization", "Bearer "+a.token(userID))
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)

	if out != nil && w.Code < 300 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func (a *testAPI) createCollection(userID, name string, parent *string) brain.Collection {
	a.t.Helper()
	var c brain.Collection
	w := a.do(http.MethodPost, "/api/collections", userID, map[string]interface{}{
		"name":              name,
		"parent_collection": parent,
	}, &c)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return c
}

func (a *testAPI) createContent(userID, title string, collection *string) brain.Content {
	a.t.Helper()
	var c brain.Content
	w := a.do(http.MethodPost, "/api/content", userID, map[string]interface{}{
		"type":       "link",
		"title":      title,
		"link":       "https://example.com/" + title,
		"collection": collection,
	}, &c)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return c
}

func TestCollections_CreateAndList(t *testing.T) {
	api := newTestAPI(t)

	c := api.createCollection("u1", "Reading", nil)
	assert.Equal(t, brain.DefaultCollectionIcon, c.Icon)
	assert.Nil(t, c.ParentID)

	w := api.do(http.MethodPost, "/api/collections", "u1", map[string]string{"name": "Reading"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	w = api.do(http.MethodPost, "/api/collections", "u1", `{"name":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var list []brain.Collection
	w = api.do(http.MethodGet, "/api/collections", "u1", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list, 1)

	var other []brain.Collection
	api.do(http.MethodGet, "/api/collections", "u2", nil, &other)
	assert.Empty(t, other)
}

func TestCollections_ListRefresh(t *testing.T) {
	api := newTestAPI(t)
	api.createCollection("u1", "Reading", nil)

	var list []brain.Collection
	api.do(http.MethodGet, "/api/collections", "u1", nil, &list)
	require.Len(t, list, 1)

	// written behind the service, so the cached hierarchy is stale
	repo := memory.NewCollectionRepository(api.store)
	require.NoError(t, repo.Create(context.Background(), &brain.Collection{UserID: "u1", Name: "Imported"}))

	api.do(http.MethodGet, "/api/collections", "u1", nil, &list)
	assert.Len(t, list, 1)

	w := api.do(http.MethodGet, "/api/collections?refresh=true", "u1", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list, 2)

	api.do(http.MethodGet, "/api/collections", "u1", nil, &list)
	assert.Len(t, list, 2)
}

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		extras map[string]any
	}{
		{"validation", fmt.Errorf("%w: name is required", domain.ErrValidation), http.StatusBadRequest, nil},
		{"not found", fmt.Errorf("collection x: %w", domain.ErrNotFound), http.StatusNotFound, nil},
		{"forbidden", &domain.ForbiddenError{Message: "brain is private"}, http.StatusForbidden, nil},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, nil},
		{
			"conflict",
			fmt.Errorf("create: %w", &domain.ConflictError{Message: "name taken", ResourceType: "collection", ResourceID: "c-7"}),
			http.StatusConflict,
			map[string]any{"resource_type": "collection", "resource_id": "c-7"},
		},
		{"dependency", domain.NewDependencyError("list collections", errors.New("conn reset")), http.StatusInternalServerError, nil},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.EqualValues(t, tt.status, body["status"])
			for k, v := range tt.extras {
				assert.Equal(t, v, body[k], k)
			}
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body["detail"])
			}
		})
	}
}

func TestCollections_RequireAuth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/collections", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCollections_TreeAndFlat(t *testing.T) {
	api := newTestAPI(t)
	root := api.createCollection("u1", "Root", nil)
	child := api.createCollection("u1", "Child", &root.ID)
	api.createCollection("u1", "Grandchild", &child.ID)

	var tree []brain.CollectionTreeNode
	w := api.do(http.MethodGet, "/api/collections/tree", "u1", nil, &tree)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Grandchild", tree[0].Children[0].Children[0].Name)
	assert.Equal(t, 2, tree[0].Children[0].Children[0].Depth)

	var flat []struct {
		Name  string `json:"name"`
		Depth int    `json:"depth"`
	}
	w = api.do(http.MethodGet, "/api/collections/tree?flat=true", "u1", nil, &flat)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, flat, 3)
	assert.Equal(t, "Root", flat[0].Name)
	assert.Equal(t, 0, flat[0].Depth)
	assert.Equal(t, "Grandchild", flat[2].Name)
	assert.Equal(t, 2, flat[2].Depth)
}

func TestCollections_UpdateParent(t *testing.T) {
	api := newTestAPI(t)
	a := api.createCollection("u1", "A", nil)
	b := api.createCollection("u1", "B", &a.ID)

	w := api.do(http.MethodPatch, "/api/collections/"+a.ID, "u1", map[string]interface{}{"parent_collection": b.ID}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Absent parent leaves the hierarchy alone
	var renamed brain.Collection
	w = api.do(http.MethodPatch, "/api/collections/"+b.ID, "u1", `{"name":"B2"}`, &renamed)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, renamed.ParentID)
	assert.Equal(t, a.ID, *renamed.ParentID)

	var moved brain.Collection
	w = api.do(http.MethodPatch, "/api/collections/"+b.ID, "u1", `{"parent_collection":null}`, &moved)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, moved.ParentID)

	w = api.do(http.MethodPatch, "/api/collections/"+b.ID, "u2", `{"name":"mine"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCollections_Delete(t *testing.T) {
	api := newTestAPI(t)
	parent := api.createCollection("u1", "Parent", nil)
	target := api.createCollection("u1", "Target", &parent.ID)
	api.createCollection("u1", "Kid", &target.ID)
	item := api.createContent("u1", "item", &target.ID)

	w := api.do(http.MethodDelete, "/api/collections/"+target.ID+"?mode=explode", "u1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result brain.DeleteResult
	w = api.do(http.MethodDelete, "/api/collections/"+target.ID, "u1", nil, &result)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, brain.DeleteModePromote, result.Mode)
	assert.Equal(t, int64(1), result.ReparentedChildren)
	assert.Equal(t, int64(1), result.UncategorizedItems)

	var got brain.Content
	api.do(http.MethodGet, "/api/content/"+item.ID, "u1", nil, &got)
	assert.Nil(t, got.CollectionID)

	w = api.do(http.MethodDelete, "/api/collections/"+parent.ID+"?deleteAll=true", "u1", nil, &result)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, brain.DeleteModeCascade, result.Mode)
	assert.Equal(t, int64(2), result.DeletedCollections)

	var list []brain.Collection
	api.do(http.MethodGet, "/api/collections", "u1", nil, &list)
	assert.Empty(t, list)

	w = api.do(http.MethodDelete, "/api/collections/"+parent.ID, "u1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContent_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	c := api.createCollection("u1", "Inbox", nil)
	item := api.createContent("u1", "article", nil)

	var moved brain.Content
	w := api.do(http.MethodPut, "/api/content/"+item.ID+"/move", "u1", map[string]string{"collection": c.ID}, &moved)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, c.ID, *moved.CollectionID)

	var inCollection brain.CollectionWithContents
	w = api.do(http.MethodGet, "/api/collections/"+c.ID+"/contents", "u1", nil, &inCollection)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, inCollection.Contents, 1)

	var uncategorized []brain.Content
	api.do(http.MethodGet, "/api/content?uncategorized=true", "u1", nil, &uncategorized)
	assert.Empty(t, uncategorized)

	var updated brain.Content
	w = api.do(http.MethodPatch, "/api/content/"+item.ID, "u1", `{"title":"renamed","collection":null}`, &updated)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed", updated.Title)
	assert.Nil(t, updated.CollectionID)

	var stats brain.ContentStats
	api.do(http.MethodGet, "/api/users/me/stats", "u1", nil, &stats)
	assert.Equal(t, brain.ContentStats{TotalContent: 1, LinkCount: 1, CollectionCount: 1}, stats)

	w = api.do(http.MethodDelete, "/api/content/"+item.ID, "u1", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/content/"+item.ID, "u1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearch(t *testing.T) {
	api := newTestAPI(t)
	api.createContent("u1", "category", nil)
	api.createContent("u1", "cat", nil)

	w := api.do(http.MethodGet, "/api/search", "u1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/search?query=cat&sortBy=popular", "u1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var res brain.SearchResponse
	w = api.do(http.MethodGet, "/api/search?query=cat", "u1", nil, &res)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "cat", res.Results[0].Content.Title)
	assert.Greater(t, res.Results[0].Score, res.Results[1].Score)
}

func TestShare_PublicBrain(t *testing.T) {
	api := newTestAPI(t)
	api.createCollection("u1", "Public stuff", nil)
	api.createContent("u1", "hello", nil)

	var share brain.BrainShare
	w := api.do(http.MethodGet, "/api/users/me/share", "u1", nil, &share)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, share.IsPublic)

	w = api.do(http.MethodGet, "/api/brain/"+share.Token, "", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPatch, "/api/users/me/share", "u1", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPatch, "/api/users/me/share", "u1", `{"is_public":true}`, &share)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, share.IsPublic)

	var pub brain.PublicBrain
	w = api.do(http.MethodGet, "/api/brain/"+share.Token, "", nil, &pub)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, pub.Count)
	assert.Len(t, pub.Collections, 1)

	w = api.do(http.MethodGet, "/api/brain/does-not-exist", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
