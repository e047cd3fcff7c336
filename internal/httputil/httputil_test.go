package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString_Ref(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
	}{
		{"absent", `{}`, false, nil},
		{"null", `{"collection": null}`, true, nil},
		{"empty", `{"collection": ""}`, true, nil},
		{"value", `{"collection": "abc"}`, true, strPtr("abc")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				Collection OptionalString `json:"collection"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			ref := req.Collection.Ref()
			assert.Equal(t, tt.wantPresent, ref.Present)
			assert.Equal(t, tt.wantValue, ref.Value)
		})
	}
}

func TestParseJSON_RejectsOversizedBody(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", 2<<20) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	var dest map[string]string
	assert.Error(t, ParseJSON(w, r, &dest))
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?flat=true&deleteAll=nope&collection=", nil)

	assert.True(t, QueryBool(r, "flat"))
	assert.False(t, QueryBool(r, "deleteAll"))
	assert.False(t, QueryBool(r, "missing"))

	got := QueryOptional(r, "collection")
	require.NotNil(t, got)
	assert.Equal(t, "", *got)
	assert.Nil(t, QueryOptional(r, "missing"))
}

func TestRespondError_ProblemJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, http.StatusNotFound, "collection not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body["title"])
	assert.Equal(t, "collection not found", body["detail"])
	assert.EqualValues(t, 404, body["status"])
}

func TestRespondErrorWithExtras_FlattensMembers(t *testing.T) {
	w := httptest.NewRecorder()
	RespondErrorWithExtras(w, http.StatusConflict, "name taken", map[string]any{
		"resource_id": "c-1",
		"status":      "ignored",
	})

	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "c-1", body["resource_id"])
	assert.EqualValues(t, 409, body["status"])
	assert.Equal(t, "Conflict", body["title"])
	assert.Contains(t, body["type"], "rfc9110")
}

func strPtr(s string) *string { return &s }
