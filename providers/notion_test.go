package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotionClient_UnconfiguredIsHardError(t *testing.T) {
	c := NewNotionClient("", "", quietLogger())

	assert.False(t, c.Configured())

	_, err := c.FileTask(context.Background(), "Follow up", "notes", "lead_1", "P3")
	require.Error(t, err, "missing credentials must fail at point of use")

	_, err = c.Schema(context.Background())
	require.Error(t, err)
}

func TestNotionClient_FileTask(t *testing.T) {
	var gotBody map[string]interface{}
	var gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pages", r.URL.Path)
		gotVersion = r.Header.Get("Notion-Version")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"id":"page_123"}`))
	}))
	defer srv.Close()

	c := NewNotionClient("secret", "db_1", quietLogger())
	c.BaseURL = srv.URL

	pageID, err := c.FileTask(context.Background(), "Follow up: New lead", "Summary:\nx", "lead_1", "P2")
	require.NoError(t, err)
	assert.Equal(t, "page_123", pageID)
	assert.Equal(t, "2022-06-28", gotVersion)

	parent := gotBody["parent"].(map[string]interface{})
	assert.Equal(t, "db_1", parent["database_id"])
	props := gotBody["properties"].(map[string]interface{})
	assert.Contains(t, props, "Name")
	assert.Contains(t, props, "Notes")
	assert.Contains(t, props, "LeadId")
	assert.Contains(t, props, "Priority")
}

func TestNotionClient_FileTaskOmitsEmptyPriority(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"id":"page_123"}`))
	}))
	defer srv.Close()

	c := NewNotionClient("secret", "db_1", quietLogger())
	c.BaseURL = srv.URL

	_, err := c.FileTask(context.Background(), "Follow up", "notes", "lead_1", "")
	require.NoError(t, err)

	props := gotBody["properties"].(map[string]interface{})
	assert.NotContains(t, props, "Priority")
}

func TestNotionClient_TrackerFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Priority is not a property"}`))
	}))
	defer srv.Close()

	c := NewNotionClient("secret", "db_1", quietLogger())
	c.BaseURL = srv.URL

	_, err := c.FileTask(context.Background(), "Follow up", "notes", "lead_1", "P3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "Priority is not a property")
}

func TestNotionClient_Schema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/databases/db_1", r.URL.Path)
		_, _ = w.Write([]byte(`{"properties":{"Name":{"type":"title"},"Priority":{"type":"select"}}}`))
	}))
	defer srv.Close()

	c := NewNotionClient("secret", "db_1", quietLogger())
	c.BaseURL = srv.URL

	props, err := c.Schema(context.Background())
	require.NoError(t, err)
	require.Len(t, props, 2)

	byName := map[string]string{}
	for _, p := range props {
		byName[p.Name] = p.Type
	}
	assert.Equal(t, "title", byName["Name"])
	assert.Equal(t, "select", byName["Priority"])
}
