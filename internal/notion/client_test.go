package notion

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapturehq/kapture/internal/common"
	"github.com/kapturehq/kapture/internal/logging"
	"github.com/kapturehq/kapture/internal/models"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "2022-06-28", staticToken("secret"), testLogger())
	c.newBackoff = func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.NewExponential(time.Millisecond))
	}
	return c
}

func TestCreateRecord_Success(t *testing.T) {
	var gotAuth, gotVersion, gotPath string
	var gotBody map[string]any

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "page-1"})
	}))

	id, err := c.CreateRecord(context.Background(), "db-1", models.Properties{
		{ID: "Name", Value: models.Title("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "2022-06-28", gotVersion)
	assert.Equal(t, "/pages", gotPath)

	parent, ok := gotBody["parent"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "db-1", parent["database_id"])
	require.Contains(t, gotBody, "properties")
}

func TestCreateRecord_ClientErrorIsNotRetried(t *testing.T) {
	var calls int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"message":"bad property"}`, http.StatusBadRequest)
	}))

	_, err := c.CreateRecord(context.Background(), "db-1", nil)
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Message, "bad property")
	assert.Equal(t, 1, calls)
}

func TestCreateRecord_TransientErrorIsRetried(t *testing.T) {
	var calls int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "page-2"})
	}))

	id, err := c.CreateRecord(context.Background(), "db-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "page-2", id)
	assert.Equal(t, 2, calls)
}

func TestCreateRecord_TransientBudgetExhausted(t *testing.T) {
	var calls int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))

	_, err := c.CreateRecord(context.Background(), "db-1", nil)
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusTooManyRequests, remoteErr.StatusCode)
	assert.Equal(t, 3, calls) // initial try + 2 retries
}

func TestDo_UnauthorizedMapsToSentinel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))

	_, err := c.CreateRecord(context.Background(), "db-1", nil)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestSearchDatabases(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		filter, ok := body["filter"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "database", filter["value"])

		_, _ = w.Write([]byte(`{"results":[
			{"id":"db-1","url":"https://notion.so/db1","title":[{"plain_text":"Tasks"}]},
			{"id":"db-2","url":"https://notion.so/db2","title":[]}
		]}`))
	}))

	got, err := c.SearchDatabases(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.Destination{ID: "db-1", Title: "Tasks", URL: "https://notion.so/db1"}, got[0])
	assert.Empty(t, got[1].Title)
}

func TestFetchDatabase(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/db-9", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"id":"db-9","url":"u","title":[{"plain_text":"Journal"}]}`))
	}))

	got, err := c.FetchDatabase(context.Background(), "db-9")
	require.NoError(t, err)
	assert.Equal(t, "Journal", got.Title)
}
