package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-management/internal/domain/entity"
)

func newTestIndex(t *testing.T, h http.HandlerFunc) *BookIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client refuses to talk to servers that do not identify as Elasticsearch.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewBookIndex(es, "books")
}

func TestSearchBody(t *testing.T) {
	b, err := searchBody("dune", 5)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.EqualValues(t, 5, m["size"])
	mm := m["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "dune", mm["query"])
}

func TestIndexSendsDocument(t *testing.T) {
	var path, body string
	x := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	book := &entity.Book{ID: "b1", Title: "Dune", PublishedDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, x.Index(context.Background(), book))
	assert.Equal(t, "/books/_doc/b1", path)
	assert.True(t, strings.Contains(body, `"published_date":"1965-08-01"`))
}

func TestSearchReturnsIDs(t *testing.T) {
	x := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"b2"},{"_id":"b1"}]}}`))
	})
	ids, err := x.Search(context.Background(), "dune", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "b1"}, ids)
}

func TestDeleteIgnoresMissingDocument(t *testing.T) {
	x := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	assert.NoError(t, x.Delete(context.Background(), "gone"))
}
