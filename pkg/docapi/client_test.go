package docapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarTablesRequestShape(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/similar_tables", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tables":[{"id":"T9"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	raw, err := c.SimilarTables(context.Background(), "tok", "T1", []string{"d1", "d2"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "T1", gotBody["table_id"])
	assert.Equal(t, []interface{}{"d1", "d2"}, gotBody["selected_docs"])
	assert.JSONEq(t, `{"tables":[{"id":"T9"}]}`, string(raw))
}

func TestSimilarTablesSendsEmptySelection(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&m)
		body = string(m["selected_docs"])
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).SimilarTables(context.Background(), "", "T1", nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", body)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListDocuments(context.Background(), "")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestFetchChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/doc%201/chunks", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{
			"text":[{"data":"hello","page":1,"y1":10.5,"index":0}],
			"tables":[{"data":"<table></table>","caption":"Table 1","page":2,"y1":3,"index":0}],
			"graphs":[]
		}`))
	}))
	defer srv.Close()

	set, err := NewClient(srv.URL, time.Second).FetchChunks(context.Background(), "tok", "doc 1")
	require.NoError(t, err)
	require.Len(t, set.Text, 1)
	require.Len(t, set.Tables, 1)
	assert.Empty(t, set.Graphs)
	assert.Nil(t, set.Text[0].Caption)
	assert.Equal(t, "Table 1", *set.Tables[0].Caption)
}

func TestOpenPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	data, ct, err := NewClient(srv.URL, time.Second).OpenPDF(context.Background(), "", "d1")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestSummarizeFillsDocumentID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary", r.URL.Path)
		_, _ = w.Write([]byte(`{"summary":"Revenue grew."}`))
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL, time.Second).Summarize(context.Background(), "tok", "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", s.DocumentID)
	assert.Equal(t, "Revenue grew.", s.Summary)
}

func TestContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, time.Second).ListDocuments(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
