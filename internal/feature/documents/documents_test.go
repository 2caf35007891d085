package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworkspace/pkg/docapi"
	"docworkspace/pkg/store"
)

type fakeLister struct {
	docs []docapi.Document
	err  error
}

func (f fakeLister) ListDocuments(context.Context, string) ([]docapi.Document, error) {
	return f.docs, f.err
}

func TestSelectorsDefaults(t *testing.T) {
	st := store.StateOf(nil)
	assert.Equal(t, []docapi.Document{}, SelectDocuments(st))
	assert.False(t, SelectDocumentsLoading(st))
	assert.Nil(t, SelectDocumentsError(st))
	assert.Equal(t, "", SelectCurrentDocumentURL(st))
	_, ok := SelectCurrentDocument(st)
	assert.False(t, ok)
}

func TestListAndSelect(t *testing.T) {
	st := store.New()
	svc := NewDocumentService(store.NewRegistry(st, nil), fakeLister{docs: []docapi.Document{
		{ID: "acme 10-K", Name: "Acme 10-K", Company: "Acme"},
	}}, nil, nil)

	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	require.NoError(t, svc.Select("acme 10-K"))
	assert.ErrorIs(t, svc.Select("missing"), ErrUnknownDocument)

	s := st.State()
	doc, ok := SelectCurrentDocument(s)
	require.True(t, ok)
	assert.Equal(t, "Acme", doc.Company)
	assert.Equal(t, "/api/documents/acme%2010-K/pdf", SelectCurrentDocumentURL(s))
}

func TestSelectDocumentsReturnsCopy(t *testing.T) {
	st := store.New()
	svc := NewDocumentService(store.NewRegistry(st, nil), fakeLister{docs: []docapi.Document{
		{ID: "d1", Name: "First"},
		{ID: "d2", Name: "Second"},
	}}, nil, nil)
	_, err := svc.List(context.Background())
	require.NoError(t, err)

	snapshot := st.State()
	docs := SelectDocuments(snapshot)
	docs[0].Name = "edited"
	_ = append(docs[:1], docapi.Document{ID: "d3"})

	again := SelectDocuments(snapshot)
	require.Len(t, again, 2)
	assert.Equal(t, "First", again[0].Name)
	assert.Equal(t, "d2", again[1].ID)
}

func TestListFailure(t *testing.T) {
	st := store.New()
	svc := NewDocumentService(store.NewRegistry(st, nil), fakeLister{err: errors.New("timeout")}, nil, nil)

	_, err := svc.List(context.Background())
	require.Error(t, err)
	require.NotNil(t, SelectDocumentsError(st.State()))
	assert.Equal(t, "timeout", *SelectDocumentsError(st.State()))
	assert.False(t, SelectDocumentsLoading(st.State()))
}
