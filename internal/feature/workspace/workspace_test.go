package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworkspace/internal/feature/chunks"
	"docworkspace/pkg/events"
	"docworkspace/pkg/store"
)

func strPtr(s string) *string { return &s }

func newService(t *testing.T) (*store.Store, IWorkspaceService, *events.Recorder) {
	t.Helper()
	st := store.New()
	rec := &events.Recorder{}
	svc := NewWorkspaceService(store.NewRegistry(st, nil), "session-1", rec, nil)
	return st, svc, rec
}

func tableChunk() chunks.Chunk {
	return chunks.Chunk{Type: chunks.TypeTable, Data: "<table>...</table>", Y1: 12.5, Index: 0}
}

func TestAddRemoveRestoreIsIdentity(t *testing.T) {
	st, svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, tableChunk())
	require.NoError(t, err)
	afterAdd := st.State()

	require.NoError(t, svc.Remove(ctx, 0))
	assert.Equal(t, 0, SelectVisibleCount(st.State()))
	assert.Equal(t, 1, SelectTotalCount(st.State()))

	require.NoError(t, svc.Restore(ctx, 0))
	assert.Equal(t, slice(afterAdd), slice(st.State()))
}

func TestInvalidIndicesAreLocalNoOps(t *testing.T) {
	st, svc, rec := newService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, tableChunk())
	require.NoError(t, err)
	before := SelectBacking(st.State())

	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"remove out of range", func() error { return svc.Remove(ctx, 3) }, ErrIndexOutOfRange},
		{"remove negative", func() error { return svc.Remove(ctx, -1) }, ErrIndexOutOfRange},
		{"restore active", func() error { return svc.Restore(ctx, 0) }, ErrNotRemoved},
		{"restore out of range", func() error { return svc.Restore(ctx, 1) }, ErrIndexOutOfRange},
		{"move out of range", func() error { return svc.Move(ctx, 0, 5) }, ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.op(), tt.want)
			s := st.State()
			assert.Equal(t, before, SelectBacking(s))
			require.NotNil(t, SelectWorkspaceError(s))
			assert.Equal(t, tt.want.Error(), *SelectWorkspaceError(s))
		})
	}

	require.NoError(t, svc.Remove(ctx, 0))
	assert.ErrorIs(t, svc.Remove(ctx, 0), ErrAlreadyRemoved)
	assert.Equal(t, []string{events.ElementAdded, events.ElementRemoved}, rec.Types())
}

func TestSuccessfulOperationClearsError(t *testing.T) {
	st, svc, _ := newService(t)
	ctx := context.Background()

	assert.Error(t, svc.Remove(ctx, 0))
	require.NotNil(t, SelectWorkspaceError(st.State()))

	_, err := svc.Add(ctx, tableChunk())
	require.NoError(t, err)
	assert.Nil(t, SelectWorkspaceError(st.State()))
}

func TestDuplicateSuppression(t *testing.T) {
	_, svc, _ := newService(t)
	ctx := context.Background()
	c := chunks.Chunk{Type: chunks.TypeText, Data: "hello", DocumentID: "doc-1", Page: 2, Index: 1}

	_, err := svc.Add(ctx, c)
	require.NoError(t, err)
	_, err = svc.Add(ctx, c)
	assert.ErrorIs(t, err, ErrDuplicateElement)

	// Without a document id there is no stable identity to compare.
	anon := tableChunk()
	_, err = svc.Add(ctx, anon)
	require.NoError(t, err)
	_, err = svc.Add(ctx, anon)
	require.NoError(t, err)

	// A removed chunk may be added again, after which its tombstone cannot be
	// restored next to the new copy.
	require.NoError(t, svc.Remove(ctx, 0))
	_, err = svc.Add(ctx, c)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Restore(ctx, 0), ErrDuplicateElement)
}

func TestMoveAndRestorePosition(t *testing.T) {
	st, svc, _ := newService(t)
	ctx := context.Background()
	for _, d := range []string{"a", "b", "c"} {
		_, err := svc.Add(ctx, chunks.Chunk{Type: chunks.TypeText, Data: d})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Move(ctx, 0, 2))
	assert.Equal(t, []string{"b", "c", "a"}, data(SelectElements(st.State())))

	// "c" is removed at position 1, then shifted by a move; restore puts it
	// back where it was removed.
	require.NoError(t, svc.Remove(ctx, 1))
	require.NoError(t, svc.Move(ctx, 2, 0))
	assert.Equal(t, []string{"a", "b"}, data(SelectElements(st.State())))
	backing := SelectBacking(st.State())
	require.Equal(t, Removed, backing[2].Tag)

	require.NoError(t, svc.Restore(ctx, 2))
	assert.Equal(t, []string{"a", "c", "b"}, data(SelectElements(st.State())))

	assert.NoError(t, svc.Move(ctx, 0, 0))
}

func TestRandomSequencesKeepCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		st, svc, _ := newService(t)
		ctx := context.Background()

		for step := 0; step < 60; step++ {
			total := SelectTotalCount(st.State())
			switch rng.Intn(4) {
			case 0, 1:
				_, _ = svc.Add(ctx, chunks.Chunk{Type: chunks.TypeText, Data: fmt.Sprintf("c%d", step)})
			case 2:
				_ = svc.Remove(ctx, rng.Intn(total+2)-1)
			case 3:
				idx := rng.Intn(total+2) - 1
				before := SelectBacking(st.State())
				if err := svc.Restore(ctx, idx); err == nil {
					after := SelectBacking(st.State())
					pos := *before[idx].RemovedAt
					restored := before[idx]
					restored.Tag, restored.RemovedAt = Active, nil
					assert.Equal(t, restored, after[pos])
				}
			}

			s := st.State()
			assert.Equal(t, SelectTotalCount(s)-len(SelectRemoved(s)), SelectVisibleCount(s))
		}
	}
}

func TestSections(t *testing.T) {
	st, svc, _ := newService(t)

	require.NoError(t, svc.HideSection("table"))
	require.NoError(t, svc.HideSection("graph"))
	require.NoError(t, svc.HideSection("table"))
	assert.Equal(t, []string{"graph", "table"}, SelectHiddenSections(st.State()))
	assert.Equal(t, 2, SelectHiddenSectionCount(st.State()))
	assert.True(t, SelectIsSectionHidden("table")(st.State()))

	require.NoError(t, svc.ToggleSection("table"))
	require.NoError(t, svc.ShowSection("graph"))
	require.NoError(t, svc.ToggleSection("notes"))
	assert.Equal(t, []string{"notes"}, SelectHiddenSections(st.State()))
	assert.False(t, SelectIsSectionHidden("table")(st.State()))

	assert.ErrorIs(t, svc.HideSection("  "), ErrEmptySection)
}

func TestSelectorsOnEmptyState(t *testing.T) {
	st := store.StateOf(nil)
	assert.Equal(t, []Element{}, SelectElements(st))
	assert.Equal(t, []Element{}, SelectRemoved(st))
	assert.Equal(t, []string{}, SelectHiddenSections(st))
	assert.Zero(t, SelectVisibleCount(st))
	assert.Zero(t, SelectHiddenSectionCount(st))
	assert.False(t, SelectIsSectionHidden("table")(st))
	assert.Nil(t, SelectWorkspaceError(st))
}

func TestResetDropsTombstones(t *testing.T) {
	st, svc, rec := newService(t)
	ctx := context.Background()
	_, _ = svc.Add(ctx, tableChunk())
	_ = svc.Remove(ctx, 0)
	_ = svc.HideSection("text")

	svc.Reset(ctx)
	assert.Zero(t, SelectTotalCount(st.State()))
	assert.Empty(t, SelectHiddenSections(st.State()))
	assert.Equal(t, events.WorkspaceReset, rec.Types()[len(rec.Types())-1])
	assert.Equal(t, "session-1", rec.Events()[0].Payload()["session_id"])
}

func TestToContentPayloadNulls(t *testing.T) {
	raw, err := json.Marshal(ToContentPayload(chunks.Chunk{Type: chunks.TypeText, Data: ""}, nil, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"content": "",
		"imageCaption": null,
		"contentTitle": null,
		"pageNumber": null,
		"tableMarkup": null,
		"elementType": "text"
	}`, string(raw))
}

func TestToContentPayloadKinds(t *testing.T) {
	page := 4
	table := ToContentPayload(chunks.Chunk{Type: chunks.TypeTable, Data: "<table/>", Caption: strPtr("T1"), Title: strPtr("")}, &page, "")
	assert.Equal(t, ElementTable, table.ElementType)
	require.NotNil(t, table.TableMarkup)
	assert.Equal(t, "<table/>", *table.TableMarkup)
	assert.Equal(t, "T1", *table.ImageCaption)
	require.NotNil(t, table.ContentTitle, "empty title is content, not absence")
	assert.Equal(t, "", *table.ContentTitle)
	assert.Equal(t, 4, *table.PageNumber)

	page = 9
	assert.Equal(t, 4, *table.PageNumber, "payload does not alias the caller's page")

	img := ToContentPayload(chunks.Chunk{Type: chunks.TypeGraph, Data: "fig.png"}, nil, "")
	assert.Equal(t, ElementImage, img.ElementType)
	assert.Nil(t, img.TableMarkup)
	assert.Nil(t, img.ImageCaption)

	text := ToContentPayload(chunks.Chunk{Type: chunks.TypeText, Data: "x", Caption: strPtr("ignored")}, nil, "note")
	assert.Equal(t, "note", text.ElementType)
	assert.Nil(t, text.ImageCaption)
}

func TestComposeAndMarkdown(t *testing.T) {
	_, svc, _ := newService(t)
	ctx := context.Background()
	_, _ = svc.Add(ctx, chunks.Chunk{Type: chunks.TypeText, Data: "Revenue grew.", Title: strPtr("Overview"), Page: 1})
	_, _ = svc.Add(ctx, chunks.Chunk{Type: chunks.TypeTable, Data: "<table><tr><th>Y</th></tr><tr><td>2023</td></tr></table>", Page: 2})
	_, _ = svc.Add(ctx, chunks.Chunk{Type: chunks.TypeGraph, Data: "chart.png", Caption: strPtr("Chart"), Page: 3})
	require.NoError(t, svc.Remove(ctx, 2))

	doc := svc.Document()
	require.Len(t, doc.Root.Children, 3)
	assert.Equal(t, "table", doc.Root.Children[2].Type)

	md := svc.Markdown()
	assert.True(t, strings.HasPrefix(md, "### Overview\n\nRevenue grew.\n"))
	assert.Contains(t, md, "| Y |\n|---|\n| 2023 |")
	assert.NotContains(t, md, "chart.png")

	require.NoError(t, svc.HideSection("table"))
	assert.Len(t, svc.Payloads(), 1)
}

func data(els []Element) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.Chunk.Data
	}
	return out
}
