package chunks

import (
	"sort"

	"docworkspace/pkg/store"
)

func slice(st store.State) State {
	s, _ := store.SliceOf[State](st, SliceName)
	return s
}

func orEmpty(c []Chunk) []Chunk {
	if c == nil {
		return []Chunk{}
	}
	return c
}

func SelectTextChunks(st store.State) []Chunk  { return orEmpty(slice(st).Text) }
func SelectTableChunks(st store.State) []Chunk { return orEmpty(slice(st).Tables) }
func SelectGraphChunks(st store.State) []Chunk { return orEmpty(slice(st).Graphs) }

func SelectChunksLoading(st store.State) bool { return slice(st).Loading }

// SelectChunksError returns the last fetch error, or nil.
func SelectChunksError(st store.State) *string { return slice(st).Error }

func SelectChunksDocument(st store.State) string { return slice(st).DocumentID }

// SelectChunksForPage returns every chunk of one page, all kinds merged and
// ordered by vertical position.
func SelectChunksForPage(page int) func(store.State) []Chunk {
	return func(st store.State) []Chunk {
		s := slice(st)
		out := []Chunk{}
		for _, group := range [][]Chunk{s.Text, s.Tables, s.Graphs} {
			for _, c := range group {
				if c.Page == page {
					out = append(out, c)
				}
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Y1 < out[j].Y1 })
		return out
	}
}

// SelectChunk finds a chunk by kind, page and index.
func SelectChunk(typ Type, page, index int) func(store.State) (Chunk, bool) {
	return func(st store.State) (Chunk, bool) {
		s := slice(st)
		var group []Chunk
		switch typ {
		case TypeText:
			group = s.Text
		case TypeTable:
			group = s.Tables
		case TypeGraph:
			group = s.Graphs
		}
		for _, c := range group {
			if c.Page == page && c.Index == index {
				return c, true
			}
		}
		return Chunk{}, false
	}
}
