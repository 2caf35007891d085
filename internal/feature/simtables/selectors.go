package simtables

import "docworkspace/pkg/store"

func slice(st store.State) State {
	s, _ := store.SliceOf[State](st, SliceName)
	return s
}

// SelectLeaf returns the cached leaf for k.
func SelectLeaf(k Key) func(store.State) (Leaf, bool) {
	return func(st store.State) (Leaf, bool) {
		leaf, ok := slice(st).Leaves[k]
		return leaf, ok
	}
}

func SelectSelectedDocs(st store.State) []string {
	docs := slice(st).SelectedDocs
	out := make([]string, len(docs))
	copy(out, docs)
	return out
}

// SelectLeafCount returns how many distinct keys have been queried.
func SelectLeafCount(st store.State) int {
	return len(slice(st).Leaves)
}
