package workspace

import "docworkspace/pkg/store"

func slice(st store.State) State {
	s, _ := store.SliceOf[State](st, SliceName)
	return s
}

// SelectElements returns the active elements in workspace order.
func SelectElements(st store.State) []Element {
	out := []Element{}
	for _, el := range slice(st).Elements {
		if el.Tag == Active {
			out = append(out, el)
		}
	}
	return out
}

// SelectBacking returns every element, tombstones included, so callers can
// address them by backing position.
func SelectBacking(st store.State) []Element {
	els := slice(st).Elements
	out := make([]Element, len(els))
	copy(out, els)
	return out
}

func SelectRemoved(st store.State) []Element {
	out := []Element{}
	for _, el := range slice(st).Elements {
		if el.Tag == Removed {
			out = append(out, el)
		}
	}
	return out
}

func SelectVisibleCount(st store.State) int { return len(SelectElements(st)) }

func SelectTotalCount(st store.State) int { return len(slice(st).Elements) }

func SelectHiddenSections(st store.State) []string {
	hidden := slice(st).Hidden
	out := make([]string, len(hidden))
	copy(out, hidden)
	return out
}

func SelectHiddenSectionCount(st store.State) int { return len(slice(st).Hidden) }

// SelectIsSectionHidden returns a selector answering for one section.
func SelectIsSectionHidden(section string) func(store.State) bool {
	return func(st store.State) bool {
		return containsSorted(slice(st).Hidden, section)
	}
}

// SelectWorkspaceError returns the last rejected operation, or nil.
func SelectWorkspaceError(st store.State) *string { return slice(st).Err }
