package workspace

import (
	"sort"
	"strings"

	"docworkspace/internal/feature/chunks"
	"docworkspace/pkg/store"
)

const (
	ActionAdd           = "workspace/addElement"
	ActionRemove        = "workspace/removeElement"
	ActionRestore       = "workspace/restoreElement"
	ActionMove          = "workspace/moveElement"
	ActionHideSection   = "workspace/hideSection"
	ActionShowSection   = "workspace/showSection"
	ActionToggleSection = "workspace/toggleSection"
	ActionReset         = "workspace/reset"
)

type addAction struct {
	ID    string
	Chunk chunks.Chunk
}

type indexAction struct {
	code  string
	Index int
}

type moveAction struct {
	From, To int
}

type sectionAction struct {
	code    string
	Section string
}

func (addAction) Type() string       { return ActionAdd }
func (a indexAction) Type() string   { return a.code }
func (moveAction) Type() string      { return ActionMove }
func (a sectionAction) Type() string { return a.code }

func (addAction) Slice() string     { return SliceName }
func (indexAction) Slice() string   { return SliceName }
func (moveAction) Slice() string    { return SliceName }
func (sectionAction) Slice() string { return SliceName }

// AddElement appends chunk under the element id.
func AddElement(id string, chunk chunks.Chunk) store.Action {
	return addAction{ID: id, Chunk: chunk}
}

func RemoveElement(index int) store.Action  { return indexAction{code: ActionRemove, Index: index} }
func RestoreElement(index int) store.Action { return indexAction{code: ActionRestore, Index: index} }
func MoveElement(from, to int) store.Action { return moveAction{From: from, To: to} }

func HideSection(section string) store.Action {
	return sectionAction{code: ActionHideSection, Section: section}
}

func ShowSection(section string) store.Action {
	return sectionAction{code: ActionShowSection, Section: section}
}

func ToggleSection(section string) store.Action {
	return sectionAction{code: ActionToggleSection, Section: section}
}

func Reset() store.Action {
	return store.BaseAction{Code: ActionReset, Target: SliceName}
}

type Module struct{}

func (Module) Name() string { return SliceName }

func (Module) Mount(r *store.Registry) {
	r.Register(SliceName, State{}, Reduce)
}

// Reduce applies a workspace action. An invalid action leaves the elements
// untouched and records the error in Err.
func Reduce(state any, action store.Action) any {
	s, _ := state.(State)
	next, err := Apply(s, action)
	if err != nil {
		msg := err.Error()
		s.Err = &msg
		return s
	}
	return next
}

// Apply is the pure transition behind Reduce.
func Apply(s State, action store.Action) (State, error) {
	switch a := action.(type) {
	case addAction:
		return add(s, a)
	case indexAction:
		if a.code == ActionRemove {
			return remove(s, a.Index)
		}
		return restore(s, a.Index)
	case moveAction:
		return move(s, a.From, a.To)
	case sectionAction:
		return section(s, a)
	}
	if action.Type() == ActionReset {
		return State{}, nil
	}
	return s, nil
}

func add(s State, a addAction) (State, error) {
	if id, ok := IdentityOf(a.Chunk); ok && activeIndexOf(s, id) >= 0 {
		return s, ErrDuplicateElement
	}
	elements := make([]Element, len(s.Elements), len(s.Elements)+1)
	copy(elements, s.Elements)
	s.Elements = append(elements, Element{ID: a.ID, Tag: Active, Chunk: a.Chunk})
	s.Err = nil
	return s, nil
}

func remove(s State, index int) (State, error) {
	if index < 0 || index >= len(s.Elements) {
		return s, ErrIndexOutOfRange
	}
	if s.Elements[index].Tag == Removed {
		return s, ErrAlreadyRemoved
	}
	elements := cloneElements(s.Elements)
	pos := index
	elements[index].Tag = Removed
	elements[index].RemovedAt = &pos
	s.Elements = elements
	s.Err = nil
	return s, nil
}

// restore reinstates the tombstone at index. If moves shifted it since its
// removal, it goes back to the position it held when removed.
func restore(s State, index int) (State, error) {
	if index < 0 || index >= len(s.Elements) {
		return s, ErrIndexOutOfRange
	}
	el := s.Elements[index]
	if el.Tag != Removed {
		return s, ErrNotRemoved
	}
	if id, ok := IdentityOf(el.Chunk); ok && activeIndexOf(s, id) >= 0 {
		return s, ErrDuplicateElement
	}

	elements := cloneElements(s.Elements)
	target := index
	if el.RemovedAt != nil {
		target = *el.RemovedAt
	}
	el.Tag = Active
	el.RemovedAt = nil
	elements[index] = el
	s.Elements = relocate(elements, index, target)
	s.Err = nil
	return s, nil
}

func move(s State, from, to int) (State, error) {
	if from < 0 || from >= len(s.Elements) || to < 0 || to >= len(s.Elements) {
		return s, ErrIndexOutOfRange
	}
	if s.Elements[from].Tag == Removed {
		return s, ErrAlreadyRemoved
	}
	s.Elements = relocate(cloneElements(s.Elements), from, to)
	s.Err = nil
	return s, nil
}

func section(s State, a sectionAction) (State, error) {
	name := strings.TrimSpace(a.Section)
	if name == "" {
		return s, ErrEmptySection
	}
	hidden := containsSorted(s.Hidden, name)
	switch a.code {
	case ActionHideSection:
		if !hidden {
			s.Hidden = insertSorted(s.Hidden, name)
		}
	case ActionShowSection:
		if hidden {
			s.Hidden = deleteSorted(s.Hidden, name)
		}
	case ActionToggleSection:
		if hidden {
			s.Hidden = deleteSorted(s.Hidden, name)
		} else {
			s.Hidden = insertSorted(s.Hidden, name)
		}
	}
	s.Err = nil
	return s, nil
}

func activeIndexOf(s State, id Identity) int {
	for i, el := range s.Elements {
		if el.Tag != Active {
			continue
		}
		if other, ok := IdentityOf(el.Chunk); ok && other == id {
			return i
		}
	}
	return -1
}

func cloneElements(in []Element) []Element {
	out := make([]Element, len(in))
	copy(out, in)
	return out
}

// relocate moves elements[from] to position to, shifting the others.
func relocate(elements []Element, from, to int) []Element {
	if to >= len(elements) {
		to = len(elements) - 1
	}
	if from == to {
		return elements
	}
	el := elements[from]
	if from < to {
		copy(elements[from:to], elements[from+1:to+1])
	} else {
		copy(elements[to+1:from+1], elements[to:from])
	}
	elements[to] = el
	return elements
}

func containsSorted(list []string, v string) bool {
	i := sort.SearchStrings(list, v)
	return i < len(list) && list[i] == v
}

func insertSorted(list []string, v string) []string {
	i := sort.SearchStrings(list, v)
	out := make([]string, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, v)
	return append(out, list[i:]...)
}

func deleteSorted(list []string, v string) []string {
	i := sort.SearchStrings(list, v)
	out := make([]string, 0, len(list))
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
