package filterpanel

import (
	"time"

	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/panel"
	"docworkspace/pkg/store"
)

const (
	SliceName    = "filterPanel"
	ActionFire   = "filterPanel/fire"
	ActionToggle = "filterPanel/toggle"
)

// State holds one machine per filter instance.
type State struct {
	Panels map[string]panel.Machine `json:"panels"`
}

type fireAction struct {
	ID    string
	Input panel.Input
	// Epoch scopes AnimationDone to the animation that produced it.
	Epoch uint64
}

type toggleAction struct {
	ID string
}

func (fireAction) Type() string    { return ActionFire }
func (fireAction) Slice() string   { return SliceName }
func (toggleAction) Type() string  { return ActionToggle }
func (toggleAction) Slice() string { return SliceName }

func RequestOpen(id string) store.Action  { return fireAction{ID: id, Input: panel.RequestOpen} }
func RequestClose(id string) store.Action { return fireAction{ID: id, Input: panel.RequestClose} }
func Toggle(id string) store.Action       { return toggleAction{ID: id} }

func AnimationDone(id string, epoch uint64) store.Action {
	return fireAction{ID: id, Input: panel.AnimationDone, Epoch: epoch}
}

type Module struct{}

func (Module) Name() string { return SliceName }

func (Module) Mount(r *store.Registry) {
	r.Register(SliceName, State{}, Reduce)
}

func Reduce(state any, action store.Action) any {
	s, _ := state.(State)

	var id string
	var in panel.Input
	switch a := action.(type) {
	case fireAction:
		m := s.Panels[a.ID]
		if a.Input == panel.AnimationDone && a.Epoch != m.Epoch {
			return s
		}
		id, in = a.ID, a.Input
	case toggleAction:
		id, in = a.ID, panel.RequestOpen
		if s.Panels[a.ID].Target() == panel.Open {
			in = panel.RequestClose
		}
	default:
		return s
	}

	next, _ := s.Panels[id].Fire(in)
	panels := make(map[string]panel.Machine, len(s.Panels)+1)
	for k, v := range s.Panels {
		panels[k] = v
	}
	panels[id] = next
	return State{Panels: panels}
}

func SelectPanel(id string) func(store.State) panel.Machine {
	return func(st store.State) panel.Machine {
		s, _ := store.SliceOf[State](st, SliceName)
		return s.Panels[id]
	}
}

// SelectPanelState returns the visibility state; unknown panels are closed.
func SelectPanelState(id string) func(store.State) panel.State {
	return func(st store.State) panel.State {
		m := SelectPanel(id)(st)
		if m.State == "" {
			return panel.Closed
		}
		return m.State
	}
}

func SelectPanelVisible(id string) func(store.State) bool {
	return func(st store.State) bool {
		return SelectPanel(id)(st).Visible()
	}
}

type IFilterPanelService interface {
	Open(id string)
	Close(id string)
	Toggle(id string)
	State(id string) panel.State
	Stop()
}

type filterPanelService struct {
	store       *store.Store
	animator    *panel.Animator
	unsubscribe func()
	logger      logger.ILogger
}

// NewFilterPanelService mounts the slice and drives animations: whenever a
// panel starts animating, the completion signal is dispatched after
// duration.
func NewFilterPanelService(reg *store.Registry, duration time.Duration, log logger.ILogger) IFilterPanelService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	reg.Mount(Module{})

	s := &filterPanelService{
		store:    reg.Store(),
		animator: panel.NewAnimator(duration),
		logger:   log,
	}
	s.unsubscribe = s.store.Subscribe(s.onAction)
	return s
}

func (s *filterPanelService) onAction(action store.Action, st store.State) {
	var id string
	switch a := action.(type) {
	case fireAction:
		id = a.ID
	case toggleAction:
		id = a.ID
	default:
		return
	}

	m := SelectPanel(id)(st)
	if !m.Animating() {
		return
	}
	epoch := m.Epoch
	if s.animator.Schedule(id, epoch, func() { s.store.Dispatch(AnimationDone(id, epoch)) }) {
		s.logger.Debug("FilterPanelService", "Panel animation started", map[string]interface{}{
			"panel": id,
			"state": string(m.State),
			"epoch": epoch,
		})
	}
}

func (s *filterPanelService) Open(id string)   { s.store.Dispatch(RequestOpen(id)) }
func (s *filterPanelService) Close(id string)  { s.store.Dispatch(RequestClose(id)) }
func (s *filterPanelService) Toggle(id string) { s.store.Dispatch(Toggle(id)) }

func (s *filterPanelService) State(id string) panel.State {
	return SelectPanelState(id)(s.store.State())
}

// Stop cancels pending animations and detaches from the store.
func (s *filterPanelService) Stop() {
	s.unsubscribe()
	s.animator.Stop()
}
