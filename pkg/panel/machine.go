package panel

// State is the visibility stage of one panel.
type State string

const (
	Closed  State = "closed"
	Opening State = "opening"
	Open    State = "open"
	Closing State = "closing"
)

// Input drives the machine.
type Input string

const (
	RequestOpen   Input = "request_open"
	RequestClose  Input = "request_close"
	AnimationDone Input = "animation_done"
)

// Effect tells the caller what the transition requires from the outside.
type Effect int

const (
	EffectNone Effect = iota
	// EffectAnimate means a transition animation must be started. Its end is
	// reported back with AnimationDone.
	EffectAnimate
)

// Machine is the value-typed state of a panel. The zero value is a closed
// panel.
//
// A request that arrives while an animation is running never interrupts it.
// Requests for the target already in flight are coalesced into it; requests
// for the opposite target are kept in Pending (one slot, last request wins)
// and replayed once the animation completes.
type Machine struct {
	State   State `json:"state"`
	Pending Input `json:"pending,omitempty"`
	// Epoch counts started animations, so a completion signal can be matched
	// to the animation that produced it.
	Epoch uint64 `json:"epoch"`
}

func (m Machine) current() State {
	if m.State == "" {
		return Closed
	}
	return m.State
}

// Fire applies one input and returns the next machine.
func (m Machine) Fire(in Input) (Machine, Effect) {
	m.State = m.current()

	switch in {
	case RequestOpen, RequestClose:
		return m.request(in)
	case AnimationDone:
		return m.complete()
	}
	return m, EffectNone
}

func (m Machine) request(in Input) (Machine, Effect) {
	switch m.State {
	case Closed:
		if in == RequestOpen {
			return m.start(Opening), EffectAnimate
		}
	case Open:
		if in == RequestClose {
			return m.start(Closing), EffectAnimate
		}
	case Opening, Closing:
		if in == m.inFlight() {
			m.Pending = ""
		} else {
			m.Pending = in
		}
	}
	return m, EffectNone
}

func (m Machine) complete() (Machine, Effect) {
	switch m.State {
	case Opening:
		m.State = Open
	case Closing:
		m.State = Closed
	default:
		return m, EffectNone
	}

	pending := m.Pending
	m.Pending = ""
	if pending == "" {
		return m, EffectNone
	}
	return m.request(pending)
}

func (m Machine) start(s State) Machine {
	m.State = s
	m.Pending = ""
	m.Epoch++
	return m
}

// inFlight returns the request the running animation fulfils.
func (m Machine) inFlight() Input {
	if m.State == Opening {
		return RequestOpen
	}
	return RequestClose
}

// Target returns the stable state the machine settles in once every running
// and deferred transition has completed.
func (m Machine) Target() State {
	switch m.current() {
	case Opening:
		if m.Pending == RequestClose {
			return Closed
		}
		return Open
	case Closing:
		if m.Pending == RequestOpen {
			return Open
		}
		return Closed
	}
	return m.current()
}

// Animating reports whether a transition is in flight.
func (m Machine) Animating() bool {
	s := m.current()
	return s == Opening || s == Closing
}

// Visible reports whether the panel occupies screen space.
func (m Machine) Visible() bool {
	return m.current() != Closed
}
