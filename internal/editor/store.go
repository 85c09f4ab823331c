package editor

// Listener observes a transition. prev and next are both immutable values.
type Listener func(prev, next State, a Action)

// Store holds the current State and notifies listeners after each Dispatch.
// It is not safe for concurrent use; one goroutine owns a Store.
type Store struct {
	state     State
	listeners []Listener
}

func NewStore(initial State) *Store {
	return &Store{state: initial}
}

func (st *Store) State() State {
	return st.state
}

// Subscribe registers l for every subsequent transition.
func (st *Store) Subscribe(l Listener) {
	st.listeners = append(st.listeners, l)
}

// Dispatch applies a and notifies listeners.
func (st *Store) Dispatch(a Action) {
	prev := st.state
	st.state = Apply(prev, a)
	for _, l := range st.listeners {
		l(prev, st.state, a)
	}
}
