package state

// StateMachine is stateless, it is only used for state computing.
type StateMachine struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

type Category uint

const (
	InBacklog Category = iota
	InProcess
	Done
	Rejected
)

type State struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Order    int      `json:"order"`
}

type Transition struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

func NewStateMachine(states []State, transitions []Transition) *StateMachine {
	return &StateMachine{States: states, Transitions: transitions}
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

// AvailableTransitions lists transitions matching fromState and toState, an empty name matches any state.
func (sm *StateMachine) AvailableTransitions(fromState string, toState string) []Transition {
	r := []Transition{}
	for _, transition := range sm.Transitions {
		if (fromState == "" || fromState == transition.From) && (toState == "" || toState == transition.To) {
			r = append(r, transition)
		}
	}
	return r
}

// FindTransition finds the transition named name leaving fromState.
func (sm *StateMachine) FindTransition(fromState string, name string) (Transition, bool) {
	for _, transition := range sm.Transitions {
		if transition.From == fromState && transition.Name == name {
			return transition, true
		}
	}
	return Transition{}, false
}

// IsTerminal reports whether no transition leaves the state.
func (sm *StateMachine) IsTerminal(stateName string) bool {
	return len(sm.AvailableTransitions(stateName, "")) == 0
}
