package pipeline

// State is the run's position in its lifecycle.
type State string

const (
	StateNotStarted             State = "not_started"
	StateGenerating             State = "generating"
	StateDependenciesInstalling State = "dependencies_installing"
	StatePatching               State = "patching"
	StateBuilding               State = "building"
	StatePublishing             State = "publishing"
	StateDone                   State = "done"
	StateFailed                 State = "failed"
)

var stateOrder = map[State]int{
	StateNotStarted:             0,
	StateGenerating:             1,
	StateDependenciesInstalling: 2,
	StatePatching:               3,
	StateBuilding:               4,
	StatePublishing:             5,
	StateDone:                   6,
}

func (s State) order() int {
	if o, ok := stateOrder[s]; ok {
		return o
	}
	return -1
}

// active reports whether steps may execute in s.
func (s State) active() bool {
	o := s.order()
	return o > 0 && o < stateOrder[StateDone]
}

// Terminal reports whether s is Done or Failed.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }
