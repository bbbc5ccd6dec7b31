package domain

type LifecycleState int

const (
	StateIdle LifecycleState = iota
	StateConfiguring
	StateLaunching
	StateRunning
	StateTerminating
	StateStopped
	StateFailed
)

func (s LifecycleState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s LifecycleState) IsTerminal() bool {
	return s == StateStopped || s == StateFailed
}

var lifecycleTransitions = map[LifecycleState][]LifecycleState{
	StateIdle:        {StateConfiguring},
	StateConfiguring: {StateLaunching, StateFailed, StateStopped},
	StateLaunching:   {StateRunning, StateFailed, StateTerminating},
	StateRunning:     {StateTerminating},
	StateTerminating: {StateStopped},
}

// CanTransition reports whether the supervisor may move from one state to the other.
func CanTransition(from, to LifecycleState) bool {
	for _, next := range lifecycleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
