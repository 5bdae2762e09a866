package engine

// ModuleState is the lifecycle state of one module inside one frame.
type ModuleState int

const (
	StatePending ModuleState = iota
	StateReady
	StateExecuting
	StateProduced
	// StateFaulted is diagnostic only: the module produced nothing and a
	// fault was reported. It may still execute again in a later wave.
	StateFaulted
)

func (s ModuleState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateExecuting:
		return "executing"
	case StateProduced:
		return "produced"
	case StateFaulted:
		return "faulted"
	default:
		return "pending"
	}
}
