package inventory

import "fmt"

// MovementState estado de una solicitud de movimiento dentro del coordinador.
type MovementState string

// Estados del ciclo Requested → Resolving → Validating → Applying → Committed.
// Rejected es terminal y alcanzable desde cualquier estado no confirmado.
const (
	StateRequested  MovementState = "requested"
	StateResolving  MovementState = "resolving"
	StateValidating MovementState = "validating"
	StateApplying   MovementState = "applying"
	StateCommitted  MovementState = "committed"
	StateRejected   MovementState = "rejected"
)

var nextState = map[MovementState]MovementState{
	StateRequested:  StateResolving,
	StateResolving:  StateValidating,
	StateValidating: StateApplying,
	StateApplying:   StateCommitted,
}

// Terminal indica si ya no hay transiciones posibles.
func (s MovementState) Terminal() bool {
	return s == StateCommitted || s == StateRejected
}

// CanTransition valida una transición.
func (s MovementState) CanTransition(to MovementState) bool {
	if s.Terminal() {
		return false
	}
	if to == StateRejected {
		return true
	}
	return nextState[s] == to
}

// Transition devuelve el nuevo estado o error si la transición es ilegal.
func (s MovementState) Transition(to MovementState) (MovementState, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("transición ilegal de movimiento: %s -> %s", s, to)
	}
	return to, nil
}
