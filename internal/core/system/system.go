package system

import "time"

// Phase orders systems within one tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain queued commands into tasks
	PhaseTimers                  // 1: advance simulated time, fire due callbacks
	PhaseMovement                // 2: locomotion + spatial grid sync
	PhaseTriggers                // 3: proximity triggers
	PhasePostUpdate              // 4: regeneration
	PhaseOutput                  // 5: flush presentation events
	PhasePersist                 // 6: snapshot saves
	PhaseCleanup                 // 7: destroy queued entities
)

// System is one step of the tick pipeline.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
