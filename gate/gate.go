// Package gate withholds a question's advance control for its configured delay.
package gate

import "time"

// TickInterval is how often a running gate counts down.
const TickInterval = time.Second

type Gate struct {
	Active      bool  `json:"active"`
	RemainingMs int64 `json:"remainingMs"`
}

// Enter returns the gate for a question whose config asks for buttonTimer seconds.
// Every entry starts from the full duration.
func Enter(buttonTimer int) Gate {
	if buttonTimer <= 0 {
		return Gate{Active: true}
	}
	return Gate{RemainingMs: int64(buttonTimer) * 1000}
}

// Running reports whether the gate still needs ticks.
func (g Gate) Running() bool {
	return !g.Active
}

// Tick counts elapsed time down; the gate opens once nothing remains and stays open.
func Tick(g Gate, elapsed time.Duration) Gate {
	if g.Active {
		return g
	}
	g.RemainingMs -= elapsed.Milliseconds()
	if g.RemainingMs <= 0 {
		return Gate{Active: true}
	}
	return g
}
