// Package turn tracks the local player's progress through simulation years.
// The counter only ever advances on the authority's all_turns_complete
// signal; a local end-turn just raises the submitted flag.
package turn

// Coordinator is a value type; the session owns the single mutable copy.
type Coordinator struct {
	Year      int
	Submitted bool
	// Done records which players the authority has reported as finished
	// this year. Display only; it never gates anything locally.
	Done map[string]bool
}

func NewCoordinator() Coordinator {
	return Coordinator{Done: map[string]bool{}}
}

// Start initializes the counter when the game begins.
func (c Coordinator) Start(year int) Coordinator {
	c.Year = year
	c.Submitted = false
	c.Done = map[string]bool{}
	return c
}

// Submit marks the local player's turn as handed in.
func (c Coordinator) Submit() Coordinator {
	c.Submitted = true
	return c
}

// ObserveEnded records another player's turn_ended for progress display.
func (c Coordinator) ObserveEnded(playerID string) Coordinator {
	done := make(map[string]bool, len(c.Done)+1)
	for k, v := range c.Done {
		done[k] = v
	}
	done[playerID] = true
	c.Done = done
	return c
}

// Advance applies all_turns_complete(year): the counter moves to year+1 and
// the submitted flag resets unconditionally. A client stuck with a stale
// flag gets forcibly resynced here; the server is authoritative.
func (c Coordinator) Advance(year int) Coordinator {
	c.Year = year + 1
	c.Submitted = false
	c.Done = map[string]bool{}
	return c
}
