package turn

import "testing"

func TestAdvanceResetsFlagRegardlessOfPriorState(t *testing.T) {
	cases := []struct {
		name      string
		submitted bool
	}{
		{"after local submit", true},
		{"without local submit", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCoordinator().Start(1950)
			if tc.submitted {
				c = c.Submit()
			}
			c = c.Advance(1950)

			if c.Year != 1951 {
				t.Fatalf("year = %d, want 1951", c.Year)
			}
			if c.Submitted {
				t.Fatalf("submitted flag survived an authoritative advance")
			}
		})
	}
}

func TestAdvanceClearsProgressMap(t *testing.T) {
	c := NewCoordinator().Start(1950)
	c = c.ObserveEnded("b")
	c = c.ObserveEnded("c")
	if len(c.Done) != 2 {
		t.Fatalf("done = %v, want two entries", c.Done)
	}

	c = c.Advance(1950)
	if len(c.Done) != 0 {
		t.Fatalf("done = %v, want empty after advance", c.Done)
	}
}

func TestObserveEndedDoesNotTouchLocalFlag(t *testing.T) {
	c := NewCoordinator().Start(1950)
	c = c.ObserveEnded("b")
	if c.Submitted {
		t.Fatalf("another player's turn_ended set the local flag")
	}
}

func TestObserveEndedCopiesMap(t *testing.T) {
	c := NewCoordinator().Start(1950)
	snap := c.ObserveEnded("b")
	_ = snap.ObserveEnded("c")
	if snap.Done["c"] {
		t.Fatalf("snapshot map mutated by a later observation")
	}
}
