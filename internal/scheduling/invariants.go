package scheduling

import "fmt"

// CheckMonotonic verifies spec.md §3's time-monotonicity invariant: across
// every pair of consecutive legs in the duty (including across trip
// boundaries), `leg[i].arrival ≤ leg[i+1].departure`.
func CheckMonotonic(s *ScheduleNode) error {
	var prev *LegNode
	for _, trip := range s.Trips {
		for _, leg := range trip.Legs {
			if prev != nil && prev.ArrivalS() > leg.DepartureS() {
				return fmt.Errorf("scheduling: leg departing %d precedes prior leg's arrival %d",
					leg.DepartureS(), prev.ArrivalS())
			}
			prev = leg
		}
	}
	return nil
}
