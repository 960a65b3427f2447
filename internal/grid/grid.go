// Package grid models the geographic network of points (stops, depots) and
// segments (direct connections with a distance) the fleet operates over,
// along with the distance oracle used to size deadhead trips the schedule
// generator invents (spec.md §4.8), grounded on original_source/eflips
// grid.py's GridPoint/GridSegment/Grid.
package grid

// Point is a location in the network: a stop, a depot, or any other place a
// vehicle can be.
type Point struct {
	ID   string
	Name string
	Type string
}

// Segment is a direct, directed connection between two points with a fixed
// distance in kilometres.
type Segment struct {
	ID          string
	Origin      Point
	Destination Point
	DistanceKm  float64
}

// Grid holds the network's points and segments, keyed by ID.
type Grid struct {
	points   map[string]Point
	segments map[string]Segment
}

// New returns an empty Grid.
func New() *Grid {
	return &Grid{
		points:   make(map[string]Point),
		segments: make(map[string]Segment),
	}
}

// AddPoint registers a point, overwriting any existing point with the same
// ID.
func (g *Grid) AddPoint(p Point) {
	g.points[p.ID] = p
}

// Point retrieves a point by ID.
func (g *Grid) Point(id string) (Point, bool) {
	p, ok := g.points[id]
	return p, ok
}

// AddSegment registers a segment, overwriting any existing segment with the
// same ID.
func (g *Grid) AddSegment(s Segment) {
	g.segments[s.ID] = s
}

// Segment retrieves a segment by ID.
func (g *Grid) Segment(id string) (Segment, bool) {
	s, ok := g.segments[id]
	return s, ok
}

// ShortestSegment returns the lowest-distance direct segment between origin
// and destination, if one exists (spec.md §4.8's pull-out/pull-in deadhead
// lookup).
func (g *Grid) ShortestSegment(origin, destination string) (Segment, bool) {
	var best Segment
	found := false
	for _, s := range g.segments {
		if s.Origin.ID != origin || s.Destination.ID != destination {
			continue
		}
		if !found || s.DistanceKm < best.DistanceKm {
			best = s
			found = true
		}
	}
	return best, found
}
