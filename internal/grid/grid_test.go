package grid

import "testing"

func TestShortestSegmentPicksLowestDistance(t *testing.T) {
	g := New()
	a := Point{ID: "A", Name: "Depot"}
	b := Point{ID: "B", Name: "Stop 1"}
	g.AddPoint(a)
	g.AddPoint(b)
	g.AddSegment(Segment{ID: "s1", Origin: a, Destination: b, DistanceKm: 5.2})
	g.AddSegment(Segment{ID: "s2", Origin: a, Destination: b, DistanceKm: 3.8})

	got, ok := g.ShortestSegment("A", "B")
	if !ok {
		t.Fatalf("expected a segment to be found")
	}
	if got.ID != "s2" {
		t.Fatalf("expected shortest segment s2, got %s (%v km)", got.ID, got.DistanceKm)
	}
}

func TestShortestSegmentMissing(t *testing.T) {
	g := New()
	if _, ok := g.ShortestSegment("X", "Y"); ok {
		t.Fatalf("expected no segment between unknown points")
	}
}

func TestStaticOracle(t *testing.T) {
	o := NewStaticOracle()
	o.Set("A", "B", 12.5)

	km, ok := o.Distance("A", "B")
	if !ok || km != 12.5 {
		t.Fatalf("expected 12.5 km, got %v ok=%v", km, ok)
	}

	if _, ok := o.Distance("B", "A"); ok {
		t.Fatalf("expected no reverse-direction entry")
	}
}
