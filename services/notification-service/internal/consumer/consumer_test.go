package consumer

import (
	"fmt"
	"testing"
)

func TestDedupSet(t *testing.T) {
	s := newDedupSet(3)

	if !s.Record("a") {
		t.Fatal("first sighting must record")
	}
	if s.Record("a") {
		t.Fatal("second sighting must be rejected")
	}

	// Filling past capacity evicts the oldest entry.
	for i := 0; i < 3; i++ {
		s.Record(fmt.Sprintf("id-%d", i))
	}
	if !s.Record("a") {
		t.Fatal("evicted id should be recordable again")
	}
}
