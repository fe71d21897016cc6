package selection

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

func TestSequentialPolicyVisitsStoresInOrder(t *testing.T) {
	area := domain.Area{Name: "zone-a", Stores: []string{"S3", "S1", "S10", "S2"}}
	p := NewSequentialPolicy(area, nil, "OUT-1", rand.New(rand.NewSource(1)))

	want := []string{"S1", "S2", "S3", "S10"}
	for i, store := range want {
		task, err := p.Next()
		if err != nil {
			t.Fatalf("Next() #%d: unexpected error %v", i, err)
		}
		if task.Source != store {
			t.Errorf("Next() #%d source = %q, want %q", i, task.Source, store)
		}
		if task.Area != "zone-a" {
			t.Errorf("Next() #%d area = %q, want zone-a", i, task.Area)
		}
		if task.Type != domain.TaskRegionPickup {
			t.Errorf("Next() #%d type = %q, want %q", i, task.Type, domain.TaskRegionPickup)
		}
		p.Record(task)
	}

	if _, err := p.Next(); !errors.Is(err, domain.ErrExhausted) {
		t.Errorf("Next() after all stores = %v, want ErrExhausted", err)
	}
	// Exhaustion is final for rule 1.
	if _, err := p.Next(); !errors.Is(err, domain.ErrExhausted) {
		t.Errorf("Next() stays exhausted, got %v", err)
	}
}

func TestSequentialPolicyDestination(t *testing.T) {
	t.Run("fixed store wins", func(t *testing.T) {
		area := domain.Area{Name: "zone-a", Stores: []string{"S1", "S2"}}
		p := NewSequentialPolicy(area, []string{"OUT-1", "OUT-2"}, "OUT-9", rand.New(rand.NewSource(1)))

		for i := 0; i < 2; i++ {
			task, err := p.Next()
			if err != nil {
				t.Fatalf("Next(): %v", err)
			}
			if task.Destination != "OUT-9" {
				t.Errorf("destination = %q, want fixed OUT-9", task.Destination)
			}
		}
	})

	t.Run("random from allowed set", func(t *testing.T) {
		area := domain.Area{Name: "zone-a", Stores: []string{"S1", "S2", "S3", "S4"}}
		allowed := map[string]bool{"OUT-1": true, "OUT-2": true}
		p := NewSequentialPolicy(area, []string{"OUT-1", "OUT-2"}, "", rand.New(rand.NewSource(7)))

		for i := 0; i < 4; i++ {
			task, err := p.Next()
			if err != nil {
				t.Fatalf("Next(): %v", err)
			}
			if !allowed[task.Destination] {
				t.Errorf("destination = %q, not in allowed set", task.Destination)
			}
		}
	})
}
