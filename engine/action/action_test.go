package action

import (
	"sync"
	"testing"

	"github.com/nmoreau/strikecore/types"
)

func TestNew_AssignsUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		r := New(types.KindBasicAttack, "hero", nil)
		if r.ID() == "" {
			t.Fatal("empty request ID")
		}
		if seen[r.ID()] {
			t.Fatalf("duplicate request ID %q", r.ID())
		}
		seen[r.ID()] = true
	}
}

func TestNew_TimestampUTC(t *testing.T) {
	r := New(types.KindBasicAttack, "hero", nil)
	if r.Created.Location() != nil && r.Created.Location().String() != "UTC" {
		t.Errorf("expected UTC timestamp, got %v", r.Created.Location())
	}
}

func TestCancel_Idempotent(t *testing.T) {
	r := New(types.KindSpecialAbility, "hero", nil)
	if r.Cancelled() {
		t.Fatal("new request must not be cancelled")
	}
	for i := 0; i < 5; i++ {
		r.Cancel()
	}
	if !r.Cancelled() {
		t.Error("request should remain cancelled after repeated Cancel")
	}
}

func TestCancel_ConcurrentCallers(t *testing.T) {
	r := New(types.KindChainAction, "hero", nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Cancel()
			_ = r.Cancelled()
		}()
	}
	wg.Wait()

	if !r.Cancelled() {
		t.Error("request should be cancelled after concurrent Cancels")
	}
}
