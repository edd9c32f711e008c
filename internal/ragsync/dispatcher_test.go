package ragsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/profile"
)

// recordingSyncer captures deliveries and optionally blocks or fails.
type recordingSyncer struct {
	mu    sync.Mutex
	snaps []aiserver.ProfileSnapshot
	err   error
	block time.Duration
}

func (s *recordingSyncer) SyncProfile(ctx context.Context, snap aiserver.ProfileSnapshot) error {
	if s.block > 0 {
		select {
		case <-time.After(s.block):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	s.snaps = append(s.snaps, snap)
	s.mu.Unlock()
	return s.err
}

func (s *recordingSyncer) delivered() []aiserver.ProfileSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]aiserver.ProfileSnapshot(nil), s.snaps...)
}

func TestDispatchDeliversSnapshot(t *testing.T) {
	syncer := &recordingSyncer{}
	d := NewDispatcher(syncer, time.Second)

	d.Dispatch(profile.Profile{
		ID:     "p1",
		Name:   "Maya Patel",
		Skills: []string{"design systems"},
	})
	d.Close()

	snaps := syncer.delivered()
	if len(snaps) != 1 {
		t.Fatalf("delivered %d snapshots, want 1", len(snaps))
	}
	if snaps[0].ProfileID != "p1" || snaps[0].Name != "Maya Patel" {
		t.Errorf("snapshot = %+v", snaps[0])
	}
}

func TestDispatchDoesNotBlockCaller(t *testing.T) {
	syncer := &recordingSyncer{block: 300 * time.Millisecond}
	d := NewDispatcher(syncer, time.Second)

	start := time.Now()
	d.Dispatch(profile.Profile{ID: "p1", Name: "Slow"})
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Dispatch blocked for %v", elapsed)
	}
	d.Close()
}

func TestDispatchSwallowsFailure(t *testing.T) {
	syncer := &recordingSyncer{err: errors.New("index unreachable")}
	d := NewDispatcher(syncer, time.Second)

	// Must not panic or surface the error anywhere.
	d.Dispatch(profile.Profile{ID: "p1", Name: "Maya Patel"})
	d.Close()

	if len(syncer.delivered()) != 1 {
		t.Error("expected exactly one delivery attempt")
	}
}

func TestDispatchAtMostOneAttempt(t *testing.T) {
	syncer := &recordingSyncer{err: errors.New("still down")}
	d := NewDispatcher(syncer, time.Second)

	d.Dispatch(profile.Profile{ID: "p1"})
	d.Close()

	// Give any hypothetical retry a moment to show up.
	time.Sleep(50 * time.Millisecond)
	if n := len(syncer.delivered()); n != 1 {
		t.Errorf("attempts = %d, want 1 (no automatic retry)", n)
	}
}

func TestSnapshotFields(t *testing.T) {
	p := profile.Profile{
		ID:          "p1",
		Name:        "Maya Patel",
		Role:        "Design Lead",
		Company:     "Figma Co",
		Bio:         "bio",
		Skills:      []string{"a"},
		LookingFor:  []string{"b"},
		CanHelpWith: []string{"c"},
		Domains:     []string{"d"},
		LinkedInURL: "https://linkedin.com/in/maya",
	}
	snap := Snapshot(p)
	if snap.ProfileID != p.ID || snap.Role != p.Role || snap.Company != p.Company ||
		snap.Bio != p.Bio || snap.LinkedInURL != p.LinkedInURL {
		t.Errorf("Snapshot = %+v", snap)
	}
	if len(snap.Skills) != 1 || len(snap.LookingFor) != 1 || len(snap.CanHelpWith) != 1 || len(snap.Domains) != 1 {
		t.Errorf("list fields not carried: %+v", snap)
	}
}
