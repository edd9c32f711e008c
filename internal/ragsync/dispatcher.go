// Package ragsync pushes profile snapshots to the AI server's retrieval
// index after profile mutations. Delivery is fire-and-forget: one attempt
// per mutation, failures are logged and dropped, and the triggering request
// never waits on the push. The index may transiently diverge from the store
// of record; it converges on the next mutation of the same profile.
package ragsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/profile"
)

// Syncer is the slice of the AI server client the dispatcher needs.
type Syncer interface {
	SyncProfile(ctx context.Context, snap aiserver.ProfileSnapshot) error
}

// Dispatcher delivers profile snapshots off the critical request path.
type Dispatcher struct {
	syncer  Syncer
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. If timeout is <= 0, it defaults to 15s.
func NewDispatcher(syncer Syncer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		syncer:  syncer,
		timeout: timeout,
		logger:  slog.Default(),
	}
}

// Dispatch schedules a single delivery attempt for the profile snapshot and
// returns immediately. The attempt runs on its own context, detached from
// the request that triggered it, so a client disconnect cannot cancel it.
func (d *Dispatcher) Dispatch(p profile.Profile) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.syncer.SyncProfile(ctx, Snapshot(p)); err != nil {
			d.logger.Warn("RAG sync failed (non-fatal)", "profile_id", p.ID, "error", err)
		}
	}()
}

// Close waits for in-flight deliveries to finish. Meant for shutdown only;
// request handlers never wait on a dispatch.
func (d *Dispatcher) Close() {
	d.wg.Wait()
}

// Snapshot extracts the salient fields pushed to the retrieval index.
func Snapshot(p profile.Profile) aiserver.ProfileSnapshot {
	return aiserver.ProfileSnapshot{
		ProfileID:   p.ID,
		Name:        p.Name,
		Role:        p.Role,
		Company:     p.Company,
		Bio:         p.Bio,
		Skills:      p.Skills,
		LookingFor:  p.LookingFor,
		CanHelpWith: p.CanHelpWith,
		Domains:     p.Domains,
		LinkedInURL: p.LinkedInURL,
	}
}
