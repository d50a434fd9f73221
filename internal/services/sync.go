// Package services contains the sync engine, the retry policy and the
// suggestion router. Services hold no global state; the composition root
// constructs them once and passes explicit dependencies.
package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kapturehq/kapture/internal/logging"
	"github.com/kapturehq/kapture/internal/models"
	"github.com/kapturehq/kapture/internal/netx"
	"github.com/kapturehq/kapture/internal/notion"
	"github.com/kapturehq/kapture/internal/repositories/entries"
)

// SyncService drives delivery of captured entries to the remote store.
//
// At most one dispatch pass runs at a time; a pass requested while one is
// in flight is dropped, not queued; the next trigger picks up whatever is
// left. A pass always runs to completion over its entry snapshot once
// started.
type SyncService struct {
	entries     entries.Repository
	remote      notion.RemoteAPI
	probe       netx.Probe
	maxAttempts int
	log         logging.Logger

	// now is a clock seam for tests.
	now func() time.Time

	syncing atomic.Bool
}

func NewSyncService(repo entries.Repository, remote notion.RemoteAPI, probe netx.Probe, maxAttempts int, log logging.Logger) *SyncService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &SyncService{
		entries:     repo,
		remote:      remote,
		probe:       probe,
		maxAttempts: maxAttempts,
		log:         log,
		now:         time.Now,
	}
}

// SyncPending runs one dispatch pass: all pending entries first, then any
// failed entries still inside the retry budget, oldest created first. A
// pass while offline, or while another pass is running, is a no-op.
//
// Failures on one entry never abort delivery of the others; they are
// recorded on the entry itself. The returned error covers only the
// inability to read the queue.
func (s *SyncService) SyncPending(ctx context.Context) error {
	if !s.syncing.CompareAndSwap(false, true) {
		s.log.Debug(ctx, "dispatch pass already running, dropping request")
		return nil
	}
	defer s.syncing.Store(false)

	if !s.probe.IsReachable() {
		s.log.Debug(ctx, "offline, deferring dispatch pass")
		return nil
	}

	pending, err := s.entries.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending entries: %w", err)
	}
	for _, e := range pending {
		s.deliver(ctx, e)
	}

	eligible, err := s.entries.ListRetryEligible(ctx, s.maxAttempts)
	if err != nil {
		return fmt.Errorf("failed to list retry-eligible entries: %w", err)
	}
	for _, e := range eligible {
		s.deliver(ctx, e)
	}

	return nil
}

// deliver attempts one remote delivery and writes the outcome back through
// the entry store.
func (s *SyncService) deliver(ctx context.Context, e *models.Entry) {
	e.Status = models.StatusSyncing

	remoteID, err := s.remote.CreateRecord(ctx, e.DestinationID, e.Properties)
	if err == nil {
		if err := s.entries.MarkSynced(ctx, e.ID, s.now()); err != nil {
			s.log.Error(ctx, "failed to persist synced status", "id", e.ID, "error", err)
			return
		}
		s.log.Info(ctx, "entry synced", "id", e.ID, "remote_id", remoteID)
		return
	}

	d := Decide(e.RetryCount, s.maxAttempts)
	if d.Terminal {
		if err2 := s.entries.MarkFailedTerminal(ctx, e.ID, d.NextRetryCount, err.Error()); err2 != nil {
			s.log.Error(ctx, "failed to persist terminal failure", "id", e.ID, "error", err2)
			return
		}
		s.log.Warn(ctx, "entry permanently failed", "id", e.ID,
			"attempts", d.NextRetryCount, "error", err)
		return
	}

	if err2 := s.entries.RecordRetryAttempt(ctx, e.ID, d.NextRetryCount, err.Error()); err2 != nil {
		s.log.Error(ctx, "failed to persist retry attempt", "id", e.ID, "error", err2)
		return
	}
	s.log.Info(ctx, "entry delivery failed, will retry", "id", e.ID,
		"retry_count", d.NextRetryCount, "backoff", d.Backoff, "error", err)
}

// QueueEntryForSync persists the entry and, if currently online, kicks off
// a background dispatch pass. The caller's capture is complete once
// persistence succeeds, regardless of remote outcome.
func (s *SyncService) QueueEntryForSync(ctx context.Context, e *models.Entry) error {
	if err := s.entries.Save(ctx, e); err != nil {
		return err
	}

	if s.probe.IsReachable() {
		bg := context.WithoutCancel(ctx)
		go func() {
			if err := s.SyncPending(bg); err != nil {
				s.log.Error(bg, "background dispatch pass failed", "error", err)
			}
		}()
	}

	return nil
}

// ResolveConflict applies a last-write-wins policy: the local entry is
// marked synced without comparing remote state. Comparing the remote
// record's last-edited time against the local timestamps would slot in
// here if real conflict detection is ever needed.
func (s *SyncService) ResolveConflict(ctx context.Context, e *models.Entry) error {
	return s.entries.MarkSynced(ctx, e.ID, s.now())
}
