// Package bot coordinates one end-to-end processing cycle: login, list the
// unresolved complaints, generate and submit a reply for each unseen one, and
// record every outcome.
//
// The orchestrator is the only component that touches more than one
// collaborator; the session, the response generator and the store are
// mutually unaware.
package bot

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"reclamebot/internal/responder"
	"reclamebot/internal/session"
	"reclamebot/internal/store"
)

// PortalSession is the automation surface one cycle drives. Satisfied by
// *session.Session; faked in tests.
type PortalSession interface {
	Login() bool
	ListNewComplaints() []session.Complaint
	SubmitResponse(complaintID, responseText string) bool
	Close()
}

// SessionFactory builds a fresh portal session. Each cycle acquires its own
// session and closes it before finishing.
type SessionFactory func() PortalSession

// ComplaintStore is the persistence gate consulted before any remote action
// and written after every processed complaint.
type ComplaintStore interface {
	IsProcessed(complaintID string) bool
	Save(complaintID, customerName, complaintText, responseText, status string) bool
}

// Orchestrator runs processing cycles with a process-wide single-flight
// guarantee: at most one cycle is active at any instant, regardless of
// whether the trigger was the scheduler or a manual request.
type Orchestrator struct {
	running  atomic.Bool
	sessions SessionFactory
	store    ComplaintStore
	gen      responder.Generator

	// prompt is read per cycle so prompt edits from the dashboard take
	// effect on the next cycle without a restart.
	prompt func() string

	// itemDelay paces consecutive complaints within a cycle, distinct from
	// the per-keystroke pacing inside submission. Zero disables it (tests).
	itemDelay time.Duration

	monitor *Monitor
}

// New creates an orchestrator. monitor may be nil if cycle status tracking
// is not wanted.
func New(sessions SessionFactory, st ComplaintStore, gen responder.Generator,
	prompt func() string, itemDelay time.Duration, monitor *Monitor) *Orchestrator {
	if monitor == nil {
		monitor = NewMonitor()
	}
	return &Orchestrator{
		sessions:  sessions,
		store:     st,
		gen:       gen,
		prompt:    prompt,
		itemDelay: itemDelay,
		monitor:   monitor,
	}
}

// Running reports whether a cycle is active right now.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// Monitor returns the cycle status tracker.
func (o *Orchestrator) Monitor() *Monitor {
	return o.monitor
}

// RunCycle executes one processing cycle and reports whether it actually
// started.
//
// Admission is a single compare-and-swap on the running flag: if a cycle is
// already active the call declines immediately without touching the session
// or the store. An already-running cycle is not a failure of the new trigger,
// it is a no-op. The flag is cleared on every exit path, including panics.
func (o *Orchestrator) RunCycle(ctx context.Context) bool {
	if !o.running.CompareAndSwap(false, true) {
		log.Println("⏭️  A processing cycle is already running, skipping this trigger")
		return false
	}
	defer o.running.Store(false)

	log.Println("🚀 Starting complaint processing cycle")

	if err := o.processComplaints(ctx); err != nil {
		log.Println("⚠️  Cycle failed:", err)
		o.monitor.CycleFinished("error: " + err.Error())
	} else {
		log.Println("✅ Completed complaint processing cycle")
		o.monitor.CycleFinished("success")
	}
	return true
}

// processComplaints does the actual work of one cycle. Any panic below is
// converted to an error here so the deferred cleanup in RunCycle still runs
// and the scheduler survives to the next tick.
func (o *Orchestrator) processComplaints(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()

	sess := o.sessions()
	defer sess.Close()

	if !sess.Login() {
		return fmt.Errorf("login failed")
	}

	complaints := sess.ListNewComplaints()
	log.Printf("📬 Found %d new complaints", len(complaints))

	for i, c := range complaints {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Idempotency boundary: the store is consulted before any remote
		// action for this id. A record from a prior cycle, completed or
		// failed, means the complaint is never touched again.
		if o.store.IsProcessed(c.ID) {
			log.Printf("⏭️  Complaint %s already processed, skipping", c.ID)
			continue
		}

		log.Printf("📝 Processing complaint %s from %s", c.ID, c.CustomerName)

		response := o.gen.Generate(ctx, c.Text, o.prompt())

		submitted := sess.SubmitResponse(c.ID, response)

		status := store.StatusCompleted
		if !submitted {
			status = store.StatusFailed
		}

		if !o.store.Save(c.ID, c.CustomerName, c.Text, response, status) {
			log.Printf("⚠️  Failed to record complaint %s; it may be reattempted next cycle", c.ID)
		}

		log.Printf("✓ Complaint %s processed with status: %s", c.ID, status)

		// Cycle-level pacing between complaints, so consecutive submissions
		// do not look machine-generated.
		if o.itemDelay > 0 && i < len(complaints)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.itemDelay):
			}
		}
	}

	return nil
}
