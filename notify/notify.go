/*
Package notify isolates the best-effort announcement side effect.

PURPOSE:
  After a leave request is admitted, the requester hears a short spoken
  confirmation synthesized by an external speech service. That call is
  explicitly fire-and-forget: failure or latency of the service must
  never roll back or delay the admission decision already made.

  The Dispatcher owns that isolation. Handlers call Dispatch and move
  on; the announcer runs on its own goroutine with its own deadline,
  and errors are logged and dropped.

ANNOUNCERS:
  Announcer is the external capability contract. The package ships a
  log-backed announcer for development; a production deployment plugs
  in a client for the speech service.
*/
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Announcer accepts arbitrary short text for speech synthesis.
// Implementations may block; the Dispatcher bounds them.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// =============================================================================
// BUILT-IN ANNOUNCERS
// =============================================================================

// Noop discards announcements. Useful in tests.
type Noop struct{}

func (Noop) Announce(context.Context, string) error { return nil }

// LogAnnouncer writes announcements to a log instead of a speech
// service. The development default.
type LogAnnouncer struct {
	Logger *log.Logger
}

func (a *LogAnnouncer) Announce(_ context.Context, text string) error {
	if a.Logger != nil {
		a.Logger.Printf("announce: %s", text)
	} else {
		log.Printf("announce: %s", text)
	}
	return nil
}

// =============================================================================
// DISPATCHER - The fire-and-forget boundary
// =============================================================================

// Dispatcher hands announcements to an Announcer without coupling the
// caller to its outcome.
type Dispatcher struct {
	announcer Announcer
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewDispatcher wraps announcer with a per-announcement deadline.
func NewDispatcher(announcer Announcer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{announcer: announcer, timeout: timeout}
}

// Dispatch sends text to the announcer on a separate goroutine and
// returns immediately. Errors are logged and dropped.
func (d *Dispatcher) Dispatch(text string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.announcer.Announce(ctx, text); err != nil {
			log.Printf("notify: announcement dropped: %v", err)
		}
	}()
}

// Drain blocks until all in-flight announcements finish. Used on
// shutdown and in tests.
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}

// LeaveSubmitted builds the confirmation text spoken after a
// successful leave submission. Long reasons are elided.
func LeaveSubmitted(reason string) string {
	const maxReason = 20
	if len(reason) > maxReason {
		reason = reason[:maxReason] + "..."
	}
	return fmt.Sprintf("Your leave request for '%s' has been submitted.", reason)
}
