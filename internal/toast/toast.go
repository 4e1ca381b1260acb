// Package toast holds the transient status messages a screen shows after
// user-facing successes and failures. Each toast auto-dismisses after its
// duration; each screen owns its own notifier.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDuration applies when a toast is pushed without one.
const DefaultDuration = 4 * time.Second

// Severity classifies a toast.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

// Toast is one transient notification.
type Toast struct {
	ID       string
	Message  string
	Severity Severity
	Duration time.Duration
}

// Notifier owns a screen's active toast list. Safe for concurrent use; the
// expiry timers fire on their own goroutines.
type Notifier struct {
	mu     sync.Mutex
	toasts []Toast
	timers map[string]*time.Timer
}

func NewNotifier() *Notifier {
	return &Notifier{timers: make(map[string]*time.Timer)}
}

// Push adds a toast and schedules its removal after d (DefaultDuration when
// d <= 0). It returns the toast id for explicit dismissal.
func (n *Notifier) Push(message string, severity Severity, d time.Duration) string {
	if d <= 0 {
		d = DefaultDuration
	}
	t := Toast{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		Duration: d,
	}
	n.mu.Lock()
	n.toasts = append(n.toasts, t)
	n.timers[t.ID] = time.AfterFunc(d, func() { n.Dismiss(t.ID) })
	n.mu.Unlock()
	return t.ID
}

// Success, Error and Info push with the default duration.
func (n *Notifier) Success(message string) string { return n.Push(message, Success, 0) }
func (n *Notifier) Error(message string) string   { return n.Push(message, Error, 0) }
func (n *Notifier) Info(message string) string    { return n.Push(message, Info, 0) }

// Dismiss removes the toast with the given id, stopping its timer. Unknown
// ids are ignored.
func (n *Notifier) Dismiss(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}
	for i, t := range n.toasts {
		if t.ID == id {
			n.toasts = append(n.toasts[:i], n.toasts[i+1:]...)
			return
		}
	}
}

// Active returns a copy of the current toast list in insertion order.
func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Toast, len(n.toasts))
	copy(out, n.toasts)
	return out
}

// Close stops all pending timers.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
	n.toasts = nil
}
