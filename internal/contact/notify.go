package contact

import "time"

// Kind tells the visitor whether a notification is good or bad news.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a transient message for the visitor.
type Notification struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether n should no longer be shown at now.
func (n Notification) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

// Remaining is how long n stays visible after now.
func (n Notification) Remaining(now time.Time) time.Duration {
	if d := n.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Toaster keeps the notifications currently on screen. A new batch replaces
// the previous one.
type Toaster struct {
	ttl    time.Duration
	active []Notification
}

// NewToaster returns a Toaster whose notifications live for ttl.
func NewToaster(ttl time.Duration) *Toaster {
	if ttl <= 0 {
		ttl = NotificationTTL
	}
	return &Toaster{ttl: ttl}
}

func (t *Toaster) issue(now time.Time, kind Kind, msg string) Notification {
	return Notification{Kind: kind, Message: msg, IssuedAt: now, ExpiresAt: now.Add(t.ttl)}
}

// Replace swaps the visible notifications for batch. An empty batch leaves the
// current ones in place.
func (t *Toaster) Replace(batch ...Notification) {
	if len(batch) == 0 {
		return
	}
	t.active = append([]Notification(nil), batch...)
}

// Active drops expired notifications and returns the rest.
func (t *Toaster) Active(now time.Time) []Notification {
	kept := t.active[:0]
	for _, n := range t.active {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	t.active = kept
	return append([]Notification(nil), kept...)
}

// Dismiss clears everything.
func (t *Toaster) Dismiss() {
	t.active = nil
}
