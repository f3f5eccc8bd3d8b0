package contact

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Handoff delivers a mailto URI to whatever opens it. Only a returned error is
// observable; whether mail is eventually sent is not.
type Handoff interface {
	Open(uri string) error
}

// HandoffFunc adapts a function to Handoff.
type HandoffFunc func(uri string) error

func (f HandoffFunc) Open(uri string) error { return f(uri) }

// Controller owns one visitor's contact form. It is not safe for concurrent
// use; callers serialize access per visitor.
type Controller struct {
	recipient string
	now       func() time.Time
	onPhase   func(Phase)

	state   ViewState
	phase   Phase
	toaster *Toaster
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source used for notification expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithPhaseHook is called on every phase transition of Submit.
func WithPhaseHook(fn func(Phase)) Option {
	return func(c *Controller) { c.onPhase = fn }
}

// WithNotificationTTL overrides NotificationTTL.
func WithNotificationTTL(ttl time.Duration) Option {
	return func(c *Controller) { c.toaster = NewToaster(ttl) }
}

// New returns an idle Controller that addresses messages to recipient.
func New(recipient string, opts ...Option) *Controller {
	c := &Controller{
		recipient: recipient,
		now:       time.Now,
		toaster:   NewToaster(NotificationTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current view state.
func (c *Controller) State() ViewState {
	s := c.state
	s.Attachments = slices.Clone(c.state.Attachments)
	return s
}

// Phase reports where Submit is. Outside of Submit it is always PhaseIdle.
func (c *Controller) Phase() Phase { return c.phase }

// Notifications returns the notifications still visible.
func (c *Controller) Notifications() []Notification {
	return c.toaster.Active(c.now())
}

// Reset discards everything, as a page reload would.
func (c *Controller) Reset() {
	c.state = ViewState{}
	c.phase = PhaseIdle
	c.toaster.Dismiss()
}

// UpdateField stores value in field. It never validates and never fails;
// unknown fields are ignored.
func (c *Controller) UpdateField(field Field, value string) {
	switch field {
	case FieldName:
		c.state.Form.Name = value
	case FieldEmail:
		c.state.Form.Email = value
	case FieldMessage:
		c.state.Form.Message = value
	}
}

// AddAttachments stages candidates. A batch that would exceed MaxAttachments
// is refused whole with a *CapacityError. Otherwise each oversized or
// disallowed file is dropped with its own error and the rest are appended in
// order. The returned error joins the per-file errors.
func (c *Controller) AddAttachments(candidates []Attachment) error {
	if len(candidates) == 0 {
		return nil
	}
	current := len(c.state.Attachments)
	if current+len(candidates) > MaxAttachments {
		err := &CapacityError{Current: current, Requested: len(candidates), Max: MaxAttachments}
		c.notify(c.failure(err))
		return err
	}

	var (
		errs  []error
		notes []Notification
	)
	for _, a := range candidates {
		if err := checkAttachment(a); err != nil {
			errs = append(errs, err)
			notes = append(notes, c.failure(err))
			continue
		}
		c.state.Attachments = append(c.state.Attachments, a)
	}
	c.notify(notes...)
	return errors.Join(errs...)
}

func checkAttachment(a Attachment) error {
	if a.SizeBytes > MaxAttachmentBytes {
		return &SizeError{Name: a.Name, SizeBytes: a.SizeBytes, Max: MaxAttachmentBytes}
	}
	ext := strings.ToLower(filepath.Ext(a.Name))
	if !slices.Contains(AllowedExtensions, ext) {
		return &TypeError{Name: a.Name, Ext: ext}
	}
	return nil
}

// RemoveAttachment drops the attachment at index. An out-of-range index is a
// no-op; the return value says whether anything was removed.
func (c *Controller) RemoveAttachment(index int) bool {
	if index < 0 || index >= len(c.state.Attachments) {
		return false
	}
	c.state.Attachments = slices.Delete(c.state.Attachments, index, index+1)
	return true
}

// Validate runs the form rules in order and returns the first failure.
func (c *Controller) Validate() error {
	return ValidateForm(c.state.Form)
}

// Submit validates the form, builds the mailto URI and passes it to h.
// On success the form and attachments are cleared and the URI is returned.
// On failure the form is left as it was. Either way the controller ends idle
// and a notification describes the outcome.
func (c *Controller) Submit(h Handoff) (string, error) {
	if c.state.Submitting {
		c.notify(c.failure(ErrSubmitInProgress))
		return "", ErrSubmitInProgress
	}

	c.setPhase(PhaseValidating)
	if err := c.Validate(); err != nil {
		c.setPhase(PhaseRejected)
		c.notify(c.failure(err))
		c.setPhase(PhaseIdle)
		return "", err
	}

	c.state.Submitting = true
	defer func() {
		c.state.Submitting = false
		c.setPhase(PhaseIdle)
	}()

	c.setPhase(PhaseComposing)
	uri, err := c.handoff(h)
	if err != nil {
		c.setPhase(PhaseHandoffFailed)
		c.notify(c.failure(err))
		return "", err
	}

	c.setPhase(PhaseHandoffSucceeded)
	c.notify(c.toaster.issue(c.now(), KindSuccess, "Message ready to send! Your email client should open automatically"))
	c.state.Form = FormState{}
	c.state.Attachments = nil
	return uri, nil
}

func (c *Controller) handoff(h Handoff) (uri string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandoffError{URI: uri, Err: fmt.Errorf("panic: %v", r)}
			uri = ""
		}
	}()
	uri, err = BuildMailto(c.recipient, c.state.Form)
	if err != nil {
		return "", &HandoffError{Err: err}
	}
	if h == nil {
		return "", &HandoffError{URI: uri, Err: errors.New("no handoff target")}
	}
	if err := h.Open(uri); err != nil {
		return "", &HandoffError{URI: uri, Err: err}
	}
	return uri, nil
}

func (c *Controller) setPhase(p Phase) {
	c.phase = p
	if c.onPhase != nil {
		c.onPhase(p)
	}
}

func (c *Controller) failure(err error) Notification {
	return c.toaster.issue(c.now(), KindError, message(err))
}

func (c *Controller) notify(batch ...Notification) {
	c.toaster.Replace(batch...)
}
