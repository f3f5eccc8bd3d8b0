// Package contact holds the state and rules of the portfolio contact form:
// field edits, attachment staging, validation and the mailto handoff.
//
// Nothing here sends mail. A successful submission produces a mailto URI that
// the caller hands to the visitor's mail client.
package contact

import (
	"fmt"
	"time"
)

const (
	// MaxAttachments caps how many files may be staged at once.
	MaxAttachments = 5
	// MaxAttachmentBytes is the largest accepted file. The limit is inclusive.
	MaxAttachmentBytes int64 = 5 * 1024 * 1024
	// NotificationTTL is how long a notification stays visible.
	NotificationTTL = 5000 * time.Millisecond
)

// AllowedExtensions lists the file types the picker offers.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".txt"}

// Field names one of the editable form inputs.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// ParseField maps an input name to a Field.
func ParseField(s string) (Field, bool) {
	switch f := Field(s); f {
	case FieldName, FieldEmail, FieldMessage:
		return f, true
	}
	return "", false
}

// FormState is what the visitor has typed so far.
type FormState struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Attachment describes a file picked by the visitor. Only its name and size
// are kept; the content never leaves the browser.
type Attachment struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

// SizeMB formats the size the way the attachment list shows it.
func (a Attachment) SizeMB() string {
	return fmt.Sprintf("%.2fMB", float64(a.SizeBytes)/1024/1024)
}

// ViewState is the complete, serializable state of one contact form.
type ViewState struct {
	Form        FormState    `json:"form"`
	Attachments []Attachment `json:"attachments"`
	Submitting  bool         `json:"submitting"`
}

// Phase is a step of the submit flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseRejected
	PhaseComposing
	PhaseHandoffSucceeded
	PhaseHandoffFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseRejected:
		return "rejected"
	case PhaseComposing:
		return "composing"
	case PhaseHandoffSucceeded:
		return "handoff_succeeded"
	case PhaseHandoffFailed:
		return "handoff_failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}
