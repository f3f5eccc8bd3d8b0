package contact

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrEmailInvalid     = errors.New("email address is invalid")
	ErrMessageRequired  = errors.New("message is required")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrNoRecipient      = errors.New("no recipient configured")
)

// CapacityError rejects a batch that would push the attachment count past
// MaxAttachments. The whole batch is refused.
type CapacityError struct {
	Current   int
	Requested int
	Max       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("attachments: %d staged, %d requested, limit %d", e.Current, e.Requested, e.Max)
}

// SizeError drops a single file larger than MaxAttachmentBytes.
type SizeError struct {
	Name      string
	SizeBytes int64
	Max       int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("attachment %q is %d bytes, limit %d", e.Name, e.SizeBytes, e.Max)
}

// TypeError drops a single file whose extension is not in AllowedExtensions.
type TypeError struct {
	Name string
	Ext  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("attachment %q has unsupported type %q", e.Name, e.Ext)
}

// ValidationError reports the first form rule that failed.
type ValidationError struct {
	Field Field
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// HandoffError means the mailto URI could not be built or opened.
type HandoffError struct {
	URI string
	Err error
}

func (e *HandoffError) Error() string {
	return fmt.Sprintf("mailto handoff: %v", e.Err)
}

func (e *HandoffError) Unwrap() error { return e.Err }

// Reason returns a short label for err, used for metrics.
func Reason(err error) string {
	var (
		capErr  *CapacityError
		sizeErr *SizeError
		typeErr *TypeError
		valErr  *ValidationError
		hoErr   *HandoffError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &capErr):
		return "capacity"
	case errors.As(err, &sizeErr):
		return "size"
	case errors.As(err, &typeErr):
		return "type"
	case errors.As(err, &valErr):
		return "validation"
	case errors.As(err, &hoErr):
		return "handoff"
	case errors.Is(err, ErrSubmitInProgress):
		return "busy"
	default:
		return "unknown"
	}
}

// Split flattens errors joined with errors.Join.
func Split(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, Split(e)...)
		}
		return out
	}
	return []error{err}
}

// message is the text shown to the visitor for err.
func message(err error) string {
	var (
		capErr  *CapacityError
		sizeErr *SizeError
		typeErr *TypeError
		hoErr   *HandoffError
	)
	switch {
	case errors.As(err, &capErr):
		return fmt.Sprintf("You can upload a maximum of %d files", capErr.Max)
	case errors.As(err, &sizeErr):
		return fmt.Sprintf("File %s is too large (max %dMB)", sizeErr.Name, sizeErr.Max/1024/1024)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("File %s is not an accepted type (%s)", typeErr.Name, allowedList())
	case errors.Is(err, ErrNameRequired):
		return "Please enter your name"
	case errors.Is(err, ErrEmailInvalid):
		return "Please enter a valid email address"
	case errors.Is(err, ErrMessageRequired):
		return "Please enter your message"
	case errors.As(err, &hoErr):
		return "Error preparing message. Please try again later"
	case errors.Is(err, ErrSubmitInProgress):
		return "Your message is already being prepared"
	default:
		return "Something went wrong. Please try again"
	}
}

func allowedList() string {
	exts := make([]string, len(AllowedExtensions))
	for i, ext := range AllowedExtensions {
		exts[i] = strings.TrimPrefix(ext, ".")
	}
	return strings.Join(exts, ", ")
}
