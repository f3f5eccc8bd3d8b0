package contact

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestAttachmentProperties checks the staging invariants over random batches.
func TestAttachmentProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("over-capacity batches leave the set unchanged", prop.ForAll(
		func(existing, batch int) bool {
			if existing+batch <= MaxAttachments {
				return true
			}
			c := New(testRecipient)
			if err := c.AddAttachments(numbered(existing, 1)); err != nil {
				return false
			}
			before := c.State().Attachments

			err := c.AddAttachments(numbered(batch, 100))
			if Reason(err) != "capacity" {
				return false
			}
			after := c.State().Attachments
			return len(after) == len(before) && len(c.Notifications()) == 1
		},
		gen.IntRange(0, MaxAttachments),
		gen.IntRange(1, 10),
	))

	properties.Property("oversized files are excluded one error each", prop.ForAll(
		func(sizes []int64) bool {
			c := New(testRecipient)
			batch := make([]Attachment, len(sizes))
			oversized := 0
			for i, s := range sizes {
				batch[i] = Attachment{Name: fmt.Sprintf("f%d.pdf", i), SizeBytes: s}
				if s > MaxAttachmentBytes {
					oversized++
				}
			}
			err := c.AddAttachments(batch)
			if len(Split(err)) != oversized {
				return false
			}
			if len(c.State().Attachments) != len(sizes)-oversized {
				return false
			}
			for _, a := range c.State().Attachments {
				if a.SizeBytes > MaxAttachmentBytes {
					return false
				}
			}
			return oversized == 0 || len(c.Notifications()) == oversized
		},
		gen.SliceOfN(MaxAttachments, gen.Int64Range(MaxAttachmentBytes-2, MaxAttachmentBytes+2)).
			SuchThat(func(s []int64) bool { return len(s) <= MaxAttachments }),
	))

	properties.Property("removing from an empty set is a no-op", prop.ForAll(
		func(idx int) bool {
			c := New(testRecipient)
			return !c.RemoveAttachment(idx) && len(c.State().Attachments) == 0
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}

// TestValidationProperties checks rule ordering and mailto determinism.
func TestValidationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("blank name is always reported first", prop.ForAll(
		func(pad int, email, message string) bool {
			err := ValidateForm(FormState{Name: strings.Repeat(" ", pad), Email: email, Message: message})
			return Reason(err) == "validation" && strings.HasPrefix(err.Error(), string(FieldName))
		},
		gen.IntRange(0, 4),
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("well-shaped emails pass the email rule", prop.ForAll(
		func(local, domain, tld string) bool {
			return ValidateForm(FormState{Name: "x", Email: local + "@" + domain + "." + tld, Message: "x"}) == nil
		},
		gen.RegexMatch(`^[a-z0-9._+-]{1,12}$`),
		gen.RegexMatch(`^[a-z0-9-]{1,12}$`),
		gen.RegexMatch(`^[a-z]{2,6}$`),
	))

	properties.Property("mailto is deterministic and never contains raw separators", prop.ForAll(
		func(name, email, message string) bool {
			f := FormState{Name: name, Email: email, Message: message}
			a, errA := BuildMailto(testRecipient, f)
			b, errB := BuildMailto(testRecipient, f)
			if errA != nil || errB != nil {
				return errA != nil && errB != nil
			}
			query := strings.TrimPrefix(a, "mailto:"+testRecipient+"?")
			return a == b && strings.Count(query, "&") == 1 && !strings.ContainsAny(query, " \n#")
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func numbered(n, offset int) []Attachment {
	out := make([]Attachment, n)
	for i := range out {
		out[i] = Attachment{Name: fmt.Sprintf("file-%d.txt", offset+i), SizeBytes: 1}
	}
	return out
}
