package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwedajie/portfolio/internal/contact"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute, func() *contact.Controller { return contact.New("me@example.com") })
	s.now = func() time.Time { return now }
	return s, &now
}

func TestDoCreatesAndReusesSessions(t *testing.T) {
	s, _ := newTestStore(t)

	id := s.Do("", func(c *contact.Controller) { c.UpdateField(contact.FieldName, "Alice") })
	require.NotEmpty(t, id)

	var name string
	again := s.Do(id, func(c *contact.Controller) { name = c.State().Form.Name })
	assert.Equal(t, id, again)
	assert.Equal(t, "Alice", name)
	assert.Equal(t, 1, s.Len())
}

func TestSessionsAreIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Do("", func(c *contact.Controller) { c.UpdateField(contact.FieldName, "Alice") })
	b := s.Do("", func(c *contact.Controller) { c.UpdateField(contact.FieldName, "Bob") })
	require.NotEqual(t, a, b)

	s.Do(a, func(c *contact.Controller) { assert.Equal(t, "Alice", c.State().Form.Name) })
	s.Do(b, func(c *contact.Controller) { assert.Equal(t, "Bob", c.State().Form.Name) })
}

func TestUnknownOrMalformedIDStartsFresh(t *testing.T) {
	s, _ := newTestStore(t)
	for _, id := range []string{"not-a-uuid", "6f1c1d8e-3f55-4c57-9d2b-0d8f7c3f9a10"} {
		got := s.Do(id, func(c *contact.Controller) {
			assert.Empty(t, c.State().Form.Name)
		})
		assert.NotEqual(t, id, got)
	}
	assert.Equal(t, 2, s.Len())
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	s, now := newTestStore(t)
	old := s.Do("", func(*contact.Controller) {})

	*now = now.Add(30 * time.Second)
	fresh := s.Do("", func(*contact.Controller) {})

	*now = now.Add(40 * time.Second)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	assert.Equal(t, fresh, s.Do(fresh, func(*contact.Controller) {}))
	assert.NotEqual(t, old, s.Do(old, func(*contact.Controller) {}))
}

func TestDoSerializesPerSession(t *testing.T) {
	s := NewStore(time.Minute, func() *contact.Controller { return contact.New("me@example.com") })
	id := s.Do("", func(*contact.Controller) {})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(id, func(c *contact.Controller) {
				_ = c.AddAttachments([]contact.Attachment{{Name: "a.txt", SizeBytes: 1}})
				c.RemoveAttachment(0)
			})
		}()
	}
	wg.Wait()

	s.Do(id, func(c *contact.Controller) {
		assert.Empty(t, c.State().Attachments)
	})
}
