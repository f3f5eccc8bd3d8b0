package portfolio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
name: Test Person
about: [hello]
contact:
  recipient: me@example.com
`

func TestDefaultContent(t *testing.T) {
	p := Default()
	assert.Equal(t, "Misgan Wedajie", p.Name)
	assert.Equal(t, "wedajiemisgan8@gmail.com", p.Contact.Recipient)
	assert.Len(t, p.Projects, 2)
	assert.Len(t, p.Certifications, 2)
	assert.NotEmpty(t, p.Skills.Technical)
	assert.InDelta(t, 0.2, p.Motion.StaggerSeconds, 1e-9)
	require.NotNil(t, p.Contact.Inquiry)
	assert.Equal(t, "Have a project in mind?", p.Contact.Inquiry.Heading)
	assert.Equal(t, "Project Inquiry", p.Contact.Inquiry.Subject)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"minimal", minimal, ""},
		{"unknown key", minimal + "favourite_colour: blue\n", "decode content"},
		{"skill above 100", minimal + "skills:\n  technical:\n    - {name: Go, level: 101}\n", "Level"},
		{"bad recipient", strings.Replace(minimal, "me@example.com", "nope", 1), "Recipient"},
		{"relative pdf", minimal + "certifications:\n  - {title: T, issuer: I, pdf: cert.pdf}\n", "PDF"},
		{"bad social url", minimal + "socials:\n  - {name: X, url: not a url}\n", "URL"},
		{"inquiry", minimal + "  inquiry: {heading: H, subject: S, label: Go}\n", ""},
		{"inquiry without label", minimal + "  inquiry: {heading: H, subject: S}\n", "Label"},
		{"no about", "name: X\ncontact: {recipient: me@example.com}\n", "About"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(strings.NewReader(tt.doc))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Test Person", p.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSourceReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	s, err := NewSource(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "Test Person", s.Current().Name)

	require.NoError(t, os.WriteFile(path, []byte("name: [broken"), 0o644))
	require.Error(t, s.Reload())
	assert.Equal(t, "Test Person", s.Current().Name)

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(minimal, "Test Person", "Renamed", 1)), 0o644))
	require.NoError(t, s.Reload())
	assert.Equal(t, "Renamed", s.Current().Name)
}

func TestSourceWithoutPathUsesDefault(t *testing.T) {
	s, err := NewSource("", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Default().Name, s.Current().Name)
	assert.NoError(t, s.Watch(context.Background()))
}

func TestSourceWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	s, err := NewSource(path, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(minimal, "Test Person", "Watched", 1)), 0o644))

	require.Eventually(t, func() bool {
		return s.Current().Name == "Watched"
	}, 3*time.Second, 20*time.Millisecond)
}
